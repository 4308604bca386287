package role

import (
	"context"
	"errors"
	"testing"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/security"
)

// --- モック定義 ---

type mockRoleRepo struct {
	listFn   func(ctx context.Context) ([]model.Role, error)
	insertFn func(ctx context.Context, role *model.Role) error
	updateFn func(ctx context.Context, id string, payload repository.Payload) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockRoleRepo) List(ctx context.Context) ([]model.Role, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRoleRepo) FindByID(_ context.Context, _ string) (*model.Role, error) {
	return nil, nil
}

func (m *mockRoleRepo) ListByUserID(_ context.Context, _ string) ([]model.Role, error) {
	return nil, nil
}

func (m *mockRoleRepo) Insert(ctx context.Context, role *model.Role) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, role)
	}
	return nil
}

func (m *mockRoleRepo) Update(ctx context.Context, id string, payload repository.Payload) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, payload)
	}
	return nil
}

func (m *mockRoleRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

var _ repository.RoleRepository = (*mockRoleRepo)(nil)

func editorPrincipal() *authz.Principal {
	return &authz.Principal{
		UserID: "editor-1",
		Email:  "editor@example.com",
		Claims: authz.ClaimSet{
			TenantID:    "tenant-1",
			Permissions: []string{authz.PermRolesEdit},
		},
	}
}

func viewerPrincipal() *authz.Principal {
	return &authz.Principal{
		UserID: "viewer-1",
		Email:  "viewer@example.com",
		Claims: authz.ClaimSet{TenantID: "tenant-1"},
	}
}

func newTestService(repo *mockRoleRepo) *Service {
	return NewService(repo, security.NewTextSanitizer())
}

// --- テスト ---

// roles.edit保持者の一覧は全行にcan_edit/can_deleteとcan_createが付く
func TestList_Editor_CarriesAffordances(t *testing.T) {
	repo := &mockRoleRepo{
		listFn: func(_ context.Context) ([]model.Role, error) {
			return []model.Role{
				{ID: "r-1", Name: "admin"},
				{ID: "r-2", Name: "viewer"},
			}, nil
		},
	}
	svc := newTestService(repo)

	result, err := svc.List(context.Background(), editorPrincipal())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if !result.CanCreate {
		t.Error("editor should have can_create")
	}
	for _, view := range result.Roles {
		if !view.CanEdit || !view.CanDelete {
			t.Errorf("role %s: editor should have can_edit and can_delete", view.ID)
		}
	}
}

// パーミッションなしの一覧には操作可否が一切付かない
func TestList_Viewer_NoAffordances(t *testing.T) {
	repo := &mockRoleRepo{
		listFn: func(_ context.Context) ([]model.Role, error) {
			return []model.Role{{ID: "r-1", Name: "admin"}}, nil
		},
	}
	svc := newTestService(repo)

	result, err := svc.List(context.Background(), viewerPrincipal())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if result.CanCreate {
		t.Error("viewer should not have can_create")
	}
	if result.Roles[0].CanEdit || result.Roles[0].CanDelete {
		t.Error("viewer should not have row affordances")
	}
}

// 作成されるロールのtenant_idは作成者のクレームから刻印される
func TestCreate_StampsCreatorTenantID(t *testing.T) {
	var inserted *model.Role
	repo := &mockRoleRepo{
		insertFn: func(_ context.Context, role *model.Role) error {
			inserted = role
			return nil
		},
	}
	svc := newTestService(repo)

	payload := repository.Payload{
		"name":        "operator",
		"permissions": []string{"roles.assign", "profiles.edit"},
	}
	role, err := svc.Create(context.Background(), editorPrincipal(), payload)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if inserted == nil {
		t.Fatal("expected insert to be called")
	}
	if role.TenantID != "tenant-1" {
		t.Errorf("tenant_id = %q, want %q", role.TenantID, "tenant-1")
	}
	if len(role.Permissions) != 2 || role.Permissions[0] != "roles.assign" {
		t.Errorf("permissions = %v, want submission order preserved", role.Permissions)
	}
}

// 永続化されるレコードはサービス層でIDとタイムスタンプが刻印される
func TestCreate_StampsIDAndTimestamps(t *testing.T) {
	var ids []string
	var inserted *model.Role
	repo := &mockRoleRepo{
		insertFn: func(_ context.Context, role *model.Role) error {
			ids = append(ids, role.ID)
			inserted = role
			return nil
		},
	}
	svc := newTestService(repo)

	for _, name := range []string{"first", "second"} {
		if _, err := svc.Create(context.Background(), editorPrincipal(), repository.Payload{"name": name}); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	if inserted.ID == "" {
		t.Error("expected non-empty ID to be assigned before insert")
	}
	if inserted.CreatedAt.IsZero() || inserted.UpdatedAt.IsZero() {
		t.Errorf("expected non-zero timestamps, got created=%v updated=%v",
			inserted.CreatedAt, inserted.UpdatedAt)
	}
	if ids[0] == ids[1] {
		t.Errorf("both roles got ID %q; primary key collides", ids[0])
	}
}

// スーパー管理者（テナント未所属）の作成するロールはtenant_idなし
func TestCreate_SuperAdmin_NoTenantID(t *testing.T) {
	var inserted *model.Role
	repo := &mockRoleRepo{
		insertFn: func(_ context.Context, role *model.Role) error {
			inserted = role
			return nil
		},
	}
	svc := newTestService(repo)

	admin := &authz.Principal{
		UserID: "super-1",
		Claims: authz.ClaimSet{Permissions: []string{authz.PermRolesEdit}},
	}
	if _, err := svc.Create(context.Background(), admin, repository.Payload{"name": "global"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if inserted.TenantID != "" {
		t.Errorf("tenant_id = %q, want empty", inserted.TenantID)
	}
}

func TestCreate_WithoutPermission_Forbidden(t *testing.T) {
	svc := newTestService(&mockRoleRepo{})

	_, err := svc.Create(context.Background(), viewerPrincipal(), repository.Payload{"name": "x"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestCreate_MissingName_ReturnsError(t *testing.T) {
	svc := newTestService(&mockRoleRepo{})

	_, err := svc.Create(context.Background(), editorPrincipal(), repository.Payload{"notes": "no name"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMissingField {
		t.Fatalf("err = %v, want MISSING_FIELD", err)
	}
}

func TestUpdate_NotFound_ReturnsRoleNotFound(t *testing.T) {
	repo := &mockRoleRepo{
		updateFn: func(_ context.Context, _ string, _ repository.Payload) error {
			return repository.ErrNotFound
		},
	}
	svc := newTestService(repo)

	err := svc.Update(context.Background(), editorPrincipal(), "missing", repository.Payload{"name": "x"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeRoleNotFound {
		t.Fatalf("err = %v, want ROLE_NOT_FOUND", err)
	}
}

func TestDelete_RemovesOnlySpecifiedID(t *testing.T) {
	deletedID := ""
	repo := &mockRoleRepo{
		deleteFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), editorPrincipal(), "r-2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deletedID != "r-2" {
		t.Errorf("deleted = %q, want %q", deletedID, "r-2")
	}
}

func TestDelete_WithoutPermission_Forbidden(t *testing.T) {
	svc := newTestService(&mockRoleRepo{})

	err := svc.Delete(context.Background(), viewerPrincipal(), "r-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestCatalogue_ContainsKnownPermissions(t *testing.T) {
	svc := newTestService(&mockRoleRepo{})

	perms := svc.Catalogue()
	if len(perms) == 0 {
		t.Fatal("expected non-empty permission catalogue")
	}

	found := false
	for _, perm := range perms {
		if perm == authz.PermRolesEdit {
			found = true
		}
	}
	if !found {
		t.Errorf("catalogue %v should contain %q", perms, authz.PermRolesEdit)
	}
}
