package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/role"
)

// --- モック定義 ---

type mockRoleService struct {
	listFn      func(ctx context.Context, p *authz.Principal) (*role.ListResult, error)
	createFn    func(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Role, error)
	updateFn    func(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error
	deleteFn    func(ctx context.Context, p *authz.Principal, id string) error
	catalogueFn func() []string
}

var _ RoleServiceInterface = (*mockRoleService)(nil)

func (m *mockRoleService) List(ctx context.Context, p *authz.Principal) (*role.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, p)
	}
	return &role.ListResult{Roles: []role.RoleView{}}, nil
}

func (m *mockRoleService) Create(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Role, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p, payload)
	}
	return &model.Role{ID: "role-new"}, nil
}

func (m *mockRoleService) Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p, id, payload)
	}
	return nil
}

func (m *mockRoleService) Delete(ctx context.Context, p *authz.Principal, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, p, id)
	}
	return nil
}

func (m *mockRoleService) Catalogue() []string {
	if m.catalogueFn != nil {
		return m.catalogueFn()
	}
	return authz.KnownPermissions()
}

// --- テスト ---

func TestRoleHandler_List_ReturnsRolesWithAffordances(t *testing.T) {
	svc := &mockRoleService{
		listFn: func(ctx context.Context, p *authz.Principal) (*role.ListResult, error) {
			return &role.ListResult{
				Roles: []role.RoleView{
					{
						Role:      model.Role{ID: "role-1", TenantID: "tenant-1", Name: "Editor", Permissions: []string{"roles.edit"}},
						CanEdit:   true,
						CanDelete: true,
					},
				},
				CanCreate: true,
			}, nil
		},
	}
	h := NewRoleHandler(svc)

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/roles", nil), adminPrincipal())
	w := httptest.NewRecorder()

	h.List(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body roleListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Roles) != 1 || body.Roles[0].Name != "Editor" {
		t.Fatalf("unexpected roles: %+v", body.Roles)
	}
	if len(body.Roles[0].Permissions) != 1 || body.Roles[0].Permissions[0] != "roles.edit" {
		t.Errorf("permissions = %v, want [roles.edit]", body.Roles[0].Permissions)
	}
	if !body.CanCreate {
		t.Error("can_create should be true")
	}
}

func TestRoleHandler_Create_MultiSelectPermissions_PreservedInOrder(t *testing.T) {
	var createdPayload repository.Payload
	svc := &mockRoleService{
		createFn: func(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Role, error) {
			createdPayload = payload
			return &model.Role{ID: "role-new"}, nil
		},
	}
	h := NewRoleHandler(svc)

	values := url.Values{
		"name":        {"Operators"},
		"permissions": {"roles.edit", "profiles.edit", "tenant_members.assign"},
	}
	req := withPrincipal(formRequest(http.MethodPost, "/api/roles", values), adminPrincipal())
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	perms, ok := createdPayload["permissions"].([]string)
	if !ok {
		t.Fatalf("permissions payload = %T, want []string", createdPayload["permissions"])
	}
	want := []string{"roles.edit", "profiles.edit", "tenant_members.assign"}
	if len(perms) != len(want) {
		t.Fatalf("permissions = %v, want %v", perms, want)
	}
	for i := range want {
		if perms[i] != want[i] {
			t.Errorf("permissions[%d] = %q, want %q (submission order preserved)", i, perms[i], want[i])
		}
	}
}

func TestRoleHandler_Create_Forbidden_Returns403(t *testing.T) {
	svc := &mockRoleService{
		createFn: func(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Role, error) {
			return nil, model.NewForbiddenError("roles.edit")
		},
	}
	h := NewRoleHandler(svc)

	req := formRequest(http.MethodPost, "/api/roles", url.Values{"name": {"X"}})
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRoleHandler_Update_EchoesSubmittedPayload(t *testing.T) {
	h := NewRoleHandler(&mockRoleService{})

	values := url.Values{"permissions": {"roles.assign"}}
	req := withURLParam(withPrincipal(formRequest(http.MethodPatch, "/api/roles/role-1", values), adminPrincipal()), "id", "role-1")
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body) != 1 {
		t.Errorf("echoed payload = %v, want only submitted permissions", body)
	}
}

func TestRoleHandler_Delete_Success_Returns204(t *testing.T) {
	var deletedID string
	svc := &mockRoleService{
		deleteFn: func(ctx context.Context, p *authz.Principal, id string) error {
			deletedID = id
			return nil
		},
	}
	h := NewRoleHandler(svc)

	req := withURLParam(withPrincipal(httptest.NewRequest(http.MethodDelete, "/api/roles/role-1", nil), adminPrincipal()), "id", "role-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if deletedID != "role-1" {
		t.Errorf("deleted id = %q, want role-1", deletedID)
	}
}

func TestRoleHandler_Delete_NotFound_Returns404(t *testing.T) {
	svc := &mockRoleService{
		deleteFn: func(ctx context.Context, p *authz.Principal, id string) error {
			return model.NewRoleNotFoundError(id)
		},
	}
	h := NewRoleHandler(svc)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/roles/missing", nil), "id", "missing")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRoleHandler_Catalogue_ReturnsKnownPermissions(t *testing.T) {
	h := NewRoleHandler(&mockRoleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/roles/permissions", nil)
	w := httptest.NewRecorder()

	h.Catalogue(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Permissions []string `json:"permissions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Permissions) == 0 {
		t.Fatal("expected non-empty permission catalogue")
	}

	found := false
	for _, p := range body.Permissions {
		if p == "roles.edit" {
			found = true
		}
	}
	if !found {
		t.Errorf("catalogue %v should contain roles.edit", body.Permissions)
	}
}
