// Package role はロール管理のドメインロジックを提供する。
package role

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/security"
)

// RoleView はロールと閲覧者の操作可否を結合したドメインオブジェクト。
type RoleView struct {
	model.Role
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// ListResult はロール一覧と一覧レベルの操作可否を表す。
type ListResult struct {
	Roles     []RoleView `json:"roles"`
	CanCreate bool       `json:"can_create"`
}

// Service はロール管理のサービス層。
// 書き込み系操作はroles.editパーミッションで認可する。
type Service struct {
	repo      repository.RoleRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.RoleRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// List は全ロールを閲覧者の操作可否付きで返す。
func (s *Service) List(ctx context.Context, p *authz.Principal) (*ListResult, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ロール一覧の取得に失敗しました: %w", err)
	}

	canEdit := authz.HasPermission(p, authz.PermRolesEdit)

	views := make([]RoleView, len(roles))
	for i, role := range roles {
		views[i] = RoleView{
			Role:      role,
			CanEdit:   canEdit,
			CanDelete: canEdit,
		}
	}

	return &ListResult{
		Roles:     views,
		CanCreate: canEdit,
	}, nil
}

// Create はロールを作成する。nameは必須。
// 作成されるロールのtenant_idは作成者のクレームから刻印される。
// スーパー管理者（テナント未所属）の作成するロールはテナント横断となる。
func (s *Service) Create(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Role, error) {
	if !authz.HasPermission(p, authz.PermRolesEdit) {
		return nil, model.NewForbiddenError(authz.PermRolesEdit)
	}

	payload = s.sanitizer.SanitizePayload(payload)

	name, _ := payload["name"].(string)
	if name == "" {
		return nil, model.NewMissingFieldError("name")
	}

	now := time.Now()
	role := &model.Role{
		ID:        uuid.New().String(),
		TenantID:  p.Claims.TenantID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if notes, ok := payload["notes"].(string); ok {
		role.Notes = notes
	}
	if perms, ok := payload["permissions"].([]string); ok {
		role.Permissions = perms
	}

	if err := s.repo.Insert(ctx, role); err != nil {
		return nil, fmt.Errorf("ロールの作成に失敗しました: %w", err)
	}

	return role, nil
}

// Update は指定IDのロールをペイロードの項目だけ部分更新する。
func (s *Service) Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error {
	if !authz.HasPermission(p, authz.PermRolesEdit) {
		return model.NewForbiddenError(authz.PermRolesEdit)
	}

	payload = s.sanitizer.SanitizePayload(payload)

	err := s.repo.Update(ctx, id, payload)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewRoleNotFoundError(id)
	}
	if errors.Is(err, repository.ErrNoFields) {
		return model.NewMissingFieldError("payload")
	}
	if err != nil {
		return fmt.Errorf("ロールの更新に失敗しました: %w", err)
	}

	return nil
}

// Delete は指定IDのロールを削除する。削除されるのは指定行のみ。
func (s *Service) Delete(ctx context.Context, p *authz.Principal, id string) error {
	if !authz.HasPermission(p, authz.PermRolesEdit) {
		return model.NewForbiddenError(authz.PermRolesEdit)
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewRoleNotFoundError(id)
	}
	if err != nil {
		return fmt.Errorf("ロールの削除に失敗しました: %w", err)
	}

	return nil
}

// Catalogue は割り当て可能なパーミッション文字列の一覧を返す。
// ロールエディタのマルチセレクト用。
func (s *Service) Catalogue() []string {
	return authz.KnownPermissions()
}
