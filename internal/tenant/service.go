// Package tenant はテナント管理のドメインロジックを提供する。
package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/security"
)

// TenantView はテナントと閲覧者の操作可否を結合したドメインオブジェクト。
type TenantView struct {
	model.Tenant
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// ListResult はテナント一覧と一覧レベルの操作可否を表す。
type ListResult struct {
	Tenants   []TenantView `json:"tenants"`
	CanCreate bool         `json:"can_create"`
}

// Service はテナント管理のサービス層。
// 書き込み系操作はtenant_accessの粗粒度軸で認可する。
type Service struct {
	repo      repository.TenantRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.TenantRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// List は全テナントを閲覧者の操作可否付きで返す。
// テナント一覧は匿名でも閲覧できる。
func (s *Service) List(ctx context.Context, p *authz.Principal) (*ListResult, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("テナント一覧の取得に失敗しました: %w", err)
	}

	canWrite := authz.CanWriteTenants(p)

	views := make([]TenantView, len(tenants))
	for i, tenant := range tenants {
		views[i] = TenantView{
			Tenant:    tenant,
			CanEdit:   canWrite,
			CanDelete: canWrite,
		}
	}

	return &ListResult{
		Tenants:   views,
		CanCreate: canWrite,
	}, nil
}

// Create はテナントを作成する。nameは必須。
func (s *Service) Create(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Tenant, error) {
	if !authz.CanWriteTenants(p) {
		return nil, model.NewForbiddenError("tenants.write")
	}

	payload, emailRegex, err := s.sanitizeTenantPayload(payload)
	if err != nil {
		return nil, err
	}

	name, _ := payload["name"].(string)
	if name == "" {
		return nil, model.NewMissingFieldError("name")
	}

	now := time.Now()
	tenant := &model.Tenant{
		ID:                uuid.New().String(),
		Name:              name,
		MembersEmailRegex: emailRegex,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if notes, ok := payload["notes"].(string); ok {
		tenant.Notes = notes
	}

	if err := s.repo.Insert(ctx, tenant); err != nil {
		return nil, fmt.Errorf("テナントの作成に失敗しました: %w", err)
	}

	return tenant, nil
}

// Update は指定IDのテナントをペイロードの項目だけ部分更新する。
func (s *Service) Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error {
	if !authz.CanWriteTenants(p) {
		return model.NewForbiddenError("tenants.write")
	}

	payload, _, err := s.sanitizeTenantPayload(payload)
	if err != nil {
		return err
	}

	err = s.repo.Update(ctx, id, payload)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewTenantNotFoundError(id)
	}
	if errors.Is(err, repository.ErrNoFields) {
		return model.NewMissingFieldError("payload")
	}
	if err != nil {
		return fmt.Errorf("テナントの更新に失敗しました: %w", err)
	}

	return nil
}

// sanitizeTenantPayload は自由記述フィールド（name、notes）をサニタイズする。
// members_email_regexは正規表現パターンであり、マークアップ除去を通すと
// メタ文字がHTMLエンティティ化されて自動割り当てが一致しなくなるため、
// サニタイズせずregexp.Compileで構文を検証する。
// 第2戻り値は送信されたパターン（未送信なら空文字列）。
func (s *Service) sanitizeTenantPayload(payload repository.Payload) (repository.Payload, string, error) {
	emailRegex, hasRegex := payload["members_email_regex"].(string)
	if hasRegex {
		if _, err := regexp.Compile(emailRegex); err != nil {
			return nil, "", model.NewInvalidFieldError("members_email_regex")
		}
	}

	out := s.sanitizer.SanitizePayload(payload)
	if hasRegex {
		out["members_email_regex"] = emailRegex
	}
	return out, emailRegex, nil
}

// Delete は指定IDのテナントを削除する。
func (s *Service) Delete(ctx context.Context, p *authz.Principal, id string) error {
	if !authz.CanWriteTenants(p) {
		return model.NewForbiddenError("tenants.write")
	}

	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewTenantNotFoundError(id)
	}
	if err != nil {
		return fmt.Errorf("テナントの削除に失敗しました: %w", err)
	}

	return nil
}
