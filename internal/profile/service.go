// Package profile はユーザープロフィール管理のドメインロジックを提供する。
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/i18n"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/security"
)

// ProfileView はプロフィールと閲覧者の操作可否を結合したドメインオブジェクト。
// CountryFlagはlanguageフィールドの地域コードから導出した国旗絵文字。
// プロフィールに削除操作はない（ユーザー行と1対1のため）。
type ProfileView struct {
	model.UserProfile
	CountryFlag string `json:"country_flag"`
	CanEdit     bool   `json:"can_edit"`
}

// ListResult はプロフィール一覧を表す。
// プロフィールは作成・削除されないため、一覧レベルの操作可否はない。
type ListResult struct {
	Profiles []ProfileView `json:"profiles"`
}

// Service はプロフィール管理のサービス層。
// 編集はprofiles.editパーミッション保持者または本人のみ。
type Service struct {
	repo      repository.ProfileRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProfileRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// List は全プロフィールを閲覧者の操作可否付きで返す。
func (s *Service) List(ctx context.Context, p *authz.Principal) (*ListResult, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロフィール一覧の取得に失敗しました: %w", err)
	}

	views := make([]ProfileView, len(profiles))
	for i, prof := range profiles {
		views[i] = ProfileView{
			UserProfile: prof,
			CountryFlag: i18n.CountryFlag(prof.Language),
			CanEdit:     authz.CanEditProfile(p, prof.ID),
		}
	}

	return &ListResult{Profiles: views}, nil
}

// Update は指定IDのプロフィールをペイロードの項目だけ部分更新する。
func (s *Service) Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error {
	if !authz.CanEditProfile(p, id) {
		return model.NewForbiddenError(authz.PermProfilesEdit)
	}

	payload = s.sanitizer.SanitizePayload(payload)

	err := s.repo.Update(ctx, id, payload)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewProfileNotFoundError(id)
	}
	if errors.Is(err, repository.ErrNoFields) {
		return model.NewMissingFieldError("payload")
	}
	if err != nil {
		return fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}

	return nil
}

// Languages はプロフィールエディタ用の言語カタログを返す。
func (s *Service) Languages() []i18n.Language {
	return i18n.Languages()
}
