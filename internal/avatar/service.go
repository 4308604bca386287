// Package avatar はプロフィールのアバター画像プロキシを提供する。
//
// アバターURLはユーザーが入力する外部URLであり、そのまま取得すると
// 内部ネットワークへのSSRFに使われうる。取得はSSRF防止機能付きの
// HTTPクライアント経由でのみ行う。
package avatar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/security"
)

// Image は取得したアバター画像を表す。
type Image struct {
	ContentType string
	Data        []byte
}

// ServiceConfig はアバタープロキシの設定。
type ServiceConfig struct {
	FetchTimeout time.Duration
	MaxSize      int64
}

// Service はアバター画像の取得サービス。
type Service struct {
	profileRepo repository.ProfileRepository
	guard       security.SSRFGuardService
	client      *http.Client
	config      ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(profileRepo repository.ProfileRepository, guard security.SSRFGuardService, config ServiceConfig) *Service {
	return &Service{
		profileRepo: profileRepo,
		guard:       guard,
		client:      guard.NewSafeClient(config.FetchTimeout, config.MaxSize),
		config:      config,
	}
}

// Fetch は指定プロフィールのavatar_urlから画像を取得する。
// プロフィールなし・URL未設定・危険なURL・取得失敗はすべて
// AvatarBlockedErrorに丸め、詳細はログのみに記録する。
func (s *Service) Fetch(ctx context.Context, profileID string) (*Image, error) {
	prof, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if prof == nil || prof.AvatarURL == "" {
		return nil, model.NewAvatarBlockedError()
	}

	if err := s.guard.ValidateURL(prof.AvatarURL); err != nil {
		slog.Warn("avatar URL blocked",
			slog.String("profile_id", profileID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewAvatarBlockedError()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, prof.AvatarURL, nil)
	if err != nil {
		return nil, model.NewAvatarBlockedError()
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("avatar fetch failed",
			slog.String("profile_id", profileID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewAvatarBlockedError()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewAvatarBlockedError()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxSize))
	if err != nil {
		return nil, model.NewAvatarBlockedError()
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &Image{ContentType: contentType, Data: data}, nil
}
