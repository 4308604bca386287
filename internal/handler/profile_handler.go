package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/avatar"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/form"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/i18n"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/middleware"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/profile"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	List(ctx context.Context, p *authz.Principal) (*profile.ListResult, error)
	Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error
	// Languages はプロフィールエディタの言語セレクタに提示するカタログを返す。
	Languages() []i18n.Language
}

// AvatarServiceInterface はアバタープロキシが必要とするサービスインターフェース。
type AvatarServiceInterface interface {
	Fetch(ctx context.Context, profileID string) (*avatar.Image, error)
}

// AvatarMetrics はアバター取得のブロックを記録するインターフェース。
type AvatarMetrics interface {
	RecordAvatarBlocked()
}

// profileFormSchema はプロフィールエディタが送信するフィールドの定義。
var profileFormSchema = form.Schema{
	Fields: []form.Field{
		{Name: "first_name"},
		{Name: "last_name"},
		{Name: "display_name"},
		{Name: "salutation"},
		{Name: "title"},
		{Name: "avatar_url"},
		{Name: "website_url"},
		{Name: "phone"},
		{Name: "birthday_date"},
		{Name: "time_zone"},
		{Name: "language"},
	},
}

// ProfileHandler はユーザープロフィール管理のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
	avatars AvatarServiceInterface
	metrics AvatarMetrics // nilを許容する
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface, avatars AvatarServiceInterface, metrics AvatarMetrics) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		avatars: avatars,
		metrics: metrics,
	}
}

// profileResponse はプロフィール1件のAPIレスポンス。
type profileResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DisplayName  string `json:"display_name"`
	Salutation   string `json:"salutation"`
	Title        string `json:"title"`
	AvatarURL    string `json:"avatar_url"`
	WebsiteURL   string `json:"website_url"`
	Phone        string `json:"phone"`
	BirthdayDate string `json:"birthday_date"`
	TimeZone     string `json:"time_zone"`
	Language     string `json:"language"`
	CountryFlag  string `json:"country_flag"`
	CanEdit      bool   `json:"can_edit"`
}

// profileListResponse はプロフィール一覧のAPIレスポンス。
// プロフィールは作成・削除されないため、can_createは持たない。
type profileListResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

// List はプロフィール一覧を返す。
// GET /api/users
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	result, err := h.service.List(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileListResponse(result))
}

// Update はプロフィールを部分更新し、送信されたペイロードをそのまま返す。
// PATCH /api/users/{id}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	profileID := chi.URLParam(r, "id")

	payload, ok := parseFormPayload(w, r, profileFormSchema)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), principal, profileID, payload); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// Languages は言語セレクタのカタログを返す。
// GET /api/users/languages
func (h *ProfileHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": h.service.Languages(),
	})
}

// Avatar はプロフィールのアバター画像をSSRFガード付きクライアント経由で配信する。
// 取得できない理由（URL未設定・ガード拒否・上流エラー）は区別せず404に潰す。
// GET /api/users/{id}/avatar
func (h *ProfileHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	img, err := h.avatars.Fetch(r.Context(), profileID)
	if err != nil {
		var apiErr *model.APIError
		if h.metrics != nil && errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeAvatarBlocked {
			h.metrics.RecordAvatarBlocked()
		}
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	// 上流のキャッシュ制御は引き継がず、短時間のキャッシュのみ許可する
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := w.Write(img.Data); err != nil {
		slog.Debug("failed to write avatar response", slog.String("error", err.Error()))
	}
}

// toProfileListResponse はサービス層の一覧結果からAPIレスポンスに変換する。
func toProfileListResponse(result *profile.ListResult) profileListResponse {
	profiles := make([]profileResponse, len(result.Profiles))
	for i, view := range result.Profiles {
		profiles[i] = profileResponse{
			ID:           view.ID,
			FirstName:    view.FirstName,
			LastName:     view.LastName,
			DisplayName:  view.DisplayName,
			Salutation:   view.Salutation,
			Title:        view.Title,
			AvatarURL:    view.AvatarURL,
			WebsiteURL:   view.WebsiteURL,
			Phone:        view.Phone,
			BirthdayDate: view.BirthdayDate,
			TimeZone:     view.TimeZone,
			Language:     view.Language,
			CountryFlag:  view.CountryFlag,
			CanEdit:      view.CanEdit,
		}
	}
	return profileListResponse{Profiles: profiles}
}
