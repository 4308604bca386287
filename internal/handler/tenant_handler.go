package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/form"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/middleware"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/tenant"
)

// TenantServiceInterface はテナントハンドラーが必要とするサービスインターフェース。
type TenantServiceInterface interface {
	List(ctx context.Context, p *authz.Principal) (*tenant.ListResult, error)
	Create(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Tenant, error)
	Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error
	Delete(ctx context.Context, p *authz.Principal, id string) error
}

// tenantFormSchema はテナントエディタが送信するフィールドの定義。
// スキーマ外のフィールド（idや各種タイムスタンプ等）はペイロードに含めない。
var tenantFormSchema = form.Schema{
	Fields: []form.Field{
		{Name: "name"},
		{Name: "notes"},
		{Name: "members_email_regex"},
	},
}

// TenantHandler はテナント管理のHTTPハンドラー。
type TenantHandler struct {
	service TenantServiceInterface
}

// NewTenantHandler はTenantHandlerを生成する。
func NewTenantHandler(service TenantServiceInterface) *TenantHandler {
	return &TenantHandler{service: service}
}

// tenantResponse はテナント1件のAPIレスポンス。
type tenantResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Notes             string `json:"notes"`
	MembersEmailRegex string `json:"members_email_regex"`
	CanEdit           bool   `json:"can_edit"`
	CanDelete         bool   `json:"can_delete"`
}

// tenantListResponse はテナント一覧のAPIレスポンス。
type tenantListResponse struct {
	Tenants   []tenantResponse `json:"tenants"`
	CanCreate bool             `json:"can_create"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// List はテナント一覧を返す。匿名でも閲覧できる。
// GET /api/tenants
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	result, err := h.service.List(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTenantListResponse(result))
}

// Create はテナントを作成し、作成後の一覧全体を返す。
// POST /api/tenants
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	payload, ok := parseFormPayload(w, r, tenantFormSchema)
	if !ok {
		return
	}

	if _, err := h.service.Create(r.Context(), principal, payload); err != nil {
		handleServiceError(w, err)
		return
	}

	// 作成成功時は一覧を再取得して返す（クライアントは一覧を差し替える）
	result, err := h.service.List(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTenantListResponse(result))
}

// Update はテナントを部分更新し、送信されたペイロードをそのまま返す。
// PATCH /api/tenants/{id}
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	tenantID := chi.URLParam(r, "id")

	payload, ok := parseFormPayload(w, r, tenantFormSchema)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), principal, tenantID, payload); err != nil {
		handleServiceError(w, err)
		return
	}

	// 更新成功時は送信された部分ペイロードをエコーする
	writeJSON(w, http.StatusOK, payload)
}

// Delete はテナントを削除する。
// DELETE /api/tenants/{id}
func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	tenantID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), principal, tenantID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// toTenantListResponse はサービス層の一覧結果からAPIレスポンスに変換する。
func toTenantListResponse(result *tenant.ListResult) tenantListResponse {
	tenants := make([]tenantResponse, len(result.Tenants))
	for i, view := range result.Tenants {
		tenants[i] = tenantResponse{
			ID:                view.ID,
			Name:              view.Name,
			Notes:             view.Notes,
			MembersEmailRegex: view.MembersEmailRegex,
			CanEdit:           view.CanEdit,
			CanDelete:         view.CanDelete,
		}
	}
	return tenantListResponse{
		Tenants:   tenants,
		CanCreate: result.CanCreate,
	}
}

// parseFormPayload はフォーム送信値を解析しスキーマで絞り込んだペイロードを返す。
// 解析に失敗した場合はエラーレスポンスを書き込みfalseを返す。
func parseFormPayload(w http.ResponseWriter, r *http.Request, schema form.Schema) (repository.Payload, bool) {
	if err := r.ParseForm(); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいフォーム形式でリクエストしてください。",
		})
		return nil, false
	}
	return repository.Payload(form.Filter(r.PostForm, schema)), true
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeTenantNotFound, model.ErrCodeRoleNotFound, model.ErrCodeProfileNotFound:
		return http.StatusNotFound
	case model.ErrCodeMissingField, model.ErrCodeInvalidField:
		return http.StatusBadRequest
	case model.ErrCodeAvatarBlocked:
		// ブロック理由は区別せずに404へ潰す（URLの探索を防ぐ）
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
