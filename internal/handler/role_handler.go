package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/form"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/middleware"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/model"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/repository"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/role"
)

// RoleServiceInterface はロールハンドラーが必要とするサービスインターフェース。
type RoleServiceInterface interface {
	List(ctx context.Context, p *authz.Principal) (*role.ListResult, error)
	Create(ctx context.Context, p *authz.Principal, payload repository.Payload) (*model.Role, error)
	Update(ctx context.Context, p *authz.Principal, id string, payload repository.Payload) error
	Delete(ctx context.Context, p *authz.Principal, id string) error
	// Catalogue はロールエディタが提示する全パーミッションを返す。
	Catalogue() []string
}

// roleFormSchema はロールエディタが送信するフィールドの定義。
// permissionsは複数選択（チェックボックス群）として送信される。
var roleFormSchema = form.Schema{
	Fields: []form.Field{
		{Name: "name"},
		{Name: "notes"},
		{Name: "permissions", Multi: true},
	},
}

// RoleHandler はロール管理のHTTPハンドラー。
type RoleHandler struct {
	service RoleServiceInterface
}

// NewRoleHandler はRoleHandlerを生成する。
func NewRoleHandler(service RoleServiceInterface) *RoleHandler {
	return &RoleHandler{service: service}
}

// roleResponse はロール1件のAPIレスポンス。
type roleResponse struct {
	ID          string   `json:"id"`
	TenantID    string   `json:"tenant_id,omitempty"`
	Name        string   `json:"name"`
	Notes       string   `json:"notes"`
	Permissions []string `json:"permissions"`
	CanEdit     bool     `json:"can_edit"`
	CanDelete   bool     `json:"can_delete"`
}

// roleListResponse はロール一覧のAPIレスポンス。
type roleListResponse struct {
	Roles     []roleResponse `json:"roles"`
	CanCreate bool           `json:"can_create"`
}

// List はロール一覧を返す。
// GET /api/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	result, err := h.service.List(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRoleListResponse(result))
}

// Create はロールを作成し、作成後の一覧全体を返す。
// 作成されるロールには作成者のテナントIDが刻印される。
// POST /api/roles
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	payload, ok := parseFormPayload(w, r, roleFormSchema)
	if !ok {
		return
	}

	if _, err := h.service.Create(r.Context(), principal, payload); err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.service.List(r.Context(), principal)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRoleListResponse(result))
}

// Update はロールを部分更新し、送信されたペイロードをそのまま返す。
// PATCH /api/roles/{id}
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	roleID := chi.URLParam(r, "id")

	payload, ok := parseFormPayload(w, r, roleFormSchema)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), principal, roleID, payload); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// Delete はロールを削除する。割り当て済みユーザーの紐付けはDBの
// カスケードで消えるが、発行済みセッションのクレームには影響しない。
// DELETE /api/roles/{id}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	roleID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), principal, roleID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Catalogue はロールエディタのチェックボックス群に提示するパーミッション一覧を返す。
// GET /api/roles/permissions
func (h *RoleHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"permissions": h.service.Catalogue(),
	})
}

// toRoleListResponse はサービス層の一覧結果からAPIレスポンスに変換する。
func toRoleListResponse(result *role.ListResult) roleListResponse {
	roles := make([]roleResponse, len(result.Roles))
	for i, view := range result.Roles {
		roles[i] = roleResponse{
			ID:          view.ID,
			TenantID:    view.TenantID,
			Name:        view.Name,
			Notes:       view.Notes,
			Permissions: view.Permissions,
			CanEdit:     view.CanEdit,
			CanDelete:   view.CanDelete,
		}
	}
	return roleListResponse{
		Roles:     roles,
		CanCreate: result.CanCreate,
	}
}
