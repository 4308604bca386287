package middleware

import (
	"log/slog"
	"net/http"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
)

// GuardMetrics はガードによるリダイレクトを記録するインターフェース。
type GuardMetrics interface {
	RecordGuardRedirect(path string)
}

// NewGuardMiddleware はルートをガード判定で保護するミドルウェアを返す。
// requiredPermissionが空文字の場合は認証のみを要求する。
// 拒否されたリクエストは303でloginPathへリダイレクトする。
// recはnilを許容する。
func NewGuardMiddleware(requiredPermission, loginPath string, rec GuardMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())

			decision := authz.Guard(principal, requiredPermission, loginPath)
			if !decision.Allowed {
				slog.Info("request blocked by route guard",
					slog.String("path", r.URL.Path),
					slog.String("required_permission", requiredPermission),
					slog.Bool("authenticated", principal != nil),
				)
				if rec != nil {
					rec.RecordGuardRedirect(r.URL.Path)
				}
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth は認証のみを要求するガードを返す。
func RequireAuth(loginPath string, rec GuardMetrics) func(next http.Handler) http.Handler {
	return NewGuardMiddleware("", loginPath, rec)
}
