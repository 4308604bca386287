// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vvalchev/supabase-multitenancy-rbac/internal/authz"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストにPrincipalを格納するためのキー。
var principalContextKey = contextKey("principal")

// PrincipalResolver はセッションIDからPrincipalを復元するインターフェース。
// auth.Serviceの部分集合として定義する。
type PrincipalResolver interface {
	GetPrincipal(ctx context.Context, sessionID string) (*authz.Principal, error)
}

// NewSessionMiddleware はHTTP Only CookieからセッションIDを読み取り、
// Principalをリクエストコンテキストに注入するミドルウェアを返す。
// Cookieなし・セッション無効の場合はnil（匿名）を注入し、次に進む。
// 認可判定はガードミドルウェアと各ハンドラーが行う。
// コンテキストの内容はリクエストごとに再評価され、リクエスト間でキャッシュされない。
func NewSessionMiddleware(resolver PrincipalResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var principal *authz.Principal

			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				principal, err = resolver.GetPrincipal(r.Context(), cookie.Value)
				if err != nil {
					// 復元失敗は匿名として扱い、リクエスト自体は通す
					slog.Error("failed to resolve principal",
						slog.String("error", err.Error()),
					)
					principal = nil
				}
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストからPrincipalを取得する。
// 匿名リクエストではnilを返す。
func PrincipalFromContext(ctx context.Context) *authz.Principal {
	principal, ok := ctx.Value(principalContextKey).(*authz.Principal)
	if !ok {
		return nil
	}
	return principal
}

// ContextWithPrincipal はコンテキストにPrincipalを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
