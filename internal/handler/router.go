package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vvalchev/supabase-multitenancy-rbac/internal/middleware"
)

// SetupAuthRoutes は認証関連のルーティングを設定したchi.Routerを返す。
func SetupAuthRoutes(service AuthServiceInterface, config AuthHandlerConfig) http.Handler {
	r := chi.NewRouter()
	h := NewAuthHandler(service, config, nil)

	r.Route("/auth", func(r chi.Router) {
		// OAuthフロー
		r.Get("/google/login", h.Login)
		r.Get("/google/callback", h.Callback)

		// セッション管理
		r.Post("/logout", h.Logout)
		r.Post("/refresh", h.Refresh)
		r.Get("/me", h.Me)
	})

	return r
}

// HealthChecker はDB接続の死活確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// MetricsRecorder はルーター全体が使用するメトリクスフックをまとめたインターフェース。
type MetricsRecorder interface {
	AuthMetrics
	AvatarMetrics
	middleware.RequestMetrics
	middleware.GuardMetrics
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 死活監視
	HealthChecker HealthChecker

	// ミドルウェア依存
	PrincipalResolver middleware.PrincipalResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRF              middleware.CSRFConfig
	// LoginPath はガード拒否時のリダイレクト先。空の場合は/login。
	LoginPath string

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// リソース
	TenantService  TenantServiceInterface
	RoleService    RoleServiceInterface
	ProfileService ProfileServiceInterface
	AvatarService  AvatarServiceInterface

	// 観測
	Metrics        MetricsRecorder // nilを許容する
	MetricsHandler http.Handler    // nilの場合/metricsを公開しない
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Metrics → Session → Logging → RateLimit(General)
//
// セッションミドルウェアは全ルートに適用され、Principalまたはnil（匿名）を注入する。
// アクセス制御はルートガード（303リダイレクト）とサービス層の認可判定が担う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	var guardRec middleware.GuardMetrics
	if deps.Metrics != nil {
		guardRec = deps.Metrics
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	// セッション→ロギングの順（ロギングがuser_idを拾えるように）
	r.Use(middleware.NewSessionMiddleware(deps.PrincipalResolver))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	var authRec AuthMetrics
	var avatarRec AvatarMetrics
	if deps.Metrics != nil {
		authRec = deps.Metrics
		avatarRec = deps.Metrics
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, authRec)
	tenantHandler := NewTenantHandler(deps.TenantService)
	roleHandler := NewRoleHandler(deps.RoleService)
	profileHandler := NewProfileHandler(deps.ProfileService, deps.AvatarService, avatarRec)

	csrfMW := middleware.NewCSRFMiddleware(deps.CSRF)

	// --- 認証ルート（OAuthフロー、レート制限の外） ---
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/me", authHandler.Me)
	})

	// --- ヘルスチェック ---
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- メトリクス公開 ---
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- APIルート（一般レート制限下） ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Handle("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))

		// テナント管理: 一覧は匿名可、変更系の認可はサービス層で判定する
		r.Route("/api/tenants", func(r chi.Router) {
			r.Get("/", tenantHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(csrfMW)
				r.Use(deps.RateLimiter.MutationMiddleware())
				r.Post("/", tenantHandler.Create)
				r.Patch("/{id}", tenantHandler.Update)
				r.Delete("/{id}", tenantHandler.Delete)
			})
		})

		// ロール管理: ルートは認証のみを要求し、編集権限はサービス層で判定する
		r.Route("/api/roles", func(r chi.Router) {
			r.Use(middleware.RequireAuth(loginPath, guardRec))

			r.Get("/", roleHandler.List)
			r.Get("/permissions", roleHandler.Catalogue)

			r.Group(func(r chi.Router) {
				r.Use(csrfMW)
				r.Use(deps.RateLimiter.MutationMiddleware())
				r.Post("/", roleHandler.Create)
				r.Patch("/{id}", roleHandler.Update)
				r.Delete("/{id}", roleHandler.Delete)
			})
		})

		// プロフィール管理: ルートは認証のみを要求する
		r.Route("/api/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth(loginPath, guardRec))

			r.Get("/", profileHandler.List)
			r.Get("/languages", profileHandler.Languages)
			r.Get("/{id}/avatar", profileHandler.Avatar)

			r.Group(func(r chi.Router) {
				r.Use(csrfMW)
				r.Use(deps.RateLimiter.MutationMiddleware())
				r.Patch("/{id}", profileHandler.Update)
			})
		})
	})

	return r
}
