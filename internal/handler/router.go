package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/messdash/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ディレクトリ（ユーザー一覧・ログイン）
	DirectoryService DirectoryServiceInterface

	// ダッシュボード（セッション・注文ビュー）
	DashboardService DashboardServiceInterface

	// Prometheusスクレイプ用ハンドラー
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → RequestID → Logging → Recovery
//
// レート制限は/api/*のみに適用し、/healthと/metricsは対象外とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))

	directoryHandler := NewDirectoryHandler(deps.DirectoryService)
	dashboardHandler := NewDashboardHandler(deps.DashboardService)

	// --- 運用エンドポイント（レート制限の対象外） ---

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/users", directoryHandler.ListUsers)

		// POST /api/login - ログイン（専用レート制限を追加）
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/api/login", directoryHandler.Login)

		r.Get("/api/me", dashboardHandler.Me)
		r.Get("/api/orders/{month}", dashboardHandler.Orders)
	})

	return r
}

// healthHandler はヘルスチェックに応答する。
// GET /health
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
