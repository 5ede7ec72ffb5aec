package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/personabuilder/internal/metrics"
	"github.com/hitoshi/personabuilder/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// ペルソナ生成
	PersonaService PersonaServiceInterface
	URLValidator   URLValidator

	// メトリクス
	Metrics        *metrics.Collector
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → RequestID → Logging → Recovery → RateLimit(General)
//
// 運用系のルート（/health、/metrics）はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	var recorder middleware.StatusRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, recorder))
	r.Use(middleware.NewRecoveryMiddleware())

	personaHandler := NewPersonaHandler(deps.PersonaService, deps.URLValidator)

	// --- 運用系のルート ---

	r.Get("/health", HealthCheck)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// Webフォーム
		r.Get("/", ServeIndex)

		// POST /build_persona - ペルソナ生成（生成専用レート制限を追加）
		r.With(deps.RateLimiter.BuildMiddleware()).Post("/build_persona", personaHandler.BuildPersona)
	})

	return r
}
