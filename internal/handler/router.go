package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/timecard/internal/metrics"
	"github.com/hitoshi/timecard/internal/middleware"
	"github.com/hitoshi/timecard/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     repository.Pinger
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス（nilの場合は無効）
	MetricsCollector *metrics.Collector
	MetricsGatherer  prometheus.Gatherer

	// サービス
	AuthService      AuthServiceInterface
	TimesheetService TimesheetServiceInterface
	TimesheetConfig  TimesheetHandlerConfig
	UserService      UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Metrics → Logging → (認証ルートのみ) Auth → RateLimit
//
// ログインルート（/auth/login）、/health、/metricsは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.MetricsCollector != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.MetricsCollector))
	}
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	// 型付きnilをインターフェースに詰めないよう明示的に変換する
	var rowsRecorder RowsRecorder
	if deps.MetricsCollector != nil {
		rowsRecorder = deps.MetricsCollector
	}

	authHandler := NewAuthHandler(deps.AuthService)
	tsHandler := NewTimesheetHandler(deps.TimesheetService, deps.TimesheetConfig, rowsRecorder)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Post("/auth/login", authHandler.Login)
	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		// 一覧と作成
		r.Route("/timesheets", func(r chi.Router) {
			r.Get("/", tsHandler.List)
			// 変更系には専用レート制限を追加
			r.With(deps.RateLimiter.MutationMiddleware()).Post("/", tsHandler.Create)
		})

		// 個別タイムシート
		r.Route("/timesheet/{id}", func(r chi.Router) {
			r.Get("/", tsHandler.Get)
			r.Get("/week", tsHandler.GetWeekView)
			r.With(deps.RateLimiter.MutationMiddleware()).Put("/", tsHandler.Update)
			r.With(deps.RateLimiter.MutationMiddleware()).Delete("/", tsHandler.Delete)
		})

		// ユーザー参照
		r.Get("/users/{id}", userHandler.Get)
	})

	return r
}

// NewHealthHandler はストア疎通確認付きのヘルスチェックハンドラーを返す。
func NewHealthHandler(checker repository.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
