// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/timecard/internal/auth"
	"github.com/hitoshi/timecard/internal/config"
	"github.com/hitoshi/timecard/internal/database"
	"github.com/hitoshi/timecard/internal/fixture"
	"github.com/hitoshi/timecard/internal/handler"
	"github.com/hitoshi/timecard/internal/logger"
	"github.com/hitoshi/timecard/internal/metrics"
	"github.com/hitoshi/timecard/internal/middleware"
	"github.com/hitoshi/timecard/internal/repository"
	"github.com/hitoshi/timecard/internal/timesheet"
	"github.com/hitoshi/timecard/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store_backend", cfg.StoreBackend),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// buildRepos は設定に応じたバックエンドでリポジトリを構築する。
// memoryバックエンドの場合はデモ用初期データを投入済みの状態で返す。
// 返り値のcloseは呼び出し側がdeferすること（memoryではno-op）。
func buildRepos(cfg *config.Config) (repository.UserRepository, repository.TimesheetRepository, repository.Pinger, func() error, error) {
	if cfg.StoreBackend == config.StorePostgres {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		slog.Info("database connection established")
		return repository.NewPostgresUserRepo(db), repository.NewPostgresTimesheetRepo(db), db, db.Close, nil
	}

	users, err := fixture.Users()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to build fixture users: %w", err)
	}

	userRepo := repository.NewMemoryUserRepo(users)
	tsRepo := repository.NewMemoryTimesheetRepo(fixture.Timesheets())

	slog.Info("in-memory store initialized",
		slog.Int("users", len(users)),
	)
	return userRepo, tsRepo, tsRepo, func() error { return nil }, nil
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストアの構築
	userRepo, tsRepo, pinger, closeStore, err := buildRepos(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. ドメインサービスの初期化
	authService := auth.NewService(userRepo, auth.ServiceConfig{
		JWTSecret:   cfg.JWTSecret,
		TokenMaxAge: cfg.TokenMaxAge,
	})
	tsService := timesheet.NewService(tsRepo, collector)
	userService := user.NewService(userRepo)

	// 4. レートリミッターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rateLimitPerSec(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.MutationRate = rateLimitPerSec(cfg.RateLimitMutation)
	rateLimiterCfg.MutationBurst = cfg.RateLimitMutation
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 5. ルーターの構築
	deps := &handler.RouterDeps{
		HealthChecker:     pinger,
		TokenVerifier:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		MetricsCollector: collector,
		MetricsGatherer:  registry,

		AuthService:      authService,
		TimesheetService: tsService,
		TimesheetConfig: handler.TimesheetHandlerConfig{
			PageSizeDefault: cfg.PageSizeDefault,
			PageSizeMax:     cfg.PageSizeMax,
		},
		UserService: userService,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
// memoryバックエンドにはスキーマがないためエラーを返す。
func runMigrate(cfg *config.Config) error {
	if cfg.StoreBackend != config.StorePostgres {
		return fmt.Errorf("migrate requires STORE_BACKEND=postgres")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed はデモ用初期データを投入する。
// memoryバックエンドは起動時に常に投入されるため、postgres専用。
func runSeed(cfg *config.Config) error {
	if cfg.StoreBackend != config.StorePostgres {
		return fmt.Errorf("seed requires STORE_BACKEND=postgres (memory backend is seeded at startup)")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	userRepo := repository.NewPostgresUserRepo(db)
	tsRepo := repository.NewPostgresTimesheetRepo(db)

	if err := database.Seed(context.Background(), userRepo, tsRepo); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed data loaded successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// rateLimitPerSec はreq/min設定をreq/secのrate.Limitに変換する。
func rateLimitPerSec(perMinute int) rate.Limit {
	return rate.Limit(float64(perMinute) / 60.0)
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
