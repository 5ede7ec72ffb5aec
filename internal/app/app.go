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

	"github.com/hitoshi/personabuilder/internal/config"
	"github.com/hitoshi/personabuilder/internal/gemini"
	"github.com/hitoshi/personabuilder/internal/handler"
	"github.com/hitoshi/personabuilder/internal/logger"
	"github.com/hitoshi/personabuilder/internal/metrics"
	"github.com/hitoshi/personabuilder/internal/middleware"
	"github.com/hitoshi/personabuilder/internal/persona"
	"github.com/hitoshi/personabuilder/internal/reddit"
	"github.com/hitoshi/personabuilder/internal/security"
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
			port = "8000"
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
		slog.String("gemini_model", cfg.GeminiModel),
	)

	switch cmd {
	case CommandBuild:
		if len(args) < 2 {
			return fmt.Errorf("build command requires a profile URL argument")
		}
		return runBuild(cfg, args[1], w)
	default:
		return runServe(cfg)
	}
}

// wirePersonaService はペルソナ生成パイプラインの依存関係をワイヤリングする。
// serveモードとbuildモードの両方から利用する。
func wirePersonaService(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (*persona.Service, error) {
	// 1. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewTextSanitizer()

	// 2. Redditクライアントの初期化
	redditClient, err := reddit.NewClient(
		reddit.Credentials{
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			UserAgent:    cfg.RedditUserAgent,
		},
		ssrfGuard.NewSafeClient(cfg.FetchTimeout),
		sanitizer,
		slog.Default(),
		cfg.FetchCommentLimit,
		cfg.FetchSubmissionLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client: %w", err)
	}

	// 3. Geminiジェネレーターの初期化
	generator, err := gemini.NewGenerator(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini generator: %w", err)
	}

	// 4. ペルソナ生成サービスの初期化
	return persona.NewService(redditClient, generator, collector, slog.Default(), cfg.BuildTimeout), nil
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 2. ペルソナ生成パイプラインのワイヤリング
	personaService, err := wirePersonaService(ctx, cfg, collector)
	if err != nil {
		return err
	}

	// 3. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitBuild),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		PersonaService: personaService,
		URLValidator:   security.NewSSRFGuard(),

		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 4. HTTPサーバーの起動
	// WriteTimeoutはペルソナ生成の制限時間より長く取る
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BuildTimeout + 30*time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runBuild はワンショットでペルソナを生成するCLIモード。
// 生成したペルソナを標準出力に書き出し、カレントディレクトリに
// <username>_persona.txt として保存する。
func runBuild(cfg *config.Config, rawURL string, w io.Writer) error {
	ctx := context.Background()

	// CLIモードではメトリクスを公開しないため使い捨てのレジストリを使う
	collector := metrics.NewCollector(prometheus.NewRegistry())

	personaService, err := wirePersonaService(ctx, cfg, collector)
	if err != nil {
		return err
	}

	report, err := personaService.BuildPersona(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("persona build failed: %w", err)
	}

	fmt.Fprintln(w, report.PersonaText)

	filename := report.Username + "_persona.txt"
	if err := os.WriteFile(filename, []byte(report.PersonaText), 0o644); err != nil {
		return fmt.Errorf("failed to write persona file: %w", err)
	}

	slog.Info("persona saved",
		slog.String("username", report.Username),
		slog.String("file", filename),
	)
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
