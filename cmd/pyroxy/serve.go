package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pyroxy/internal/domain"
	"pyroxy/internal/interface/handler"
	"pyroxy/internal/interface/repository/access"
	"pyroxy/internal/interface/repository/cache"
	"pyroxy/internal/interface/repository/fetcher"
	"pyroxy/internal/interface/repository/logger"
	"pyroxy/internal/interface/repository/metrics"
	"pyroxy/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the proxy and metrics servers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("host", "0.0.0.0", "Host to bind the servers to")
	flags.Int("port", 1458, "Proxy server port")
	flags.Int("metrics-port", 1459, "Metrics server port")
	flags.String("config-dir", "./configs", "Configuration directory")
	flags.String("log-dir", "./logs", "Log directory")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console, json)")
	flags.Int("cache-max-entries", 1000, "Maximum number of cached responses")
	flags.Duration("metrics-save-interval", time.Minute, "Metrics save interval")
}

func runServe(ctx context.Context, cfg *serveConfig) error {
	if err := prepareDirectories(cfg); err != nil {
		return err
	}

	// ロガーの初期化
	loggerRepo, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		Dir:      cfg.LogDir,
		Filename: "pyroxy.log",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer loggerRepo.Close()

	// リポジトリの初期化
	accessController := access.New(filepath.Join(cfg.ConfigDir, "blocked.yaml"), loggerRepo)
	cacheManager := cache.New(cfg.CacheMaxEntries)
	pageFetcher := fetcher.New()
	metricsCollector := metrics.New(filepath.Join(cfg.LogDir, "metrics.json"))

	// ユースケースの作成
	proxyUseCase := usecase.NewProxyUseCase(
		accessController,
		cacheManager,
		pageFetcher,
		metricsCollector,
		loggerRepo,
	)
	metricsUseCase := usecase.NewMetricsUseCase(
		metricsCollector,
		loggerRepo,
		usecase.MetricsConfig{SaveInterval: cfg.MetricsSaveInterval},
	)
	defer metricsUseCase.Stop()

	// ハンドラーの作成
	proxyHandler := handler.NewProxyHandler(proxyUseCase, loggerRepo)
	metricsHandler := handler.NewMetricsHandler(metricsUseCase, loggerRepo)

	proxyServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: proxyHandler,
	}

	metricsServer := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.MetricsPort),
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/metrics":
				metricsHandler.HandleMetrics(w, r)
			case "/stats":
				metricsHandler.HandleStats(w, r)
			case "/health":
				metricsHandler.HandleHealth(w, r)
			default:
				http.NotFound(w, r)
			}
		}),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loggerRepo.Info("Starting pyroxy", map[string]interface{}{
		"version": domain.Version,
		"example": fmt.Sprintf("http://%s/raw?url=https://www.github.com", proxyServer.Addr),
	})

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		loggerRepo.Info("Starting proxy server", map[string]interface{}{"addr": proxyServer.Addr})
		if err := proxyServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("proxy server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		loggerRepo.Info("Starting metrics server", map[string]interface{}{"addr": metricsServer.Addr})
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})

	// シグナルまたはサーバーエラーでシャットダウン
	group.Go(func() error {
		<-ctx.Done()
		loggerRepo.Info("Shutdown initiated", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := proxyServer.Shutdown(shutdownCtx); err != nil {
			loggerRepo.Error("Error shutting down proxy server", err, nil)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			loggerRepo.Error("Error shutting down metrics server", err, nil)
		}
		return nil
	})

	err = group.Wait()
	loggerRepo.Info("Shutdown complete", nil)
	return err
}
