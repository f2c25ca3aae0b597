package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/config"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
	"github.com/kitbuilder587/research-assistant/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the Telegram bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	m := metrics.New(prometheus.DefaultRegisterer)

	app, err := buildApp(ctx, cfg, logger, m)
	if err != nil {
		return err
	}

	bot, err := telegram.New(telegram.BotConfig{
		Token:       cfg.Telegram.Token,
		Debug:       cfg.Telegram.Debug,
		DefaultMode: cfg.Mode(),
	}, app.Research, app.Titles, logger, m)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	srv := startMetricsServer(cfg.Metrics.Addr, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting bot",
		zap.String("search_provider", cfg.Search.Provider),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("default_mode", cfg.Mode().String()),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("bot stopped")
	return nil
}

func startMetricsServer(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return srv
}
