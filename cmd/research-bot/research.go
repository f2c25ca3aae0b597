package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kitbuilder587/research-assistant/internal/config"
	"github.com/kitbuilder587/research-assistant/internal/domain"
)

var depthCmd = &cobra.Command{
	Use:   "depth TOPIC",
	Short: "two-layer depth search, prints a Markdown report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), domain.ModeDepth, strings.Join(args, " "))
	},
}

var multiCmd = &cobra.Command{
	Use:   "multi TOPIC",
	Short: "multi-agent research with synthesis, prints Markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), domain.ModeMulti, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(depthCmd, multiCmd)
}

func runOnce(ctx context.Context, mode domain.Mode, topic string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// в CLI логи не должны мешать выводу отчета
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	app, err := buildApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	res, err := app.Research.Run(ctx, domain.ResearchRequest{Topic: topic, Mode: mode})
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(os.Stdout, RenderMarkdown(res))
	return err
}
