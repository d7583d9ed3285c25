package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chiremba/chiremba/internal/explain"
	"github.com/chiremba/chiremba/internal/server"
	"github.com/chiremba/chiremba/internal/speech"
	"github.com/chiremba/chiremba/pkg/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report, explain and speech API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := api.New(cfg.ReportOptions(logger)...)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}
	defer gen.Close()

	var explainer explain.Generator
	gemini, err := explain.NewGemini(ctx, cfg.GeminiConfig())
	if err != nil {
		logger.Warn("explanations disabled", zap.Error(err))
		explainer = explain.Unavailable(err)
	} else {
		logger.Info("explanations enabled", zap.String("model", gemini.Model()))
		explainer = gemini
	}

	srv, err := server.New(cfg.ListenAddr, logger, &server.Deps{
		Reports:   gen,
		Explainer: explainer,
		Speech:    speech.NewClient(cfg.SpeechClientConfig(), logger),
	})
	if err != nil {
		return err
	}
	if err := srv.Run(ctx, cfg.ShutdownTimeout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
