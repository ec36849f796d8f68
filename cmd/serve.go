// =============================================================================
// Order Report Bot - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the webhook bot.
//
// COMMAND USAGE:
//   orderbot serve [--config config.yaml]
//
// STARTUP:
//   1. Validate the bot settings (TELEGRAM_TOKEN, WEBHOOK_URL, PORT)
//   2. Create the working directory
//   3. Register {WEBHOOK_URL}/{TELEGRAM_TOKEN} with the platform
//   4. Listen on 0.0.0.0:PORT until SIGINT or SIGTERM
//
// SHUTDOWN:
//   The HTTP server stops accepting updates, then the command waits for
//   every dispatched update to finish, including running finalize jobs.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/docx-order-report/internal/batch"
	"github.com/ginjaninja78/docx-order-report/internal/bot"
	"github.com/ginjaninja78/docx-order-report/internal/extractor"
	"github.com/ginjaninja78/docx-order-report/internal/ingest"
	"github.com/ginjaninja78/docx-order-report/internal/report"
	"github.com/ginjaninja78/docx-order-report/internal/session"
	"github.com/ginjaninja78/docx-order-report/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram webhook bot",
	Long: `The serve command registers the webhook with Telegram and handles
incoming updates. Users upload DOCX files one at a time and send /done to
receive the Excel report.

Required environment:
  TELEGRAM_TOKEN  bot token, also the secret webhook path
  WEBHOOK_URL     public base URL of this service`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires the pipeline and serves until ctx is cancelled.
func runServe(ctx context.Context) error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	files := utils.NewFileManager(cfg.WorkDir, cfg.ReportNameFormat)
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Bot.RequestTimeout}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Bot.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}

	webhook, err := tgbotapi.NewWebhook(cfg.Bot.WebhookEndpoint())
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := api.Request(webhook); err != nil {
		return fmt.Errorf("failed to register webhook: %w", err)
	}

	store := session.NewStore()
	b := bot.New(
		api,
		ingest.NewHandler(store, files, cfg.MaxConcurrentDownloads, logger.Named("ingest")),
		batch.NewProcessor(
			store,
			extractor.NewDocxExtractor(logger.Named("extractor")),
			report.NewBuilder(),
			files,
			logger.Named("batch"),
		),
		client,
		logger.Named("bot"),
	)

	server := &http.Server{
		Addr:    cfg.Bot.Addr(),
		Handler: bot.NewRouter(b, cfg.Bot.WebhookPath()),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("webhook server started",
			zap.String("addr", server.Addr),
			zap.String("bot", api.Self.UserName))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("webhook server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Bot.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	b.Wait()
	logger.Info("all updates handled")
	return nil
}
