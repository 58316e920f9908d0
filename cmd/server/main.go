// Package main is the entry point for the MailBridge server. It loads
// configuration, opens the profile store, registers the default profile
// from the environment, and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdsajidalam0559/MailBridge/internal/app"
	"github.com/mdsajidalam0559/MailBridge/internal/config"
	"github.com/mdsajidalam0559/MailBridge/internal/mailer"
	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

func main() {
	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	// Configure structured logging based on environment.
	setupLogging(cfg)

	slog.Info("starting MailBridge",
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.ListenAddr()),
		slog.String("profiles_file", cfg.ProfilesFile),
	)

	// --- Open Profile Store ---
	store := profile.NewFileStore(cfg.ProfilesFile)

	// --- Register Default Profile ---
	// When the environment fully specifies a default profile, upsert it
	// before accepting traffic so sends without an explicit profile work
	// from the first request.
	if cfg.HasDefaultProfile() {
		if err := registerDefaultProfile(cfg, store); err != nil {
			slog.Error("failed to register default profile", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("default profile registered",
			slog.String("profile_id", cfg.DefaultProfile.ID),
		)
	}

	// --- Create Application ---
	application := app.New(cfg, store)
	application.RegisterRoutes(mailer.NewSMTPTransport(cfg.SMTPTimeout))

	// --- Graceful Shutdown ---
	// Listen for interrupt/term signals to drain connections cleanly.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		// Give in-flight requests (including a blocking SMTP exchange)
		// 10 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	// --- Start Server ---
	if err := application.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
}

// registerDefaultProfile upserts the env-configured profile into the store.
// The sender address falls back to the SMTP username when FROM_EMAIL is
// unset, since for most providers they are the same mailbox.
func registerDefaultProfile(cfg *config.Config, store profile.Store) error {
	d := cfg.DefaultProfile

	fromEmail := d.FromEmail
	if fromEmail == "" {
		fromEmail = d.User
	}

	return store.Upsert(context.Background(), profile.Profile{
		ProfileID:    d.ID,
		SMTPHost:     d.Host,
		SMTPPort:     d.Port,
		SMTPUser:     d.User,
		SMTPPassword: d.Password,
		FromEmail:    fromEmail,
		FromName:     d.FromName,
		VerifySSL:    true,
	})
}

// setupLogging configures the global slog logger based on the environment.
// Development uses text format for readability. Production uses JSON for
// structured log aggregation.
func setupLogging(cfg *config.Config) {
	var handler slog.Handler

	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	slog.SetDefault(slog.New(handler))
}
