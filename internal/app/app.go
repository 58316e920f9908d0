// Package app is the application bootstrap and dependency injection root.
// It creates the Echo instance, wires the profile store and mailer
// together, and owns the error handler that maps domain errors to JSON
// responses.
package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mdsajidalam0559/MailBridge/internal/apperror"
	"github.com/mdsajidalam0559/MailBridge/internal/config"
	"github.com/mdsajidalam0559/MailBridge/internal/middleware"
	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Store is the file-backed profile store shared by all handlers.
	Store profile.Store

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, store profile.Store) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Trust forwarding headers from local proxy ranges so c.RealIP()
	// returns the actual client. The per-IP send rate limit depends on it.
	middleware.TrustedProxies(e, []string{
		"127.0.0.1/8",    // Localhost
		"10.0.0.0/8",     // Docker default bridge
		"172.16.0.0/12",  // Docker bridge (alternate range)
		"192.168.0.0/16", // Common LAN
		"fd00::/8",       // IPv6 private
	})

	app := &App{
		Config: cfg,
		Store:  store,
		Echo:   e,
	}

	// Panic recovery must be outermost to catch panics from everything else.
	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())

	// Custom error handler mapping AppErrors to JSON responses.
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to JSON responses with the right status code. Every response
// body has the same shape: {"error": <status text>, "message": <detail>}.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = apperror.SafeCode(appErr)
		message = apperror.SafeMessage(appErr)

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	} else {
		// Echo's built-in HTTP errors (e.g., 404 from the router).
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		} else {
			// Truly unexpected error -- log it, reply generically.
			slog.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
		}
	}

	c.JSON(code, map[string]string{
		"error":   http.StatusText(code),
		"message": message,
	})
}

// Start begins listening for HTTP requests on the configured address.
func (a *App) Start() error {
	addr := a.Config.ListenAddr()
	slog.Info("starting MailBridge server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
