package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mdsajidalam0559/MailBridge/internal/mailer"
	"github.com/mdsajidalam0559/MailBridge/internal/middleware"
	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// serviceName is reported by the liveness probe.
const serviceName = "MailBridge"

// RegisterRoutes sets up all application routes. This is the single place
// where handlers are constructed and wired to paths. The SMTP transport is
// injected so tests can swap in a recording fake.
func (a *App) RegisterRoutes(transport mailer.Transport) {
	e := a.Echo

	// Liveness probe. Static payload, no side effects.
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "running",
			"service": serviceName,
		})
	})

	// Profile management.
	profileHandler := profile.NewHandler(profile.NewService(a.Store))
	profile.RegisterRoutes(e, profileHandler)

	// Email sending. The send endpoint gets a per-IP rate limit; nothing
	// else on this service is expensive enough to need one.
	sendHandler := mailer.NewHandler(a.Store, mailer.NewSender(transport), a.Config.DefaultProfile.ID)
	mailer.RegisterRoutes(e, sendHandler,
		middleware.RateLimit(a.Config.SendRateLimit, a.Config.SendRateWindow))
}
