package mailer

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up the send endpoint on the Echo instance. Extra
// middleware (the per-IP rate limit) is applied to this route only.
func RegisterRoutes(e *echo.Echo, h *Handler, middleware ...echo.MiddlewareFunc) {
	e.POST("/email/send", h.Send, middleware...)
}
