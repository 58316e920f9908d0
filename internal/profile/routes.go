package profile

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up profile management routes on the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/profiles", h.Save)
	e.GET("/profiles", h.List)
	e.DELETE("/profiles/:profile_id", h.Delete)
}
