package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mdsajidalam0559/MailBridge/internal/apperror"
)

// Handler handles HTTP requests for profile management.
type Handler struct {
	service Service
}

// NewHandler creates a new profile handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Save registers or updates an SMTP profile (POST /profiles).
func (h *Handler) Save(c echo.Context) error {
	// Bind over a defaulted profile so omitted fields (smtp_port,
	// from_name, verify_ssl) keep their documented defaults.
	p := NewProfile()
	if err := c.Bind(&p); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	result, err := h.service.Save(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// List returns all registered profiles with passwords masked (GET /profiles).
func (h *Handler) List(c echo.Context) error {
	profiles, err := h.service.ListMasked(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// Delete removes a profile by id (DELETE /profiles/:profile_id).
func (h *Handler) Delete(c echo.Context) error {
	result, err := h.service.Remove(c.Request().Context(), c.Param("profile_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
