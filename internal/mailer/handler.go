package mailer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mdsajidalam0559/MailBridge/internal/apperror"
	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// Handler handles the send endpoint. It resolves the profile (explicit id
// or configured default), validates the message, and maps sender failures
// to HTTP statuses.
type Handler struct {
	store            profile.Store
	sender           *Sender
	defaultProfileID string
}

// NewHandler creates a send handler. defaultProfileID may be empty when no
// default profile is configured.
func NewHandler(store profile.Store, sender *Sender, defaultProfileID string) *Handler {
	return &Handler{
		store:            store,
		sender:           sender,
		defaultProfileID: defaultProfileID,
	}
}

// Send sends an email using a registered SMTP profile (POST /email/send).
//
// Validation order is part of the API contract: missing body is reported
// before any profile resolution, so a request with no text/html gets a 400
// regardless of its other fields.
func (h *Handler) Send(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	if !req.HasBody() {
		return apperror.NewBadRequest("Provide 'text' or 'html' body.")
	}
	if len(req.To) == 0 {
		return apperror.NewBadRequest("Provide at least one recipient in 'to'.")
	}
	if len(req.To) > MaxRecipients {
		return apperror.NewBadRequest(fmt.Sprintf("Too many recipients: max %d per message.", MaxRecipients))
	}
	if len(req.Text)+len(req.HTML) > MaxBodyBytes {
		return apperror.NewBadRequest(fmt.Sprintf("Message body too large: max %d bytes.", MaxBodyBytes))
	}
	if field := req.invalidHeaderField(); field != "" {
		return apperror.NewBadRequest(fmt.Sprintf("Field '%s' must not contain newlines.", field))
	}

	profileID := req.Profile
	if profileID == "" {
		profileID = h.defaultProfileID
	}
	if profileID == "" {
		return apperror.NewBadRequest("No profile specified and no default configured.")
	}

	p, err := h.store.Get(c.Request().Context(), profileID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return apperror.NewNotFound(fmt.Sprintf("Profile '%s' not found. Register it via POST /profiles.", profileID))
		}
		return apperror.NewInternal(fmt.Errorf("loading profile %q: %w", profileID, err))
	}

	used, err := h.sender.Send(c.Request().Context(), req.Message, *p)
	if err != nil {
		// The caller owns these credentials; give them the real reason.
		return apperror.NewSendFailure(err)
	}

	return c.JSON(http.StatusOK, SendResult{
		Status:      "success",
		ProfileUsed: used,
		Detail:      "Email sent",
	})
}
