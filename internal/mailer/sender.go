package mailer

import (
	"context"
	"log/slog"

	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// Sender composes a message and pushes it through the transport using a
// given profile's credentials.
type Sender struct {
	transport Transport
}

// NewSender creates a Sender over the given transport.
func NewSender(transport Transport) *Sender {
	return &Sender{transport: transport}
}

// Send performs one synchronous send attempt and returns the id of the
// profile used. The transport security mode is derived from the profile's
// port (see ModeForPort). Transport errors are returned unwrapped so the
// caller can surface the upstream failure text.
func (s *Sender) Send(ctx context.Context, msg Message, p profile.Profile) (string, error) {
	mode := ModeForPort(p.SMTPPort)

	raw, from, err := composeMIME(msg, p)
	if err != nil {
		return "", err
	}

	if err := s.transport.Send(ctx, p, mode, from, msg.To, raw); err != nil {
		return "", err
	}

	slog.Info("email sent",
		slog.Any("to", msg.To),
		slog.String("profile_id", p.ProfileID),
		slog.String("smtp_host", p.SMTPHost),
		slog.String("mode", string(mode)),
	)
	return p.ProfileID, nil
}
