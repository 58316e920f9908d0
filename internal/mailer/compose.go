package mailer

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// composeMIME builds the RFC 5322 message for one send: a
// multipart/alternative body holding the text part, the html part, or
// both. Returns the raw message bytes and the resolved envelope sender
// address.
//
// Sender resolution: the message's from_email/from_name override the
// profile's defaults field by field.
func composeMIME(msg Message, p profile.Profile) ([]byte, string, error) {
	fromEmail := msg.FromEmail
	if fromEmail == "" {
		fromEmail = p.FromEmail
	}
	fromName := msg.FromName
	if fromName == "" {
		fromName = p.FromName
	}
	from := mail.Address{Name: fromName, Address: fromEmail}

	var buf bytes.Buffer
	parts := multipart.NewWriter(&buf)

	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", from.String())
	header("To", strings.Join(msg.To, ", "))
	header("Subject", msg.Subject)
	header("Date", time.Now().UTC().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), p.SMTPHost))
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", parts.Boundary()))
	buf.WriteString("\r\n")

	// Plain text first: by multipart/alternative convention clients prefer
	// the last part they can render, so html goes last.
	if msg.Text != "" {
		if err := writePart(parts, "text/plain", msg.Text); err != nil {
			return nil, "", err
		}
	}
	if msg.HTML != "" {
		if err := writePart(parts, "text/html", msg.HTML); err != nil {
			return nil, "", err
		}
	}

	if err := parts.Close(); err != nil {
		return nil, "", fmt.Errorf("closing mime body: %w", err)
	}
	return buf.Bytes(), from.Address, nil
}

// writePart appends one body part with the given content type.
func writePart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {contentType + "; charset=UTF-8"},
	})
	if err != nil {
		return fmt.Errorf("creating %s part: %w", contentType, err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return fmt.Errorf("writing %s part: %w", contentType, err)
	}
	return nil
}
