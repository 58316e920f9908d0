package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	gosmtp "net/smtp"
	"strconv"
	"time"

	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// Transport performs one SMTP exchange for an already-composed message.
// Implementations must make exactly one attempt: no retry, no connection
// reuse across calls.
type Transport interface {
	Send(ctx context.Context, p profile.Profile, mode Mode, from string, to []string, msg []byte) error
}

// smtpTransport is the production Transport over net/smtp. The timeout
// bounds the dial (and, for implicit TLS, the handshake); the rest of the
// exchange runs on the connection without a deadline, matching the
// one-blocking-call model of the service.
type smtpTransport struct {
	timeout time.Duration
}

// NewSMTPTransport creates a Transport with the given dial timeout.
func NewSMTPTransport(timeout time.Duration) Transport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &smtpTransport{timeout: timeout}
}

func (t *smtpTransport) Send(ctx context.Context, p profile.Profile, mode Mode, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(p.SMTPHost, strconv.Itoa(p.SMTPPort))

	// Certificate verification is on unless the profile explicitly opted
	// out for a self-signed or internal relay.
	tlsConfig := &tls.Config{
		ServerName:         p.SMTPHost,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !p.VerifySSL,
	}

	switch mode {
	case ModeTLS:
		return t.sendTLS(addr, p, tlsConfig, from, to, msg)
	case ModeStartTLS:
		return t.sendStartTLS(ctx, addr, p, tlsConfig, from, to, msg)
	default:
		return t.sendPlain(ctx, addr, p, from, to, msg)
	}
}

// sendTLS sends with TLS negotiated from connection start (port 465).
func (t *smtpTransport) sendTLS(addr string, p profile.Profile, tlsConfig *tls.Config, from string, to []string, msg []byte) error {
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: t.timeout}, "tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("connecting to %s (TLS): %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, p.SMTPHost)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := t.auth(client, p); err != nil {
		return err
	}
	return transfer(client, from, to, msg)
}

// sendStartTLS connects in plaintext and upgrades via STARTTLS (port 587).
func (t *smtpTransport) sendStartTLS(ctx context.Context, addr string, p profile.Profile, tlsConfig *tls.Config, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, p.SMTPHost)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	if err := t.auth(client, p); err != nil {
		return err
	}
	return transfer(client, from, to, msg)
}

// sendPlain sends without any encryption. Only sensible for trusted
// networks and local relays; net/smtp will refuse PLAIN auth over an
// unencrypted connection to a non-localhost server.
func (t *smtpTransport) sendPlain(ctx context.Context, addr string, p profile.Profile, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, p.SMTPHost)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := t.auth(client, p); err != nil {
		return err
	}
	return transfer(client, from, to, msg)
}

// auth performs PLAIN authentication when the profile has a username.
func (t *smtpTransport) auth(client *gosmtp.Client, p profile.Profile) error {
	if p.SMTPUser == "" {
		return nil
	}
	auth := gosmtp.PlainAuth("", p.SMTPUser, p.SMTPPassword, p.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	return nil
}

// transfer handles MAIL FROM, RCPT TO, DATA for an existing SMTP client.
func transfer(client *gosmtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("RCPT TO %s: %w", recipient, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}
	return client.Quit()
}
