// Package mailer composes and sends email through a registered SMTP
// profile. One send request maps to exactly one synchronous SMTP exchange:
// connect, optional TLS, authenticate, transfer. There is no queue, no
// retry, and no delivery tracking -- the SMTP server's accept or reject is
// the final answer reported to the caller.
package mailer

import "strings"

// Caps on a single send request. The upstream provider enforces its own
// limits too; these just stop obviously runaway requests before a
// connection is opened.
const (
	// MaxRecipients bounds the `to` list of one message.
	MaxRecipients = 100

	// MaxBodyBytes bounds the combined size of the text and html parts.
	MaxBodyBytes = 10 << 20 // 10 MiB
)

// Message is one email to be sent. Transient -- constructed per request,
// never persisted. At least one of Text or HTML must be present, which is
// enforced by the HTTP handler before the sender is invoked.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`

	// FromEmail and FromName override the profile's default sender
	// identity when set.
	FromEmail string `json:"from_email,omitempty"`
	FromName  string `json:"from_name,omitempty"`
}

// HasBody reports whether the message carries at least one body part.
func (m Message) HasBody() bool {
	return m.Text != "" || m.HTML != ""
}

// invalidHeaderField returns the JSON name of the first header-bound field
// containing a CR or LF, or "" when all are clean. A newline in any of
// these would let a caller inject extra headers into the composed message.
func (m Message) invalidHeaderField() string {
	if strings.ContainsAny(m.Subject, "\r\n") {
		return "subject"
	}
	for _, addr := range m.To {
		if strings.ContainsAny(addr, "\r\n") {
			return "to"
		}
	}
	if strings.ContainsAny(m.FromEmail, "\r\n") {
		return "from_email"
	}
	if strings.ContainsAny(m.FromName, "\r\n") {
		return "from_name"
	}
	return ""
}

// SendRequest is the API request body for sending an email. Profile names
// the SMTP profile to use; when empty, the configured default applies.
type SendRequest struct {
	Message
	Profile string `json:"profile,omitempty"`
}

// SendResult is the success payload of the send endpoint.
type SendResult struct {
	Status      string `json:"status"`
	ProfileUsed string `json:"profile_used"`
	Detail      string `json:"message"`
}
