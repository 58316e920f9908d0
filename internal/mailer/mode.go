package mailer

// Mode is the transport security mode of one SMTP exchange.
type Mode string

const (
	// ModeTLS negotiates TLS immediately on connect (implicit TLS).
	ModeTLS Mode = "tls"

	// ModeStartTLS connects in plaintext and upgrades via STARTTLS.
	ModeStartTLS Mode = "starttls"

	// ModeNone attempts no encryption at all.
	ModeNone Mode = "none"
)

// ModeForPort maps an SMTP port to its transport security mode. This is a
// fixed contract, not a heuristic: port 465 means implicit TLS, port 587
// means STARTTLS, and every other port is sent unencrypted. A profile that
// needs a different pairing must use the conventional port for its mode.
func ModeForPort(port int) Mode {
	switch port {
	case 465:
		return ModeTLS
	case 587:
		return ModeStartTLS
	default:
		return ModeNone
	}
}
