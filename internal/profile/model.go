// Package profile manages named SMTP credential profiles for MailBridge.
// Profiles are persisted in a single JSON file keyed by profile_id and are
// the sole source of truth for send-time credentials. Passwords are stored
// in plaintext on disk (operational tradeoff, see the repository docs) and
// are NEVER returned by the listing endpoint -- only the fixed mask.
package profile

// PasswordMask is the placeholder substituted for smtp_password in every
// listing response, regardless of the stored value.
const PasswordMask = "****"

// Profile is one SMTP account: server coordinates, credentials, and the
// default sender identity used when a message does not override it.
type Profile struct {
	ProfileID    string `json:"profile_id"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`

	// VerifySSL controls TLS certificate verification for this profile.
	// On by default; turning it off is a per-profile escape hatch for
	// self-signed or internal relays, never a global setting.
	VerifySSL bool `json:"verify_ssl"`
}

// NewProfile returns a Profile with the documented defaults applied:
// port 587, from_name "Email Service", certificate verification on.
// Handlers bind request bodies over this value so omitted fields keep
// their defaults.
func NewProfile() Profile {
	return Profile{
		SMTPPort:  587,
		FromName:  "Email Service",
		VerifySSL: true,
	}
}

// Masked returns a copy of the profile with the password replaced by
// PasswordMask. Raw passwords never leave the store in listings.
func (p Profile) Masked() Profile {
	p.SMTPPassword = PasswordMask
	return p
}

// MissingField returns the name of the first required field that is empty,
// or "" when the profile is well-formed. Field names match the JSON wire
// names so validation errors point at what the caller actually sent.
func (p Profile) MissingField() string {
	switch {
	case p.ProfileID == "":
		return "profile_id"
	case p.SMTPHost == "":
		return "smtp_host"
	case p.SMTPUser == "":
		return "smtp_user"
	case p.SMTPPassword == "":
		return "smtp_password"
	case p.FromEmail == "":
		return "from_email"
	}
	return ""
}

// Result is the outcome payload for profile mutations, mirrored directly
// into HTTP responses: {"status":"saved","profile_id":"..."} and
// {"status":"deleted","profile_id":"..."}.
type Result struct {
	Status    string `json:"status"`
	ProfileID string `json:"profile_id"`
}
