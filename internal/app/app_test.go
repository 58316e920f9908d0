package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdsajidalam0559/MailBridge/internal/config"
	"github.com/mdsajidalam0559/MailBridge/internal/mailer"
	"github.com/mdsajidalam0559/MailBridge/internal/profile"
)

// recordingTransport implements mailer.Transport and records the last send.
type recordingTransport struct {
	err     error
	gotMode mailer.Mode
	gotTo   []string
}

func (r *recordingTransport) Send(ctx context.Context, p profile.Profile, mode mailer.Mode, from string, to []string, msg []byte) error {
	r.gotMode = mode
	r.gotTo = to
	return r.err
}

// newTestApp builds a full application over a throwaway profiles file and
// the given transport.
func newTestApp(t *testing.T, transport mailer.Transport, defaultProfileID string) *App {
	t.Helper()

	cfg := &config.Config{
		Env:            "test",
		ProfilesFile:   filepath.Join(t.TempDir(), "profiles.json"),
		SendRateLimit:  1000,
		SendRateWindow: time.Minute,
	}
	cfg.DefaultProfile.ID = defaultProfileID

	a := New(cfg, profile.NewFileStore(cfg.ProfilesFile))
	a.RegisterRoutes(transport)
	return a
}

// do runs one request through the full middleware and error handler chain.
func do(a *App, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const p1Body = `{
	"profile_id": "p1",
	"smtp_host": "smtp.test",
	"smtp_port": 465,
	"smtp_user": "u",
	"smtp_password": "pw",
	"from_email": "u@test"
}`

func TestHealthProbe(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, &recordingTransport{}, "")

	rec := do(a, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "MailBridge", body["service"])
}

func TestProfileLifecycle(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, &recordingTransport{}, "")

	// Register with defaults omitted.
	rec := do(a, http.MethodPost, "/profiles", `{
		"profile_id": "gmail",
		"smtp_host": "smtp.gmail.com",
		"smtp_user": "me@gmail.com",
		"smtp_password": "app-password",
		"from_email": "me@gmail.com"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "saved", "profile_id": "gmail"}, decode(t, rec))

	// Listing masks the password and shows the applied defaults.
	rec = do(a, http.MethodGet, "/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []profile.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, profile.PasswordMask, listed[0].SMTPPassword)
	assert.Equal(t, 587, listed[0].SMTPPort)
	assert.Equal(t, "Email Service", listed[0].FromName)
	assert.True(t, listed[0].VerifySSL)

	// Delete, then delete again: the second is a 404, not a crash.
	rec = do(a, http.MethodDelete, "/profiles/gmail", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "deleted", "profile_id": "gmail"}, decode(t, rec))

	rec = do(a, http.MethodDelete, "/profiles/gmail", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Not Found", body["error"])
	assert.Contains(t, body["message"], "'gmail'")
}

func TestProfileValidationError(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, &recordingTransport{}, "")

	rec := do(a, http.MethodPost, "/profiles", `{"profile_id":"p1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "smtp_host is required", decode(t, rec)["message"])
}

func TestSendEndToEnd(t *testing.T) {
	t.Parallel()
	transport := &recordingTransport{}
	a := newTestApp(t, transport, "")

	rec := do(a, http.MethodPost, "/profiles", p1Body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(a, http.MethodPost, "/email/send",
		`{"profile":"p1","to":["a@b.com"],"subject":"Hi","text":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "p1", body["profile_used"])

	// Port 465 profile means implicit TLS reached the transport.
	assert.Equal(t, mailer.ModeTLS, transport.gotMode)
	assert.Equal(t, []string{"a@b.com"}, transport.gotTo)
}

func TestSendValidationStatuses(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, &recordingTransport{}, "")

	// Missing body text/html.
	rec := do(a, http.MethodPost, "/email/send", `{"to":["a@b.com"],"subject":"Hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Provide 'text' or 'html' body.", decode(t, rec)["message"])

	// No profile and no configured default.
	rec = do(a, http.MethodPost, "/email/send", `{"to":["a@b.com"],"subject":"Hi","text":"hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No profile specified and no default configured.", decode(t, rec)["message"])

	// Named but unregistered profile.
	rec = do(a, http.MethodPost, "/email/send", `{"profile":"ghost","to":["a@b.com"],"subject":"Hi","text":"hi"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "'ghost'")
}

func TestSendTransportFailureIs500WithDetail(t *testing.T) {
	t.Parallel()
	transport := &recordingTransport{err: assert.AnError}
	a := newTestApp(t, transport, "")

	rec := do(a, http.MethodPost, "/profiles", p1Body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(a, http.MethodPost, "/email/send",
		`{"profile":"p1","to":["a@b.com"],"subject":"Hi","text":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, assert.AnError.Error(), decode(t, rec)["message"])
}

func TestUnknownRouteIsJSON(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, &recordingTransport{}, "")

	rec := do(a, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Not Found", body["error"])
}
