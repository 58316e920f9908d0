package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mdsajidalam0559/MailBridge/internal/apperror"
)

// Service is the profile management contract the HTTP layer works with.
// It validates records, applies masking, and maps store failures to
// domain errors.
type Service interface {
	// Save registers or fully overwrites a profile (same id = overwrite,
	// no merge).
	Save(ctx context.Context, p Profile) (*Result, error)

	// ListMasked returns all profiles with passwords replaced by the mask.
	ListMasked(ctx context.Context) ([]Profile, error)

	// Remove deletes a profile by id. An unknown id is a not-found error.
	Remove(ctx context.Context, id string) (*Result, error)
}

type service struct {
	store Store
}

// NewService creates a profile Service backed by the given store.
func NewService(store Store) Service {
	return &service{store: store}
}

// Save validates the profile and writes it to the store. Whitespace around
// identifying fields is trimmed so "gmail " and "gmail" are the same profile.
func (s *service) Save(ctx context.Context, p Profile) (*Result, error) {
	p.ProfileID = strings.TrimSpace(p.ProfileID)
	p.SMTPHost = strings.TrimSpace(p.SMTPHost)
	p.SMTPUser = strings.TrimSpace(p.SMTPUser)
	p.FromEmail = strings.TrimSpace(p.FromEmail)
	p.FromName = strings.TrimSpace(p.FromName)

	if field := p.MissingField(); field != "" {
		return nil, apperror.NewValidation(fmt.Sprintf("%s is required", field))
	}
	if p.SMTPPort <= 0 {
		p.SMTPPort = 587
	}
	if p.FromName == "" {
		p.FromName = "Email Service"
	}

	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("saving profile %q: %w", p.ProfileID, err))
	}

	slog.Info("profile saved",
		slog.String("profile_id", p.ProfileID),
		slog.String("smtp_host", p.SMTPHost),
		slog.Int("smtp_port", p.SMTPPort),
	)
	return &Result{Status: "saved", ProfileID: p.ProfileID}, nil
}

// ListMasked returns every stored profile with the password masked.
func (s *service) ListMasked(ctx context.Context) ([]Profile, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing profiles: %w", err))
	}
	masked := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		masked = append(masked, p.Masked())
	}
	return masked, nil
}

// Remove deletes the profile. Deleting a missing id reports not-found and
// leaves the store untouched.
func (s *service) Remove(ctx context.Context, id string) (*Result, error) {
	found, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("deleting profile %q: %w", id, err))
	}
	if !found {
		return nil, apperror.NewNotFound(fmt.Sprintf("Profile '%s' not found.", id))
	}

	slog.Info("profile deleted", slog.String("profile_id", id))
	return &Result{Status: "deleted", ProfileID: id}, nil
}
