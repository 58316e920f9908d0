package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotFound is returned by Get when no profile matches the requested id.
var ErrNotFound = errors.New("profile not found")

// ErrCorruptStore is returned when the backing file exists but cannot be
// parsed. A corrupt store is a distinct fatal condition -- it must never be
// silently treated as "no profiles", or a bad write could wipe every
// registered credential on the next upsert.
var ErrCorruptStore = errors.New("profiles file is corrupt")

// Store handles persistence for SMTP profiles. The backing file is loaded
// lazily on every operation; there is no long-lived in-memory cache, so
// every read reflects the latest successful write.
type Store interface {
	// Get returns the profile with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Profile, error)

	// List returns all profiles with raw passwords, sorted by profile_id.
	List(ctx context.Context) ([]Profile, error)

	// Upsert inserts or fully overwrites the profile with the same id.
	Upsert(ctx context.Context, p Profile) error

	// Delete removes the profile with the given id. Returns false (not an
	// error) when the id was absent; the store is unchanged in that case.
	Delete(ctx context.Context, id string) (bool, error)
}

// fileStore implements Store on a single JSON file holding an object keyed
// by profile_id. A process-wide RWMutex serializes mutations: writers hold
// the write lock around the whole load-modify-save cycle so concurrent
// requests cannot interleave and lose records. No cross-process locking is
// attempted.
type fileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a Store backed by the JSON file at path. The file
// is created implicitly on the first write; a missing file reads as an
// empty store.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (s *fileStore) Get(ctx context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	p, ok := profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *fileStore) List(ctx context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Profile, 0, len(profiles))
	for _, id := range ids {
		out = append(out, profiles[id])
	}
	return out, nil
}

func (s *fileStore) Upsert(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	profiles[p.ProfileID] = p
	return s.save(profiles)
}

func (s *fileStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := profiles[id]; !ok {
		return false, nil
	}
	delete(profiles, id)
	if err := s.save(profiles); err != nil {
		return false, err
	}
	return true, nil
}

// profileRecord is the raw on-disk shape of one profile. It differs from
// Profile in exactly one field: verify_ssl is three-state so a record
// written or hand-migrated without the key keeps certificate verification
// ON. Disabling verification must be explicit per profile, never the
// accident of a missing key.
type profileRecord struct {
	ProfileID    string `json:"profile_id"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	FromEmail    string `json:"from_email"`
	FromName     string `json:"from_name"`
	VerifySSL    *bool  `json:"verify_ssl"`
}

// toProfile converts a disk record to the domain struct.
func (r profileRecord) toProfile() Profile {
	return Profile{
		ProfileID:    r.ProfileID,
		SMTPHost:     r.SMTPHost,
		SMTPPort:     r.SMTPPort,
		SMTPUser:     r.SMTPUser,
		SMTPPassword: r.SMTPPassword,
		FromEmail:    r.FromEmail,
		FromName:     r.FromName,
		VerifySSL:    r.VerifySSL == nil || *r.VerifySSL,
	}
}

// load reads the whole backing file. A missing file is an empty store; a
// present-but-unparseable file fails with ErrCorruptStore.
func (s *fileStore) load() (map[string]Profile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Profile), nil
		}
		return nil, fmt.Errorf("reading profiles file %s: %w", s.path, err)
	}

	records := make(map[string]profileRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}

	profiles := make(map[string]Profile, len(records))
	for id, r := range records {
		profiles[id] = r.toProfile()
	}
	return profiles, nil
}

// save rewrites the whole backing file atomically: marshal to a temp file
// in the same directory, then rename over the target. Readers either see
// the old file or the new one, never a half-written mix, even on crash.
func (s *fileStore) save(profiles map[string]Profile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".profiles-*.json")
	if err != nil {
		return fmt.Errorf("creating temp profiles file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing profiles file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing profiles file: %w", err)
	}

	// The file holds plaintext credentials; keep it owner-only.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting profiles file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing profiles file: %w", err)
	}
	return nil
}
