package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	return NewFileStore(path), path
}

func testProfile(id string) Profile {
	return Profile{
		ProfileID:    id,
		SMTPHost:     "smtp.test",
		SMTPPort:     465,
		SMTPUser:     "u",
		SMTPPassword: "pw",
		FromEmail:    "u@test",
		FromName:     "Test Sender",
		VerifySSL:    true,
	}
}

func TestFileStore_UpsertThenGet(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := testProfile("p1")
	require.NoError(t, store.Upsert(ctx, want))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	// Every field round-trips, including the raw password.
	assert.Equal(t, want, *got)
}

func TestFileStore_GetMissing(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	store, path := newTestStore(t)

	profiles, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)

	// Listing must not have created the file.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_ListSortedByID(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"zoho", "gmail", "outlook"} {
		require.NoError(t, store.Upsert(ctx, testProfile(id)))
	}

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "gmail", profiles[0].ProfileID)
	assert.Equal(t, "outlook", profiles[1].ProfileID)
	assert.Equal(t, "zoho", profiles[2].ProfileID)
}

func TestFileStore_UpsertOverwritesWholeRecord(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testProfile("p1")))

	replacement := Profile{
		ProfileID:    "p1",
		SMTPHost:     "relay.internal",
		SMTPPort:     25,
		SMTPUser:     "other",
		SMTPPassword: "secret",
		FromEmail:    "noreply@internal",
		FromName:     "",
		VerifySSL:    false,
	}
	require.NoError(t, store.Upsert(ctx, replacement))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	// No merge: every field comes from the replacement.
	assert.Equal(t, replacement, *got)
}

func TestFileStore_Delete(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testProfile("p1")))

	found, err := store.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, found)

	_, err = store.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_DeleteMissingLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testProfile("p1")))

	found, err := store.Delete(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found)

	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestFileStore_CorruptFileFailsLoudly(t *testing.T) {
	t.Parallel()
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := store.Get(ctx, "p1")
	assert.ErrorIs(t, err, ErrCorruptStore)

	_, err = store.List(ctx)
	assert.ErrorIs(t, err, ErrCorruptStore)

	// A corrupt store must block writes too, or the next upsert would
	// silently wipe every registered profile.
	err = store.Upsert(ctx, testProfile("p1"))
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestFileStore_MissingVerifySSLKeyStaysVerified(t *testing.T) {
	t.Parallel()
	store, path := newTestStore(t)
	ctx := context.Background()

	// A record written before the verify_ssl field existed, or migrated by
	// hand, carries no key at all. It must load with verification ON;
	// opting out has to be explicit.
	legacy := `{
		"p1": {
			"profile_id": "p1",
			"smtp_host": "smtp.test",
			"smtp_port": 465,
			"smtp_user": "u",
			"smtp_password": "pw",
			"from_email": "u@test",
			"from_name": "Test Sender"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, got.VerifySSL)

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].VerifySSL)
}

func TestFileStore_ExplicitVerifySSLFalseSurvivesReload(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	p := testProfile("internal-relay")
	p.VerifySSL = false
	require.NoError(t, store.Upsert(ctx, p))

	got, err := store.Get(ctx, "internal-relay")
	require.NoError(t, err)
	assert.False(t, got.VerifySSL)
}

func TestFileStore_FileIsOwnerOnly(t *testing.T) {
	t.Parallel()
	store, path := newTestStore(t)

	require.NoError(t, store.Upsert(context.Background(), testProfile("p1")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_ConcurrentMutations(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := testProfile(fmt.Sprintf("p%02d", i))
			assert.NoError(t, store.Upsert(ctx, p))
		}(i)
	}
	wg.Wait()

	// Serialized read-modify-write cycles must not lose any record.
	profiles, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, writers)
}
