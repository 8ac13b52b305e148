// Package apikey provides tests for key issuance, authorization,
// rate limiting, and revocation.
package apikey

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
)

func testManager() *Manager {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewManager(config.RateLimitConfig{}, log)
}

func TestCreate_Success(t *testing.T) {
	m := testManager()

	key, err := m.Create(CreateParams{
		Name:        "ci pipeline",
		UserID:      "user-1",
		Permissions: []string{model.PermissionRead, model.PermissionWrite},
		Tier:        model.TierPremium,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, key.ID)
	assert.True(t, strings.HasPrefix(key.Key, "fv_"))
	assert.Equal(t, 10000, key.RateLimit.RequestsPerHour)
	assert.Equal(t, 0, key.Usage.RequestCount)
	assert.True(t, key.Active)
}

func TestCreate_EmptyName(t *testing.T) {
	m := testManager()

	_, err := m.Create(CreateParams{Permissions: []string{model.PermissionRead}})
	assert.ErrorIs(t, err, model.ErrInvalidKeyName)
	assert.Equal(t, 0, m.Count())
}

func TestCreate_InvalidPermission_CreatesNoKey(t *testing.T) {
	m := testManager()

	_, err := m.Create(CreateParams{
		Name:        "bad",
		Permissions: []string{model.PermissionRead, "delete"},
	})
	assert.ErrorIs(t, err, model.ErrInvalidPermission)
	assert.Equal(t, 0, m.Count())
}

func TestCreate_InvalidTier(t *testing.T) {
	m := testManager()

	_, err := m.Create(CreateParams{Name: "bad", Tier: "platinum"})
	assert.ErrorIs(t, err, model.ErrInvalidTier)
}

func TestCreate_DefaultsToFreeTier(t *testing.T) {
	m := testManager()

	key, err := m.Create(CreateParams{Name: "default tier"})
	require.NoError(t, err)
	assert.Equal(t, model.TierFree, key.Tier)
	assert.Equal(t, 1000, key.RateLimit.RequestsPerHour)
}

func TestCreate_TierOverrideFromConfig(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	m := NewManager(config.RateLimitConfig{Free: 50}, log)

	key, err := m.Create(CreateParams{Name: "limited", Tier: model.TierFree})
	require.NoError(t, err)
	assert.Equal(t, 50, key.RateLimit.RequestsPerHour)
}

func TestListForUser_TruncatesSecret(t *testing.T) {
	m := testManager()

	created, err := m.Create(CreateParams{
		Name:        "mine",
		UserID:      "user-1",
		Permissions: []string{model.PermissionRead},
	})
	require.NoError(t, err)
	_, err = m.Create(CreateParams{Name: "theirs", UserID: "user-2"})
	require.NoError(t, err)

	keys := m.ListForUser("user-1")
	require.Len(t, keys, 1)

	listed := keys[0]
	assert.Equal(t, created.ID, listed.ID)
	assert.True(t, strings.HasSuffix(listed.Key, "..."))
	assert.Equal(t, created.Key[:model.SecretPrefixLen], listed.Key[:model.SecretPrefixLen])
	assert.Less(t, len(listed.Key), len(created.Key))
}

func TestRevoke_TerminalAndReportsExistence(t *testing.T) {
	m := testManager()

	key, err := m.Create(CreateParams{Name: "short-lived"})
	require.NoError(t, err)

	assert.True(t, m.Revoke(key.ID))

	// Second revoke of the same id returns false; the key stays inactive.
	assert.False(t, m.Revoke(key.ID))
	got, ok := m.Get(key.ID)
	require.True(t, ok)
	assert.False(t, got.Active)

	assert.False(t, m.Revoke("no-such-id"))
}

func TestUsage_Snapshot(t *testing.T) {
	m := testManager()

	key, err := m.Create(CreateParams{
		Name:        "tracked",
		Permissions: []string{model.PermissionRead},
	})
	require.NoError(t, err)

	_, err = m.Authorize(key.Key, model.PermissionRead)
	require.NoError(t, err)
	_, err = m.Authorize(key.Key, model.PermissionRead)
	require.NoError(t, err)

	usage, ok := m.Usage(key.ID)
	require.True(t, ok)
	assert.Equal(t, 2, usage.RequestCount)
	assert.False(t, usage.LastUsedAt.IsZero())

	_, ok = m.Usage("no-such-id")
	assert.False(t, ok)
}

func TestAuthorize_UnknownSecret(t *testing.T) {
	m := testManager()

	_, err := m.Authorize("fv_bogus", model.PermissionRead)
	assert.ErrorIs(t, err, model.ErrAPIKeyNotFound)
}

func TestAuthorize_RevokedKey(t *testing.T) {
	m := testManager()

	key, err := m.Create(CreateParams{
		Name:        "revoked",
		Permissions: []string{model.PermissionRead},
	})
	require.NoError(t, err)
	require.True(t, m.Revoke(key.ID))

	_, err = m.Authorize(key.Key, model.PermissionRead)
	assert.ErrorIs(t, err, model.ErrKeyRevoked)
}

func TestAuthorize_MissingPermission(t *testing.T) {
	m := testManager()

	key, err := m.Create(CreateParams{
		Name:        "read only",
		Permissions: []string{model.PermissionRead},
	})
	require.NoError(t, err)

	_, err = m.Authorize(key.Key, model.PermissionWrite)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestAuthorize_RateLimitWithinHourWindow(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	m := NewManager(config.RateLimitConfig{Free: 3}, log)

	current := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	key, err := m.Create(CreateParams{
		Name:        "limited",
		Permissions: []string{model.PermissionRead},
		Tier:        model.TierFree,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := m.Authorize(key.Key, model.PermissionRead)
		require.NoError(t, err)
	}

	// Quota met: the fourth call inside the same hour is rejected.
	_, err = m.Authorize(key.Key, model.PermissionRead)
	assert.ErrorIs(t, err, model.ErrRateLimited)

	// The window resets at the top of the next hour.
	current = time.Date(2025, 6, 1, 11, 0, 1, 0, time.UTC)
	_, err = m.Authorize(key.Key, model.PermissionRead)
	assert.NoError(t, err)

	// Lifetime counter keeps growing across windows.
	usage, ok := m.Usage(key.ID)
	require.True(t, ok)
	assert.Equal(t, 4, usage.RequestCount)
}

func TestSeedDemoKeys_IdempotentAcrossCalls(t *testing.T) {
	m := testManager()

	m.SeedDemoKeys()
	first := m.Count()
	assert.Equal(t, len(demoKeys), first)

	// Safe to call on every request: no duplicates.
	m.SeedDemoKeys()
	m.SeedDemoKeys()
	assert.Equal(t, first, m.Count())
}
