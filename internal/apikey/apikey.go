// Package apikey provides API key issuance, authorization, rate limiting,
// and revocation for FactVault. Keys gate every data operation: each
// authorized call consumes one unit of the key's hourly quota.
//
// Rate limiting uses a fixed window keyed by wall-clock hour: the
// per-window counter resets at the top of each hour, while the lifetime
// request counter keeps growing. Revocation is terminal; a revoked key is
// never reactivated and its id and secret are never reissued.
package apikey

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
	"github.com/factvault/factvault/internal/util"
)

// keyState is the registry entry for one issued key.
type keyState struct {
	key model.APIKey

	// Fixed rate-limit window: windowStart is truncated to the hour and
	// windowCount is the number of authorized calls inside it.
	windowStart time.Time
	windowCount int
}

// CreateParams are the caller-supplied fields for key issuance.
type CreateParams struct {
	Name        string
	UserID      string
	Permissions []string
	Tier        string
}

// Manager owns the process-wide key registry.
type Manager struct {
	log *logrus.Logger

	// Tier quota overrides from configuration; zero keeps defaults.
	limits config.RateLimitConfig

	seedOnce sync.Once

	mu       sync.RWMutex
	byID     map[string]*keyState
	bySecret map[string]*keyState

	// now is stubbed in tests to control the rate-limit window.
	now func() time.Time
}

// NewManager creates an empty key registry.
func NewManager(limits config.RateLimitConfig, log *logrus.Logger) *Manager {
	return &Manager{
		log:      log,
		limits:   limits,
		byID:     make(map[string]*keyState),
		bySecret: make(map[string]*keyState),
		now:      time.Now,
	}
}

// requestsPerHour resolves the quota for a tier, applying config overrides.
func (m *Manager) requestsPerHour(tier string) int {
	override := 0
	switch tier {
	case model.TierFree:
		override = m.limits.Free
	case model.TierPremium:
		override = m.limits.Premium
	case model.TierEnterprise:
		override = m.limits.Enterprise
	}
	if override > 0 {
		return override
	}
	return model.RequestsPerHour(tier)
}

// Create issues a new API key. The returned key carries the full secret;
// this is the only time it is exposed in full.
func (m *Manager) Create(params CreateParams) (model.APIKey, error) {
	if params.Name == "" {
		return model.APIKey{}, model.ErrInvalidKeyName
	}
	for _, p := range params.Permissions {
		if !model.ValidPermission(p) {
			return model.APIKey{}, fmt.Errorf("%w: %q", model.ErrInvalidPermission, p)
		}
	}
	tier := params.Tier
	if tier == "" {
		tier = model.TierFree
	}
	if model.RequestsPerHour(tier) == 0 {
		return model.APIKey{}, fmt.Errorf("%w: %q", model.ErrInvalidTier, tier)
	}

	secret, err := util.NewKeySecret()
	if err != nil {
		return model.APIKey{}, fmt.Errorf("generating key secret: %w", err)
	}

	key := model.APIKey{
		ID:          uuid.NewString(),
		Key:         secret,
		Name:        params.Name,
		UserID:      params.UserID,
		Permissions: append([]string(nil), params.Permissions...),
		Tier:        tier,
		RateLimit:   model.RateLimit{RequestsPerHour: m.requestsPerHour(tier)},
		Usage:       model.APIKeyUsage{CreatedAt: m.now()},
		Active:      true,
	}

	state := &keyState{key: key}

	m.mu.Lock()
	m.byID[key.ID] = state
	m.bySecret[secret] = state
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"key_id": key.ID, "tier": tier, "name": params.Name}).
		Info("API key issued")
	return key, nil
}

// ListForUser returns the keys bound to a user, secrets truncated to a
// bounded prefix. Keys with an empty UserID are returned for an empty
// userID query.
func (m *Manager) ListForUser(userID string) []model.APIKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.APIKey, 0)
	for _, state := range m.byID {
		if state.key.UserID == userID {
			out = append(out, state.key.ForListing())
		}
	}
	return out
}

// Get returns a key by id with its secret truncated.
func (m *Manager) Get(id string) (model.APIKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.byID[id]
	if !ok {
		return model.APIKey{}, false
	}
	return state.key.ForListing(), true
}

// Revoke deactivates a key. Returns whether an active key with that id
// existed: revoking an already-revoked or unknown id returns false.
// Revocation is terminal.
func (m *Manager) Revoke(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.byID[id]
	if !ok || !state.key.Active {
		return false
	}
	state.key.Active = false

	m.log.WithFields(logrus.Fields{"key_id": id}).Info("API key revoked")
	return true
}

// Usage returns the usage snapshot for a key.
func (m *Manager) Usage(id string) (model.APIKeyUsage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.byID[id]
	if !ok {
		return model.APIKeyUsage{}, false
	}
	return state.key.Usage, true
}

// Authorize validates a secret against a required permission and consumes
// one unit of the key's hourly quota. This is the single enforcement point
// for rate limits; storage operations never check quotas themselves.
//
// Returns the key (with full secret, for internal use) on success.
// Error taxonomy: ErrAPIKeyNotFound for unknown secrets, ErrKeyRevoked,
// ErrPermissionDenied, ErrRateLimited.
func (m *Manager) Authorize(secret, permission string) (model.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.bySecret[secret]
	if !ok {
		return model.APIKey{}, model.ErrAPIKeyNotFound
	}
	if !state.key.Active {
		return model.APIKey{}, model.ErrKeyRevoked
	}
	if !state.key.HasPermission(permission) {
		return model.APIKey{}, fmt.Errorf("%w: %s", model.ErrPermissionDenied, permission)
	}

	now := m.now()
	windowStart := now.Truncate(time.Hour)
	if !state.windowStart.Equal(windowStart) {
		state.windowStart = windowStart
		state.windowCount = 0
	}
	if state.windowCount >= state.key.RateLimit.RequestsPerHour {
		return model.APIKey{}, fmt.Errorf("%w: %d requests this hour",
			model.ErrRateLimited, state.windowCount)
	}

	state.windowCount++
	state.key.Usage.RequestCount++
	state.key.Usage.LastUsedAt = now

	return state.key, nil
}

// Count returns the number of registered keys.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
