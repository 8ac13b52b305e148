// Package index maintains the in-memory aggregate view over the record
// stores. The index is derived state: never authoritative, always
// recomputable, and rebuilt on demand. It depends only on narrow counting
// capabilities, so it works unchanged against any record store class and
// any blob backend.
package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/model"
)

// Counter is the capability the index needs from a record store.
type Counter interface {
	Count() int
}

// BackendProbe is the optional capability for checking backend
// reachability during refresh. A nil probe skips the check.
type BackendProbe interface {
	HealthCheck(ctx context.Context) error
}

// Manager maintains the aggregate statistics snapshot.
type Manager struct {
	facts    Counter
	comments Counter
	probe    BackendProbe
	log      *logrus.Logger

	// initMu serializes initialization attempts so concurrent first
	// requests trigger a single scan.
	initMu sync.Mutex

	mu        sync.RWMutex
	stats     model.IndexStats
	available bool
}

// NewManager creates an index manager over the given counters.
// probe may be nil when backend reachability should not gate the index.
func NewManager(facts, comments Counter, probe BackendProbe, log *logrus.Logger) *Manager {
	return &Manager{
		facts:    facts,
		comments: comments,
		probe:    probe,
		log:      log,
	}
}

// Initialize builds the first snapshot. It is idempotent once a snapshot
// exists: redundant calls, including concurrent ones from multiple
// in-flight requests, perform the scan exactly once. A failed attempt
// leaves the index unavailable and the next call retries, so a transient
// backend outage at startup does not require a process restart. Use
// Refresh to force a rebuild afterwards.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.Available() {
		return nil
	}

	m.initMu.Lock()
	defer m.initMu.Unlock()
	if m.Available() {
		return nil
	}

	if err := m.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrIndexUnavailable, err)
	}
	return nil
}

// Refresh recomputes the snapshot from the record stores. When a backend
// probe is configured and fails, the index is marked unavailable and the
// previous snapshot is kept.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.probe != nil {
		if err := m.probe.HealthCheck(ctx); err != nil {
			m.mu.Lock()
			m.available = false
			m.mu.Unlock()
			return fmt.Errorf("index refresh: %w", err)
		}
	}

	stats := model.IndexStats{
		TotalFacts:    m.facts.Count(),
		TotalComments: m.comments.Count(),
		LastSyncedAt:  time.Now(),
	}

	m.mu.Lock()
	m.stats = stats
	m.available = true
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"facts":    stats.TotalFacts,
		"comments": stats.TotalComments,
	}).Debug("index synchronized")
	return nil
}

// Stats returns the last-synchronized snapshot. Never fails; before the
// first successful refresh it returns a zero snapshot.
func (m *Manager) Stats() model.IndexStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Available reports whether the index holds a usable snapshot.
func (m *Manager) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available
}
