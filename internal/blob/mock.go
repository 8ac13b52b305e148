// Package blob provides the disk-mirrored mock implementation of the Store
// interface. The mock holds blobs in memory and mirrors every write to a
// local directory, so a restarted process can reload previously stored
// blobs and offline development behaves like the real network.
//
// Directory layout:
//
//	data/blobs/
//	  manifest.json            <- JSON list of every known blob id
//	  lx3k9f2a1k3Jd8Qz2p       <- one file per blob, named by blob id
//
// The manifest is the single source of truth on load: only ids it lists are
// trusted. Manifest updates are atomic (write-new-then-rename) so a crash
// mid-write never leaves a torn manifest behind.
package blob

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/model"
	"github.com/factvault/factvault/internal/util"
)

// manifestName is the manifest file inside the mirror directory.
const manifestName = "manifest.json"

// Latency bounds for simulated backend delay. Both backends incur realistic
// latency so downstream timing-sensitive code is exercised identically in
// tests and production.
const (
	storeLatencyMin    = 1 * time.Millisecond
	storeLatencyMax    = 15 * time.Millisecond
	retrieveLatencyMin = 1 * time.Millisecond
	retrieveLatencyMax = 5 * time.Millisecond
)

// Mock implements the Store interface with an in-memory cache mirrored to
// the local filesystem.
type Mock struct {
	dir string
	log *logrus.Logger

	mu    sync.RWMutex
	blobs map[string][]byte
}

// manifest is the on-disk structure listing every known blob id.
type manifest struct {
	Blobs []string `json:"blobs"`
}

// NewMock creates a mock backend mirrored to dir, loading any blobs
// recorded in an existing manifest.
func NewMock(dir string, log *logrus.Logger) (*Mock, error) {
	if dir == "" {
		dir = "data/blobs"
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	m := &Mock{
		dir:   dir,
		log:   log,
		blobs: make(map[string][]byte),
	}

	if err := m.loadManifest(); err != nil {
		return nil, err
	}

	return m, nil
}

// loadManifest repopulates the in-memory cache from the disk mirror.
// Blob ids listed in the manifest whose files are missing are logged and
// skipped; the cache only ever holds bytes that actually exist on disk.
func (m *Mock) loadManifest() error {
	data, err := os.ReadFile(filepath.Join(m.dir, manifestName))
	if os.IsNotExist(err) {
		return nil // Fresh directory
	}
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	var mf manifest
	if err := json.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}

	for _, id := range mf.Blobs {
		payload, err := os.ReadFile(filepath.Join(m.dir, id))
		if err != nil {
			m.log.WithFields(logrus.Fields{"blob_id": id}).
				Warn("manifest lists blob with no file on disk, skipping")
			continue
		}
		m.blobs[id] = payload
	}

	m.log.WithFields(logrus.Fields{"backend": "mock", "blobs": len(m.blobs)}).
		Info("blob mirror loaded")
	return nil
}

// Store persists the payload in memory and on disk, then rewrites the
// manifest atomically. Each call mints a new id; identical payloads are
// never deduplicated.
func (m *Mock) Store(ctx context.Context, payload []byte) (model.BlobMetadata, error) {
	if err := simulateLatency(ctx, storeLatencyMin, storeLatencyMax); err != nil {
		return model.BlobMetadata{}, err
	}

	now := time.Now()
	id, err := util.NewBlobID(now.UnixMilli())
	if err != nil {
		return model.BlobMetadata{}, fmt.Errorf("generating blob id: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := append([]byte(nil), payload...)

	blobPath := filepath.Join(m.dir, id)
	if err := atomicWrite(blobPath, stored); err != nil {
		return model.BlobMetadata{}, fmt.Errorf("writing blob file: %w", err)
	}

	m.blobs[id] = stored

	if err := m.writeManifestLocked(); err != nil {
		// Roll back so memory, disk and manifest stay consistent.
		delete(m.blobs, id)
		os.Remove(blobPath)
		return model.BlobMetadata{}, fmt.Errorf("writing manifest: %w", err)
	}

	return model.BlobMetadata{
		BlobID:      id,
		Certificate: "mock-cert-" + id,
		Size:        int64(len(stored)),
		StoredAt:    now,
	}, nil
}

// Retrieve checks memory first, falls back to the disk mirror, and only
// then fails with model.ErrBlobNotFound.
func (m *Mock) Retrieve(ctx context.Context, blobID string) ([]byte, error) {
	if err := simulateLatency(ctx, retrieveLatencyMin, retrieveLatencyMax); err != nil {
		return nil, err
	}

	m.mu.RLock()
	payload, ok := m.blobs[blobID]
	m.mu.RUnlock()
	if ok {
		return append([]byte(nil), payload...), nil
	}

	// Blob ids are generated alphanumerics; reject anything that could
	// escape the mirror directory before touching the filesystem.
	if blobID == "" || blobID != filepath.Base(blobID) {
		return nil, model.ErrBlobNotFound
	}

	data, err := os.ReadFile(filepath.Join(m.dir, blobID))
	if os.IsNotExist(err) {
		return nil, model.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob file: %w", err)
	}

	m.mu.Lock()
	m.blobs[blobID] = append([]byte(nil), data...)
	m.mu.Unlock()

	return data, nil
}

// HealthCheck verifies the mirror directory is usable.
func (m *Mock) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(m.dir); err != nil {
		return fmt.Errorf("%w: blob mirror inaccessible: %v", model.ErrBackendUnavailable, err)
	}
	return nil
}

// ManifestIDs returns every known blob id in sorted order.
// Satisfies the Enumerator capability used by index rebuilds.
func (m *Mock) ManifestIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.blobs))
	for id := range m.blobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of blobs currently cached.
func (m *Mock) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Close is a no-op for the mock backend.
func (m *Mock) Close() error {
	return nil
}

// writeManifestLocked rewrites the manifest from the in-memory cache.
// Callers must hold the write lock.
func (m *Mock) writeManifestLocked() error {
	mf := manifest{Blobs: make([]string, 0, len(m.blobs))}
	for id := range m.blobs {
		mf.Blobs = append(mf.Blobs, id)
	}
	sort.Strings(mf.Blobs)

	data, err := json.Marshal(mf)
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}

	return atomicWrite(filepath.Join(m.dir, manifestName), data)
}

// atomicWrite writes data via a temp file and rename so readers never
// observe a partially written file.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0640); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// simulateLatency sleeps for a random duration within [min, max],
// honoring context cancellation.
func simulateLatency(ctx context.Context, min, max time.Duration) error {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Errorf("generating latency jitter: %w", err)
	}
	span := int64(max - min)
	delay := min + time.Duration(int64(binary.BigEndian.Uint64(buf[:])%uint64(span+1)))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
