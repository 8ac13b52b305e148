// Package blob provides tests for the network backend using fake
// publisher/aggregator servers.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
)

// fakeNetwork stands in for the publisher/aggregator pair.
type fakeNetwork struct {
	mu    sync.Mutex
	blobs map[string][]byte
	next  int
	down  bool
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{blobs: make(map[string][]byte)}
}

func (f *fakeNetwork) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/blobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.down {
			http.Error(w, "storage node error", http.StatusInternalServerError)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.next++
		id := fmt.Sprintf("netblob-%d", f.next)
		f.blobs[id] = body
		fmt.Fprintf(w, `{"newlyCreated":{"blobObject":{"blobId":%q,"size":%d}}}`, id, len(body))
	})
	mux.HandleFunc("/v1/blobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.down {
			http.Error(w, "storage node error", http.StatusInternalServerError)
			return
		}
		data, ok := f.blobs[strings.TrimPrefix(r.URL.Path, "/v1/blobs/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	})
	mux.HandleFunc("/v1/api", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.down {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	})
	return mux
}

func (f *fakeNetwork) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func newTestNetwork(t *testing.T) (*Network, *fakeNetwork) {
	t.Helper()
	fake := newFakeNetwork()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	n := NewNetwork(config.BlobConfig{
		PublisherURL:  srv.URL,
		AggregatorURL: srv.URL,
		Epochs:        5,
		Timeout:       5 * time.Second,
	}, testLogger())
	t.Cleanup(func() { n.Close() })
	return n, fake
}

func TestNetwork_StoreRetrieve_RoundTrip(t *testing.T) {
	n, _ := newTestNetwork(t)

	payload := []byte("network payload")
	meta, err := n.Store(context.Background(), payload)
	require.NoError(t, err)
	assert.NotEmpty(t, meta.BlobID)
	assert.Equal(t, int64(len(payload)), meta.Size)
	assert.Equal(t, "certified", meta.Certificate)

	got, err := n.Retrieve(context.Background(), meta.BlobID)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestNetwork_Retrieve_NotFound(t *testing.T) {
	n, _ := newTestNetwork(t)

	_, err := n.Retrieve(context.Background(), "unknown")
	assert.ErrorIs(t, err, model.ErrBlobNotFound)
}

func TestNetwork_Store_PublisherError(t *testing.T) {
	n, fake := newTestNetwork(t)
	fake.setDown(true)

	_, err := n.Store(context.Background(), []byte("payload"))
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}

func TestNetwork_Store_Unreachable(t *testing.T) {
	n := NewNetwork(config.BlobConfig{
		PublisherURL:  "http://127.0.0.1:1",
		AggregatorURL: "http://127.0.0.1:1",
		Epochs:        5,
		Timeout:       500 * time.Millisecond,
	}, testLogger())
	defer n.Close()

	_, err := n.Store(context.Background(), []byte("payload"))
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}

func TestNetwork_HealthCheck(t *testing.T) {
	n, fake := newTestNetwork(t)

	assert.NoError(t, n.HealthCheck(context.Background()))

	fake.setDown(true)
	err := n.HealthCheck(context.Background())
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}
