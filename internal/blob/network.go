// Package blob provides the network implementation of the Store interface.
// It delegates to the external decentralized storage network through its
// publisher (writes) and aggregator (reads) HTTP endpoints, performing no
// local caching and no retries: latency and failure modes of the network
// surface to callers unchanged.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/config"
	"github.com/factvault/factvault/internal/model"
)

// Network implements the Store interface against the storage network.
type Network struct {
	publisherURL  string
	aggregatorURL string
	epochs        int
	client        *http.Client
	log           *logrus.Logger
}

// NewNetwork creates a network backend from configuration.
func NewNetwork(cfg config.BlobConfig, log *logrus.Logger) *Network {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Network{
		publisherURL:  strings.TrimRight(cfg.PublisherURL, "/"),
		aggregatorURL: strings.TrimRight(cfg.AggregatorURL, "/"),
		epochs:        cfg.Epochs,
		client:        &http.Client{Timeout: timeout},
		log:           log,
	}
}

// storeResponse mirrors the publisher's store response. The publisher
// reports either a newly created blob or one it already certified.
type storeResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
			Size   int64  `json:"size"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
		Event  struct {
			TxDigest string `json:"txDigest"`
		} `json:"event"`
	} `json:"alreadyCertified"`
}

// Store uploads the payload to the publisher and returns the metadata the
// network assigned. Transport failures wrap model.ErrBackendUnavailable.
func (n *Network) Store(ctx context.Context, payload []byte) (model.BlobMetadata, error) {
	url := fmt.Sprintf("%s/v1/blobs?epochs=%d", n.publisherURL, n.epochs)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return model.BlobMetadata{}, fmt.Errorf("building store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := n.client.Do(req)
	if err != nil {
		return model.BlobMetadata{}, fmt.Errorf("%w: storing blob: %v", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.BlobMetadata{}, fmt.Errorf("%w: publisher returned %d: %s",
			model.ErrBackendUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr storeResponse
	if err := decodeJSON(resp.Body, &sr); err != nil {
		return model.BlobMetadata{}, fmt.Errorf("%w: decoding publisher response: %v",
			model.ErrBackendUnavailable, err)
	}

	meta := model.BlobMetadata{
		Size:     int64(len(payload)),
		StoredAt: time.Now(),
	}
	switch {
	case sr.NewlyCreated != nil:
		meta.BlobID = sr.NewlyCreated.BlobObject.BlobID
		if sr.NewlyCreated.BlobObject.Size > 0 {
			meta.Size = sr.NewlyCreated.BlobObject.Size
		}
		meta.Certificate = "certified"
	case sr.AlreadyCertified != nil:
		meta.BlobID = sr.AlreadyCertified.BlobID
		meta.TransactionID = sr.AlreadyCertified.Event.TxDigest
		meta.Certificate = "certified"
	default:
		return model.BlobMetadata{}, fmt.Errorf("%w: publisher response missing blob id",
			model.ErrBackendUnavailable)
	}

	n.log.WithFields(logrus.Fields{"backend": "network", "blob_id": meta.BlobID, "size": meta.Size}).
		Debug("blob stored")
	return meta, nil
}

// Retrieve downloads a blob from the aggregator.
// A 404 from the aggregator maps to model.ErrBlobNotFound; every other
// failure wraps model.ErrBackendUnavailable.
func (n *Network) Retrieve(ctx context.Context, blobID string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/blobs/%s", n.aggregatorURL, blobID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building retrieve request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieving blob: %v", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.ErrBlobNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: aggregator returned %d", model.ErrBackendUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading blob body: %v", model.ErrBackendUnavailable, err)
	}
	return data, nil
}

// HealthCheck probes the aggregator. Any response below 500 counts as
// reachable; transport errors mean the network is unavailable.
func (n *Network) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.aggregatorURL+"/v1/api", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: aggregator returned %d", model.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases idle connections.
func (n *Network) Close() error {
	n.client.CloseIdleConnections()
	return nil
}

// decodeJSON decodes a JSON body into v.
func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
