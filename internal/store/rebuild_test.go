// Package store provides tests for the rebuild-from-backend procedure.
package store

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factvault/factvault/internal/blob"
	"github.com/factvault/factvault/internal/model"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestRebuildFromBackend_RestoresFactsAndComments(t *testing.T) {
	ctx := context.Background()
	backend, err := blob.NewMock(t.TempDir(), quietLogger())
	require.NoError(t, err)
	defer backend.Close()

	factPayload, err := model.NewFactEnvelope(model.Fact{
		ID:      "F1",
		Title:   "claim",
		Summary: "details",
		Status:  model.StatusVerified,
	})
	require.NoError(t, err)
	_, err = backend.Store(ctx, factPayload)
	require.NoError(t, err)

	commentPayload, err := model.NewCommentEnvelope(model.ContextComment{
		ID:     "C1",
		FactID: "F1",
		Text:   "context",
	})
	require.NoError(t, err)
	_, err = backend.Store(ctx, commentPayload)
	require.NoError(t, err)

	// A non-envelope blob must be skipped, not fail the rebuild.
	_, err = backend.Store(ctx, []byte("raw bytes from another tool"))
	require.NoError(t, err)

	stores := &Stores{
		Facts:    NewMemoryFactStore(),
		Comments: NewMemoryCommentStore(),
	}

	restored, err := RebuildFromBackend(ctx, backend, stores, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	record, ok := stores.Facts.Get("F1")
	require.True(t, ok)
	assert.Equal(t, "claim", record.Fact.Title)
	assert.NotEmpty(t, record.BlobID)

	comments := stores.Comments.ListForFact("F1")
	require.Len(t, comments, 1)
	assert.Equal(t, "C1", comments[0].Comment.ID)
}

func TestRebuildFromBackend_RequiresEnumerator(t *testing.T) {
	stores := &Stores{
		Facts:    NewMemoryFactStore(),
		Comments: NewMemoryCommentStore(),
	}

	_, err := RebuildFromBackend(context.Background(), nonEnumeratingBackend{}, stores, quietLogger())
	assert.Error(t, err)
}

// nonEnumeratingBackend satisfies blob.Store without the Enumerator
// capability.
type nonEnumeratingBackend struct{}

func (nonEnumeratingBackend) Store(context.Context, []byte) (model.BlobMetadata, error) {
	return model.BlobMetadata{}, nil
}
func (nonEnumeratingBackend) Retrieve(context.Context, string) ([]byte, error) {
	return nil, model.ErrBlobNotFound
}
func (nonEnumeratingBackend) HealthCheck(context.Context) error { return nil }
func (nonEnumeratingBackend) Close() error                      { return nil }
