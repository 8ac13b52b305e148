// Package store provides tests for the in-memory record stores.
package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factvault/factvault/internal/model"
)

// factRecord builds a minimal stored fact record for tests.
func factRecord(id, blobID, summary string) model.StoredFactRecord {
	return model.StoredFactRecord{
		Fact: model.Fact{
			ID:      id,
			Title:   "title " + id,
			Summary: summary,
			Status:  model.StatusUnverified,
			BlobID:  blobID,
		},
		BlobID:       blobID,
		BlobMetadata: model.BlobMetadata{BlobID: blobID, Size: 10, StoredAt: time.Now()},
	}
}

// commentRecord builds a minimal stored comment record for tests.
func commentRecord(id, factID string) model.StoredCommentRecord {
	return model.StoredCommentRecord{
		Comment: model.ContextComment{
			ID:      id,
			FactID:  factID,
			Text:    "text " + id,
			Created: time.Now(),
		},
		BlobID:       "blob-" + id,
		BlobMetadata: model.BlobMetadata{BlobID: "blob-" + id},
	}
}

func TestMemoryFactStore_UpsertGet(t *testing.T) {
	s := NewMemoryFactStore()

	require.NoError(t, s.Upsert(factRecord("F1", "blob1", "first")))

	record, ok := s.Get("F1")
	require.True(t, ok)
	assert.Equal(t, "first", record.Fact.Summary)
	assert.Equal(t, "blob1", record.BlobID)

	_, ok = s.Get("F2")
	assert.False(t, ok)
}

func TestMemoryFactStore_Upsert_LastWriteWins(t *testing.T) {
	s := NewMemoryFactStore()

	require.NoError(t, s.Upsert(factRecord("F1", "blob1", "original")))
	require.NoError(t, s.Upsert(factRecord("F1", "blob2", "updated")))

	record, ok := s.Get("F1")
	require.True(t, ok)
	assert.Equal(t, "updated", record.Fact.Summary)
	assert.Equal(t, "blob2", record.BlobID)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryFactStore_ListInsertionOrder(t *testing.T) {
	s := NewMemoryFactStore()

	for _, id := range []string{"F3", "F1", "F2"} {
		require.NoError(t, s.Upsert(factRecord(id, "blob-"+id, "")))
	}

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "F3", list[0].Fact.ID)
	assert.Equal(t, "F1", list[1].Fact.ID)
	assert.Equal(t, "F2", list[2].Fact.ID)
}

func TestMemoryFactStore_Clear(t *testing.T) {
	s := NewMemoryFactStore()
	require.NoError(t, s.Upsert(factRecord("F1", "blob1", "")))

	s.Clear()

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.List())
}

func TestMemoryCommentStore_ListForFact_InsertionOrder(t *testing.T) {
	s := NewMemoryCommentStore()

	require.NoError(t, s.Upsert(commentRecord("C1", "F1")))
	require.NoError(t, s.Upsert(commentRecord("C2", "F2")))
	require.NoError(t, s.Upsert(commentRecord("C3", "F1")))
	require.NoError(t, s.Upsert(commentRecord("C4", "F1")))

	list := s.ListForFact("F1")
	require.Len(t, list, 3)
	assert.Equal(t, "C1", list[0].Comment.ID)
	assert.Equal(t, "C3", list[1].Comment.ID)
	assert.Equal(t, "C4", list[2].Comment.ID)

	// A fact with no comments yields an empty slice, not nil or an error.
	assert.NotNil(t, s.ListForFact("F9"))
	assert.Empty(t, s.ListForFact("F9"))
}

func TestMemoryCommentStore_Upsert_ReplaceKeepsSingleIndexEntry(t *testing.T) {
	s := NewMemoryCommentStore()

	require.NoError(t, s.Upsert(commentRecord("C1", "F1")))
	updated := commentRecord("C1", "F1")
	updated.Comment.Text = "edited"
	require.NoError(t, s.Upsert(updated))

	list := s.ListForFact("F1")
	require.Len(t, list, 1)
	assert.Equal(t, "edited", list[0].Comment.Text)
	assert.Equal(t, 1, s.Count())
}

func TestMemoryCommentStore_Upsert_MovesIndexWhenFactChanges(t *testing.T) {
	s := NewMemoryCommentStore()

	require.NoError(t, s.Upsert(commentRecord("C1", "F1")))
	moved := commentRecord("C1", "F2")
	require.NoError(t, s.Upsert(moved))

	assert.Empty(t, s.ListForFact("F1"))
	require.Len(t, s.ListForFact("F2"), 1)
}

func TestMemoryCommentStore_Clear_EmptiesRecordsAndIndex(t *testing.T) {
	s := NewMemoryCommentStore()

	require.NoError(t, s.Upsert(commentRecord("C1", "F1")))
	require.NoError(t, s.Upsert(commentRecord("C2", "F1")))

	s.Clear()

	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.ListForFact("F1"))
	_, ok := s.Get("C1")
	assert.False(t, ok)
}
