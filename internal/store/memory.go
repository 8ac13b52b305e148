// Package store provides the in-memory implementations of the record
// stores. These are process-wide maps guarded by RWMutexes; a concurrent
// deployment can swap in the Database class without changing callers.
package store

import (
	"sync"

	"github.com/factvault/factvault/internal/model"
)

// MemoryFactStore implements FactStore with a mutex-guarded map.
type MemoryFactStore struct {
	mu    sync.RWMutex
	facts map[string]model.StoredFactRecord
	order []string
}

// NewMemoryFactStore creates an empty in-memory fact store.
func NewMemoryFactStore() *MemoryFactStore {
	return &MemoryFactStore{
		facts: make(map[string]model.StoredFactRecord),
	}
}

// Upsert inserts or replaces a record by fact id. Never fails.
func (s *MemoryFactStore) Upsert(record model.StoredFactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.facts[record.Fact.ID]; !exists {
		s.order = append(s.order, record.Fact.ID)
	}
	s.facts[record.Fact.ID] = record
	return nil
}

// Get retrieves a record by fact id.
func (s *MemoryFactStore) Get(id string) (model.StoredFactRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.facts[id]
	return record, ok
}

// List returns all fact records in insertion order.
func (s *MemoryFactStore) List() []model.StoredFactRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.StoredFactRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.facts[id])
	}
	return out
}

// Count returns the number of stored facts.
func (s *MemoryFactStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// Clear resets all state.
func (s *MemoryFactStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = make(map[string]model.StoredFactRecord)
	s.order = nil
}

// MemoryCommentStore implements CommentStore with a mutex-guarded record
// map plus a fact-to-ordered-comment-id secondary index. Both structures
// are mutated inside the same critical section, so no reader can observe
// a record without its index entry or vice versa.
type MemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]model.StoredCommentRecord
	byFact   map[string][]string
}

// NewMemoryCommentStore creates an empty in-memory comment store.
func NewMemoryCommentStore() *MemoryCommentStore {
	return &MemoryCommentStore{
		comments: make(map[string]model.StoredCommentRecord),
		byFact:   make(map[string][]string),
	}
}

// Upsert inserts or replaces a record by comment id and maintains the
// fact index in the same operation. Never fails.
func (s *MemoryCommentStore) Upsert(record model.StoredCommentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := record.Comment.ID
	factID := record.Comment.FactID

	if existing, exists := s.comments[id]; exists {
		// Replacing a comment that moved between facts has to move its
		// index entry as well.
		if existing.Comment.FactID != factID {
			s.removeFromIndexLocked(existing.Comment.FactID, id)
			s.byFact[factID] = append(s.byFact[factID], id)
		}
	} else {
		s.byFact[factID] = append(s.byFact[factID], id)
	}

	s.comments[id] = record
	return nil
}

// removeFromIndexLocked drops a comment id from a fact's index entry.
// Callers must hold the write lock.
func (s *MemoryCommentStore) removeFromIndexLocked(factID, commentID string) {
	ids := s.byFact[factID]
	for i, existing := range ids {
		if existing == commentID {
			s.byFact[factID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byFact[factID]) == 0 {
		delete(s.byFact, factID)
	}
}

// Get retrieves a record by comment id.
func (s *MemoryCommentStore) Get(id string) (model.StoredCommentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.comments[id]
	return record, ok
}

// ListForFact returns the comments on a fact in insertion order.
// Returns an empty slice if the fact has no comments.
func (s *MemoryCommentStore) ListForFact(factID string) []model.StoredCommentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byFact[factID]
	out := make([]model.StoredCommentRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.comments[id])
	}
	return out
}

// Count returns the number of stored comments.
func (s *MemoryCommentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}

// Clear resets both the record map and the secondary index.
func (s *MemoryCommentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = make(map[string]model.StoredCommentRecord)
	s.byFact = make(map[string][]string)
}
