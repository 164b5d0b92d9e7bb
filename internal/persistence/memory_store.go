package persistence

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/petrijr/hookflow/pkg/api"
)

// InMemoryHistoryStore is a simple, goroutine-safe HistoryStore backed by
// a map of slices.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	records map[string][]api.HistoryRecord
}

// NewInMemoryHistoryStore creates a new InMemoryHistoryStore.
func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		records: make(map[string][]api.HistoryRecord),
	}
}

// Ensure InMemoryHistoryStore implements HistoryStore.
var _ HistoryStore = (*InMemoryHistoryStore)(nil)

func (s *InMemoryHistoryStore) AppendEntry(ctx context.Context, rec api.HistoryRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.WorkflowID] = append(s.records[rec.WorkflowID], rec)
	return nil
}

func (s *InMemoryHistoryStore) ListEntries(ctx context.Context, workflowID string) ([]api.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]api.HistoryRecord(nil), s.records[workflowID]...)
	// Concurrent appends may arrive out of order.
	slices.SortStableFunc(out, func(a, b api.HistoryRecord) int { return a.Seq - b.Seq })
	return out, nil
}
