package history

import (
	"sync"
	"time"

	"github.com/Dixter999/agentmux/pkg/models"
)

// MemoryStore is an in-memory Store used by tests and ephemeral runs where
// no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]models.PerformanceRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]models.PerformanceRecord)}
}

// Append writes one record.
func (s *MemoryStore) Append(rec models.PerformanceRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.AgentID] = append(s.records[rec.AgentID], rec)
	return nil
}

// Recent returns up to limit records for an agent, newest first.
func (s *MemoryStore) Recent(agentID string, limit int) ([]models.PerformanceRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records[agentID]
	if len(all) == 0 {
		return nil, nil
	}
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]models.PerformanceRecord, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Prune keeps only the newest keepPerAgent records per agent.
func (s *MemoryStore) Prune(keepPerAgent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, all := range s.records {
		if len(all) > keepPerAgent {
			s.records[id] = append([]models.PerformanceRecord(nil), all[len(all)-keepPerAgent:]...)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
