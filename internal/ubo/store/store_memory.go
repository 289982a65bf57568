package store

import (
	"context"
	"sort"
	"sync"

	"github.com/consciencex/lhb-ubo/internal/ubo/models"
	"github.com/consciencex/lhb-ubo/pkg/platform/sentinel"
)

// MemoryStore is an in-memory RunStore for single-process deployments and
// tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*models.ScreeningResult
}

// NewMemory creates an empty in-memory run store.
func NewMemory() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*models.ScreeningResult)}
}

func (s *MemoryStore) Save(_ context.Context, result *models.ScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[result.RunID] = result
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, runID string) (*models.ScreeningResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[runID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return result, nil
}

func (s *MemoryStore) ListByCompany(_ context.Context, registrationID string) ([]*models.ScreeningResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*models.ScreeningResult
	for _, result := range s.runs {
		if result.RegistrationID == registrationID {
			results = append(results, result)
		}
	}
	// Newest first.
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})
	return results, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs), nil
}
