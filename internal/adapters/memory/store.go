// Package memory provides an in-process ports.StateStore, used by
// default when no Redis is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/forager/pkg/domain"
)

// Store keeps session records in a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.SessionRecord
}

func New() *Store {
	return &Store{records: make(map[string]*domain.SessionRecord)}
}

func (s *Store) Save(_ context.Context, record *domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	s.records[record.SessionID] = &cp
	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *record
	return &cp, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
