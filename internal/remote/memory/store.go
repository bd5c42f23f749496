// Package memory is an in-process remote.Store. It backs the "memory"
// remote backend (offline demo) and the sync engine tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

type Store struct {
	mu         sync.RWMutex
	categories map[string]models.Category
	hardware   map[string]models.HardwareItem
	notes      map[string]models.Note
	auditLogs  map[string]models.AuditLogEntry
}

func NewStore() *Store {
	return &Store{
		categories: make(map[string]models.Category),
		hardware:   make(map[string]models.HardwareItem),
		notes:      make(map[string]models.Note),
		auditLogs:  make(map[string]models.AuditLogEntry),
	}
}

func (s *Store) UpsertCategories(ctx context.Context, records []models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.categories[r.ID] = r
	}
	return nil
}

func (s *Store) UpsertHardware(ctx context.Context, records []models.HardwareItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.hardware[r.ID] = r
	}
	return nil
}

func (s *Store) UpsertNotes(ctx context.Context, records []models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if prev, ok := s.notes[r.ID]; ok {
			r.CreatedAt = prev.CreatedAt
		}
		s.notes[r.ID] = r
	}
	return nil
}

func (s *Store) UpsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, ok := s.auditLogs[r.ID]; ok {
			continue
		}
		r.IsSynced = false
		s.auditLogs[r.ID] = r
	}
	return nil
}

func (s *Store) InsertAuditLogs(ctx context.Context, records []models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if _, ok := s.auditLogs[r.ID]; ok {
			return fmt.Errorf("audit log[%s]: %w", r.ID, common.ErrorAlreadyExists)
		}
	}
	for _, r := range records {
		r.IsSynced = false
		s.auditLogs[r.ID] = r
	}
	return nil
}

func (s *Store) SelectCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.categories), nil
}

func (s *Store) SelectHardware(ctx context.Context) ([]models.HardwareItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.hardware), nil
}

func (s *Store) SelectNotes(ctx context.Context) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.notes), nil
}

func (s *Store) SelectAuditLogs(ctx context.Context) ([]models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.auditLogs), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error { return nil }

func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
