package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

// MemoryStorage is an in-process Repository. Records keep insertion order.
type MemoryStorage struct {
	mu    sync.RWMutex
	docs  map[string]domain.Complaint
	order []string
	now   func() time.Time
	newID func() string
}

// NewMemoryStorage creates an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		docs:  make(map[string]domain.Complaint),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add stores c under a new id.
func (s *MemoryStorage) Add(_ context.Context, c domain.Complaint) (string, error) {
	c = domain.PrepareForWrite(c, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	c.ID = id
	s.docs[id] = c
	s.order = append(s.order, id)
	return id, nil
}

// GetAll returns normalized copies of every record in insertion order.
func (s *MemoryStorage) GetAll(_ context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Complaint, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.docs[id])
	}
	return domain.NormalizeAll(items), nil
}

// UpdateField sets one mutable field.
func (s *MemoryStorage) UpdateField(_ context.Context, id string, field domain.Field, value string) error {
	if err := CheckUpdate(id, field); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := c.Set(field, value); err != nil {
		return err
	}
	s.docs[id] = c
	return nil
}

// Delete removes id if present.
func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return nil
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find returns stored records matching filters exactly.
func (s *MemoryStorage) Find(_ context.Context, filters domain.Filters) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Complaint, 0)
	for _, id := range s.order {
		if c := s.docs[id]; filters.Matches(c) {
			items = append(items, c)
		}
	}
	return items, nil
}

// Aggregate counts every record in one scan.
func (s *MemoryStorage) Aggregate(ctx context.Context) (domain.Stats, error) {
	items, err := s.GetAll(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.StatsOf(items), nil
}

// Ping always succeeds.
func (s *MemoryStorage) Ping(context.Context) error {
	return nil
}
