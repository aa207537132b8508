package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"pharmadash/internal/model"
	"pharmadash/internal/repository"
)

// RecordMemory is an in-memory implementation of repository.RecordRepository.
// Each kind is an ordered slice with the newest record first. It is safe for concurrent use.
type RecordMemory struct {
	mu   sync.RWMutex
	data map[model.Kind][]*model.Record
}

// NewRecordMemory creates an empty repository.
func NewRecordMemory() *RecordMemory {
	return &RecordMemory{data: make(map[model.Kind][]*model.Record)}
}

var _ repository.RecordRepository = (*RecordMemory)(nil)

// Create prepends a copy of rec to its kind's collection.
func (m *RecordMemory) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(rec.Kind, rec.ID) >= 0 {
		return nil, model.ErrConflict
	}
	stored := rec.Clone()
	m.data[rec.Kind] = slices.Insert(m.data[rec.Kind], 0, stored)
	return stored.Clone(), nil
}

// FindByID returns a copy of the record.
func (m *RecordMemory) FindByID(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(kind, id)
	if i < 0 {
		return nil, model.ErrNotFound
	}
	return m.data[kind][i].Clone(), nil
}

// List returns copies of every record of kind in collection order.
func (m *RecordMemory) List(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]model.Record, 0, len(m.data[kind]))
	for _, r := range m.data[kind] {
		items = append(items, *r.Clone())
	}
	return items, nil
}

// Update swaps in rec if the stored version still carries prevUpdatedAt. Position is kept.
func (m *RecordMemory) Update(ctx context.Context, rec *model.Record, prevUpdatedAt time.Time) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(rec.Kind, rec.ID)
	if i < 0 {
		return nil, model.ErrNotFound
	}
	if !m.data[rec.Kind][i].UpdatedAt.Equal(prevUpdatedAt) {
		return nil, model.ErrConflict
	}
	stored := rec.Clone()
	m.data[rec.Kind][i] = stored
	return stored.Clone(), nil
}

// Delete removes exactly one record.
func (m *RecordMemory) Delete(ctx context.Context, kind model.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(kind, id)
	if i < 0 {
		return model.ErrNotFound
	}
	m.data[kind] = slices.Delete(m.data[kind], i, i+1)
	return nil
}

func (m *RecordMemory) indexOf(kind model.Kind, id string) int {
	return slices.IndexFunc(m.data[kind], func(r *model.Record) bool { return r.ID == id })
}
