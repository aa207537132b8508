package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadash/internal/model"
)

func rec(id string, at time.Time) *model.Record {
	return &model.Record{
		ID:        id,
		Kind:      model.KindClient,
		Status:    "active",
		Fields:    map[string]any{"company_name": id},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestRecordMemory_CreatePrependsAndCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordMemory()
	now := time.Now().UTC()

	first := rec("CLT-1-a", now)
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)
	_, err = repo.Create(ctx, rec("CLT-2-b", now))
	require.NoError(t, err)

	// mutating the caller's value must not leak into the store
	first.Fields["company_name"] = "changed"

	items, err := repo.List(ctx, model.KindClient)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CLT-2-b", items[0].ID)
	assert.Equal(t, "CLT-1-a", items[1].ID)
	assert.Equal(t, "CLT-1-a", items[1].Fields["company_name"])

	_, err = repo.Create(ctx, rec("CLT-1-a", now))
	assert.ErrorIs(t, err, model.ErrConflict)

	other, err := repo.List(ctx, model.KindOrder)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecordMemory_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordMemory()
	_, _ = repo.Create(ctx, rec("CLT-1-a", time.Now()))

	got, err := repo.FindByID(ctx, model.KindClient, "CLT-1-a")
	require.NoError(t, err)
	assert.Equal(t, "CLT-1-a", got.ID)

	_, err = repo.FindByID(ctx, model.KindClient, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = repo.FindByID(ctx, model.KindOrder, "CLT-1-a")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecordMemory_UpdateCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordMemory()
	t0 := time.Now().UTC()
	_, _ = repo.Create(ctx, rec("CLT-1-a", t0))
	_, _ = repo.Create(ctx, rec("CLT-2-b", t0))

	next := rec("CLT-1-a", t0)
	next.Status = "suspended"
	next.UpdatedAt = t0.Add(time.Second)

	got, err := repo.Update(ctx, next, t0)
	require.NoError(t, err)
	assert.Equal(t, "suspended", got.Status)

	// position is preserved
	items, _ := repo.List(ctx, model.KindClient)
	assert.Equal(t, "CLT-1-a", items[1].ID)
	assert.Equal(t, "suspended", items[1].Status)

	stale := rec("CLT-1-a", t0)
	_, err = repo.Update(ctx, stale, t0)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = repo.Update(ctx, rec("missing", t0), t0)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRecordMemory_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordMemory()
	_, _ = repo.Create(ctx, rec("CLT-1-a", time.Now()))
	_, _ = repo.Create(ctx, rec("CLT-2-b", time.Now()))

	require.NoError(t, repo.Delete(ctx, model.KindClient, "CLT-1-a"))
	items, _ := repo.List(ctx, model.KindClient)
	require.Len(t, items, 1)
	assert.Equal(t, "CLT-2-b", items[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, model.KindClient, "CLT-1-a"), model.ErrNotFound)
}

func TestRecordMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewRecordMemory()

	_, err := repo.List(ctx, model.KindClient)
	assert.ErrorIs(t, err, context.Canceled)
}
