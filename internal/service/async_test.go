package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadash/internal/model"
	"pharmadash/internal/repository/memory"
)

func TestAsync_CreateAwait(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.NewRecordMemory(), nil, nil)
	async := NewAsync(svc, 5*time.Millisecond, 5*time.Millisecond)

	f := async.CreateAsync(ctx, model.KindClient, acmeFields())
	rec, err := f.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.Fields["company_name"])

	select {
	case <-f.Done():
	default:
		t.Fatal("future should be resolved after Await")
	}
}

func TestAsync_CancelledWaitDoesNotCancelMutation(t *testing.T) {
	svc := NewRecordService(memory.NewRecordMemory(), nil, nil)
	async := NewAsync(svc, 30*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	f := async.CreateAsync(ctx, model.KindClient, acmeFields())
	cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	async.Wait()
	list, err := svc.List(context.Background(), model.KindClient)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAsync_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.NewRecordMemory(), nil, nil)
	async := NewAsync(svc, 0, 0)

	rec, err := svc.Create(ctx, model.KindClient, acmeFields())
	require.NoError(t, err)

	updated, err := async.UpdateAsync(ctx, model.KindClient, rec.ID, map[string]any{"status": "inactive"}, UpdateOptions{}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "inactive", updated.Status)

	_, err = async.DeleteAsync(ctx, model.KindClient, rec.ID).Await(ctx)
	require.NoError(t, err)

	_, err = async.DeleteAsync(ctx, model.KindClient, rec.ID).Await(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolved(t *testing.T) {
	v, err := Resolved(7, nil).Await(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService(memory.NewRecordMemory(), nil, nil)

	n, err := Seed(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, len(demoRecords), n)

	orders, err := svc.List(ctx, model.KindOrder)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, "shipped", orders[0].Status)
}
