package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadash/internal/model"
)

var columns = []string{"id", "kind", "status", "fields", "created_at", "updated_at"}

func newRepo(t *testing.T) (*RecordPostgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRecordPostgres(db), mock
}

func clientRecord(now time.Time) *model.Record {
	return &model.Record{
		ID:        "CLT-1-abcdef",
		Kind:      model.KindClient,
		Status:    "active",
		Fields:    map[string]any{"company_name": "Acme"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRecordPostgres_Create(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	rec := clientRecord(now)

	t.Run("inserted", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow(rec.ID, "client", "active", []byte(`{"company_name":"Acme"}`), now, now)

		mock.ExpectQuery("INSERT INTO records").
			WithArgs(rec.ID, "client", "active", []byte(`{"company_name":"Acme"}`), now, now).
			WillReturnRows(rows)

		got, err := repo.Create(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, model.KindClient, got.Kind)
		assert.Equal(t, "Acme", got.Fields["company_name"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO records").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Create(ctx, rec)
		assert.ErrorIs(t, err, model.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordPostgres_FindByID(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("CLT-1-abcdef", "client", "pending", []byte(`{"phone":"555"}`), time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM records WHERE kind = (.+) AND id = (.+)").
			WithArgs("client", "CLT-1-abcdef").
			WillReturnRows(rows)

		got, err := repo.FindByID(ctx, model.KindClient, "CLT-1-abcdef")
		require.NoError(t, err)
		assert.Equal(t, "pending", got.Status)
		assert.Equal(t, "555", got.Fields["phone"])
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM records").
			WithArgs("client", "missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, model.KindClient, "missing")
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("corrupt fields", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("CLT-1-abcdef", "client", "active", []byte(`{not json`), time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM records").WillReturnRows(rows)

		_, err := repo.FindByID(ctx, model.KindClient, "CLT-1-abcdef")
		assert.ErrorContains(t, err, "decode fields of CLT-1-abcdef")
	})
}

func TestRecordPostgres_List(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(columns).
		AddRow("PO-2-b", "order", "ready", []byte(`{"quantity":10}`), now, now).
		AddRow("PO-1-a", "order", "draft", nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM records WHERE kind = (.+) ORDER BY seq DESC").
		WithArgs("order").
		WillReturnRows(rows)

	items, err := repo.List(ctx, model.KindOrder)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "PO-2-b", items[0].ID)
	assert.Equal(t, 10.0, items[0].Fields["quantity"])
	assert.NotNil(t, items[1].Fields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_Update(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	prev := time.Now().UTC()
	rec := clientRecord(prev)
	rec.Status = "suspended"
	rec.UpdatedAt = prev.Add(time.Second)

	t.Run("updated", func(t *testing.T) {
		mock.ExpectQuery("UPDATE records").
			WithArgs("suspended", sqlmock.AnyArg(), rec.UpdatedAt, "client", rec.ID, prev).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(rec.ID, "client", "suspended", []byte(`{"company_name":"Acme"}`), prev, rec.UpdatedAt))

		got, err := repo.Update(ctx, rec, prev)
		require.NoError(t, err)
		assert.Equal(t, "suspended", got.Status)
	})

	t.Run("conflict", func(t *testing.T) {
		mock.ExpectQuery("UPDATE records").WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("client", rec.ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.Update(ctx, rec, prev)
		assert.ErrorIs(t, err, model.ErrConflict)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("UPDATE records").WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Update(ctx, rec, prev)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery("UPDATE records").WillReturnError(errors.New("connection reset"))

		_, err := repo.Update(ctx, rec, prev)
		assert.EqualError(t, err, "connection reset")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_Delete(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM records WHERE kind = (.+) AND id = (.+)").
		WithArgs("client", "CLT-1-abcdef").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, model.KindClient, "CLT-1-abcdef"))

	mock.ExpectExec("DELETE FROM records").
		WithArgs("client", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, model.KindClient, "missing"), model.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
