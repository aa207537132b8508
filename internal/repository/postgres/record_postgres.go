package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pharmadash/internal/model"
	"pharmadash/internal/repository"
)

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Fields are stored as JSONB; collection order comes from the seq column.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

const recordColumns = `id, kind, status, fields, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.Record, error) {
	var (
		r      model.Record
		kind   string
		fields []byte
	)
	if err := row.Scan(&r.ID, &kind, &r.Status, &fields, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Kind = model.Kind(kind)
	r.Fields = map[string]any{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &r.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of %s: %w", r.ID, err)
		}
	}
	return &r, nil
}

func encodeFields(rec *model.Record) ([]byte, error) {
	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields of %s: %w", rec.ID, err)
	}
	return b, nil
}

// Create inserts a new record row and returns the stored record.
func (r *RecordPostgres) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	fields, err := encodeFields(rec)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO records (id, kind, status, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, id) DO NOTHING
		RETURNING ` + recordColumns

	out, err := scanRecord(r.db.QueryRowContext(ctx, q,
		rec.ID,
		string(rec.Kind),
		rec.Status,
		fields,
		rec.CreatedAt,
		rec.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single record by kind and ID.
func (r *RecordPostgres) FindByID(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE kind = $1 AND id = $2
	`
	out, err := scanRecord(r.db.QueryRowContext(ctx, q, string(kind), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

// List returns every record of a kind, newest insert first.
func (r *RecordPostgres) List(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE kind = $1
		ORDER BY seq DESC
	`
	rows, err := r.db.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update writes status, fields and updated_at guarded by the previous updated_at.
func (r *RecordPostgres) Update(ctx context.Context, rec *model.Record, prevUpdatedAt time.Time) (*model.Record, error) {
	fields, err := encodeFields(rec)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE records
		SET status = $1, fields = $2, updated_at = $3
		WHERE kind = $4 AND id = $5 AND updated_at = $6
		RETURNING ` + recordColumns

	out, err := scanRecord(r.db.QueryRowContext(ctx, q,
		rec.Status,
		fields,
		rec.UpdatedAt,
		string(rec.Kind),
		rec.ID,
		prevUpdatedAt,
	))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Nothing matched: tell a concurrent write apart from a vanished row.
	const qExists = `SELECT EXISTS (SELECT 1 FROM records WHERE kind = $1 AND id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, qExists, string(rec.Kind), rec.ID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrConflict
	}
	return nil, model.ErrNotFound
}

// Delete removes a record by kind and ID.
func (r *RecordPostgres) Delete(ctx context.Context, kind model.Kind, id string) error {
	const q = `DELETE FROM records WHERE kind = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, string(kind), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
