package repository

import (
	"context"
	"time"

	"pharmadash/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres) inside this directory.

// RecordRepository defines persistence for records of every kind.
// No business logic here: ids, timestamps and validation are the caller's job.
type RecordRepository interface {
	// Create inserts a record. It returns model.ErrConflict if the id is already taken.
	Create(ctx context.Context, rec *model.Record) (*model.Record, error)

	// FindByID returns a record, or model.ErrNotFound.
	FindByID(ctx context.Context, kind model.Kind, id string) (*model.Record, error)

	// List returns every record of a kind, newest first (most recently created at index 0).
	List(ctx context.Context, kind model.Kind) ([]model.Record, error)

	// Update replaces a stored record if its updated_at still equals prevUpdatedAt.
	// It returns model.ErrNotFound when the record is gone and model.ErrConflict
	// when another writer got there first.
	Update(ctx context.Context, rec *model.Record, prevUpdatedAt time.Time) (*model.Record, error)

	// Delete removes a record, or returns model.ErrNotFound.
	Delete(ctx context.Context, kind model.Kind, id string) error
}
