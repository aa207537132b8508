package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pharmadash/internal/model"
	"pharmadash/internal/query"
	"pharmadash/internal/repository"
)

var (
	ErrIDRequired  = errors.New("id is required")
	ErrNoSelection = errors.New("no record selected")
)

// idAttempts bounds id regeneration when a freshly generated id is already taken.
const idAttempts = 3

// UpdateOptions tune a single Update call.
type UpdateOptions struct {
	// IfUpdatedAt, when set, rejects the update with model.ErrConflict
	// unless the stored record still carries this updated_at.
	IfUpdatedAt time.Time
}

// RecordService is the record store: the ordered collection of each kind plus its detail selection.
type RecordService interface {
	// List returns the collection of a kind, newest first.
	List(ctx context.Context, kind model.Kind) ([]model.Record, error)

	// Query runs the query pipeline over the current collection of a kind.
	Query(ctx context.Context, kind model.Kind, q query.Query) (*query.Result, error)

	// Get returns a single record.
	Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error)

	// Create validates fields, assigns id and timestamps and prepends the record.
	Create(ctx context.Context, kind model.Kind, fields map[string]any) (*model.Record, error)

	// Update merges patch into an existing record. The "status" key sets the record status.
	Update(ctx context.Context, kind model.Kind, id string, patch map[string]any, opts UpdateOptions) (*model.Record, error)

	// Delete removes a record and clears the selection if it pointed at it.
	Delete(ctx context.Context, kind model.Kind, id string) error

	// Select marks an existing record as the detail selection of its kind.
	Select(ctx context.Context, kind model.Kind, id string) (*model.Record, error)

	// Selection returns the selected record of a kind or ErrNoSelection.
	Selection(ctx context.Context, kind model.Kind) (*model.Record, error)

	// ClearSelection drops the selection of a kind.
	ClearSelection(kind model.Kind)
}

// recordService is a concrete implementation of RecordService.
type recordService struct {
	repo    repository.RecordRepository
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu        sync.Mutex
	selection map[model.Kind]string
}

// NewRecordService constructs a RecordService. logger and metrics may be nil.
func NewRecordService(repo repository.RecordRepository, logger *zap.Logger, metrics *Metrics) RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recordService{
		repo:      repo,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		selection: make(map[model.Kind]string),
	}
}

// Timestamps are kept at microsecond precision so they survive a Postgres round trip
// and stay usable as version tokens.
func (s *recordService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func schemaOf(kind model.Kind) (*model.Schema, error) {
	schema, ok := model.SchemaFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	return schema, nil
}

func (s *recordService) List(ctx context.Context, kind model.Kind) ([]model.Record, error) {
	if _, err := schemaOf(kind); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, kind)
}

func (s *recordService) Query(ctx context.Context, kind model.Kind, q query.Query) (*query.Result, error) {
	schema, err := schemaOf(kind)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	res := query.Apply(records, q, schema)
	return &res, nil
}

func (s *recordService) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if _, err := schemaOf(kind); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, kind, id)
}

func (s *recordService) Create(ctx context.Context, kind model.Kind, fields map[string]any) (rec *model.Record, err error) {
	defer func() { s.metrics.observe(kind, "create", err) }()

	schema, err := schemaOf(kind)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(fields); err != nil {
		return nil, err
	}

	status, _ := fields["status"].(string)
	now := s.stamp()
	candidate := &model.Record{
		Kind:      kind,
		Status:    schema.NormalizeStatus(status),
		Fields:    schema.Sanitize(fields),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < idAttempts; attempt++ {
		candidate.ID = model.NewID(schema.IDPrefix, now)
		rec, err = s.repo.Create(ctx, candidate)
		if !errors.Is(err, model.ErrConflict) {
			break
		}
	}
	if err != nil {
		s.logger.Error("record create failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, fmt.Errorf("save %s: %w", kind, err)
	}

	s.logger.Info("record created", zap.String("kind", string(kind)), zap.String("id", rec.ID))
	return rec, nil
}

func (s *recordService) Update(ctx context.Context, kind model.Kind, id string, patch map[string]any, opts UpdateOptions) (rec *model.Record, err error) {
	defer func() { s.metrics.observe(kind, "update", err) }()

	if id == "" {
		return nil, ErrIDRequired
	}
	schema, err := schemaOf(kind)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !opts.IfUpdatedAt.IsZero() && !current.UpdatedAt.Equal(opts.IfUpdatedAt) {
		return nil, model.ErrConflict
	}

	merged := current.Clone()
	for name, v := range schema.Sanitize(patch) {
		merged.Fields[name] = v
	}
	if v, ok := patch["status"]; ok {
		merged.Status = schema.NormalizeStatus(model.Stringify(v))
	}

	if err := schema.Validate(merged.Fields); err != nil {
		return nil, err
	}

	merged.UpdatedAt = s.stamp()
	if !merged.UpdatedAt.After(current.UpdatedAt) {
		merged.UpdatedAt = current.UpdatedAt.Add(time.Microsecond)
	}

	rec, err = s.repo.Update(ctx, merged, current.UpdatedAt)
	if err != nil {
		s.logger.Warn("record update failed",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("record updated", zap.String("kind", string(kind)), zap.String("id", id))
	return rec, nil
}

func (s *recordService) Delete(ctx context.Context, kind model.Kind, id string) (err error) {
	defer func() { s.metrics.observe(kind, "delete", err) }()

	if id == "" {
		return ErrIDRequired
	}
	if _, err := schemaOf(kind); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.selection[kind] == id {
		delete(s.selection, kind)
	}
	s.mu.Unlock()

	s.logger.Info("record deleted", zap.String("kind", string(kind)), zap.String("id", id))
	return nil
}

func (s *recordService) Select(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.selection[kind] = id
	s.mu.Unlock()
	return rec, nil
}

func (s *recordService) Selection(ctx context.Context, kind model.Kind) (*model.Record, error) {
	s.mu.Lock()
	id, ok := s.selection[kind]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoSelection
	}

	rec, err := s.repo.FindByID(ctx, kind, id)
	if errors.Is(err, model.ErrNotFound) {
		// Removed behind our back (another instance sharing the database).
		s.mu.Lock()
		if s.selection[kind] == id {
			delete(s.selection, kind)
		}
		s.mu.Unlock()
		return nil, ErrNoSelection
	}
	return rec, err
}

func (s *recordService) ClearSelection(kind model.Kind) {
	s.mu.Lock()
	delete(s.selection, kind)
	s.mu.Unlock()
}
