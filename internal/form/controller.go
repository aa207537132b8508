// Package form drives the create/edit modal lifecycle of a record:
// open, edit fields, validate, submit through the asynchronous store, close.
package form

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"pharmadash/internal/model"
	"pharmadash/internal/service"
)

var (
	ErrBusy   = errors.New("form: submission already in progress")
	ErrClosed = errors.New("form: not open")
)

// State is the modal state of a Controller.
type State int

const (
	Closed State = iota
	OpenCreate
	OpenEdit
	Submitting
)

func (s State) String() string {
	switch s {
	case OpenCreate:
		return "open_create"
	case OpenEdit:
		return "open_edit"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Controller holds the form state for one record kind. It is safe for concurrent use.
type Controller struct {
	kind   model.Kind
	schema *model.Schema
	store  service.AsyncStore
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	opened   State
	values   map[string]any
	errs     map[string]string
	original *model.Record
	version  time.Time
	err      error
}

// New creates a closed controller for kind.
func New(kind model.Kind, store service.AsyncStore, logger *zap.Logger) (*Controller, error) {
	schema, ok := model.SchemaFor(kind)
	if !ok {
		return nil, model.ErrUnknownKind
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		kind:   kind,
		schema: schema,
		store:  store,
		logger: logger.With(zap.String("kind", string(kind))),
		values: map[string]any{},
		errs:   map[string]string{},
	}, nil
}

// Open opens the form. A nil rec starts a creation with schema defaults;
// otherwise the form edits rec, pre-populated with its values.
func (c *Controller) Open(rec *model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrBusy
	}

	c.values = c.schema.Defaults()
	c.errs = map[string]string{}
	c.err = nil
	c.original = nil
	c.version = time.Time{}

	if rec == nil {
		c.state = OpenCreate
		c.opened = OpenCreate
		return nil
	}

	for name, v := range rec.Fields {
		if _, ok := c.schema.Field(name); ok && v != nil {
			c.values[name] = v
		}
	}
	c.values["status"] = rec.Status
	c.original = rec.Clone()
	c.version = rec.UpdatedAt
	c.state = OpenEdit
	c.opened = OpenEdit
	return nil
}

// ExpectVersion makes an edit submission fail with model.ErrConflict unless the stored
// record still has this updated_at. Open sets it to the updated_at of the edited record.
func (c *Controller) ExpectVersion(updatedAt time.Time) {
	c.mu.Lock()
	c.version = updatedAt
	c.mu.Unlock()
}

// SetField sets a form value and clears the error of that field only.
func (c *Controller) SetField(name string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Closed:
		return ErrClosed
	case Submitting:
		return ErrBusy
	}
	c.values[name] = value
	delete(c.errs, name)
	return nil
}

// State returns the current modal state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Values returns a copy of the current form values.
func (c *Controller) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.values)
}

// Errors returns a copy of the per-field validation messages.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.errs)
}

// Err returns the error of the last failed submission, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close discards the form. It has no effect while a submission is in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Submitting {
		c.reset()
	}
}

func (c *Controller) reset() {
	c.state = Closed
	c.opened = Closed
	c.values = map[string]any{}
	c.errs = map[string]string{}
	c.original = nil
	c.version = time.Time{}
	c.err = nil
}

// Submit validates the form and saves it through the store.
//
// Invalid values leave the form open with Errors populated and return a
// *model.ValidationError without calling the store. A store failure leaves the
// form open with Err set. On success the form closes and the saved record is returned.
//
// If ctx ends while the save is in flight Submit returns ctx.Err(); the save
// still completes and the form settles once it does.
func (c *Controller) Submit(ctx context.Context) (*model.Record, error) {
	c.mu.Lock()
	switch c.state {
	case Closed:
		c.mu.Unlock()
		return nil, ErrClosed
	case Submitting:
		c.mu.Unlock()
		return nil, ErrBusy
	}

	if err := c.schema.Validate(c.values); err != nil {
		verr, _ := model.AsValidationError(err)
		c.errs = maps.Clone(verr.Fields)
		c.mu.Unlock()
		return nil, err
	}

	c.errs = map[string]string{}
	c.err = nil
	c.state = Submitting

	var save func() *service.Future[*model.Record]
	if c.opened == OpenEdit {
		id, patch, opts := c.original.ID, c.changes(), service.UpdateOptions{IfUpdatedAt: c.version}
		save = func() *service.Future[*model.Record] { return c.store.UpdateAsync(ctx, c.kind, id, patch, opts) }
	} else {
		fields := maps.Clone(c.values)
		save = func() *service.Future[*model.Record] { return c.store.CreateAsync(ctx, c.kind, fields) }
	}
	c.mu.Unlock()

	f := save()

	select {
	case <-f.Done():
		return c.settle(f)
	case <-ctx.Done():
		go func() {
			<-f.Done()
			_, _ = c.settle(f)
		}()
		return nil, ctx.Err()
	}
}

func (c *Controller) settle(f *service.Future[*model.Record]) (*model.Record, error) {
	rec, err := f.Await(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = c.opened
		c.err = err
		if verr, ok := model.AsValidationError(err); ok {
			c.errs = maps.Clone(verr.Fields)
		}
		c.logger.Warn("form submission failed", zap.String("state", c.opened.String()), zap.Error(err))
		return nil, err
	}

	c.reset()
	return rec, nil
}

// changes returns the values that differ from the edited record.
func (c *Controller) changes() map[string]any {
	patch := map[string]any{}
	for name, v := range c.values {
		var was any
		if name == "status" {
			was = c.original.Status
		} else {
			was = c.original.Fields[name]
		}
		if model.Stringify(v) != model.Stringify(was) {
			patch[name] = v
		}
	}
	return patch
}
