package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrSuperseded = errors.New("search: superseded by a newer query")

type session struct {
	seq        uint64
	superseded chan struct{}
	lastSeen   time.Time
	inFlight   int
}

// Debouncer serializes queries per session: only the most recent query of a
// session is answered, and only after it has been quiet for the debounce window.
type Debouncer struct {
	window time.Duration
	idle   time.Duration
	now    func() time.Time

	mu        sync.Mutex
	sessions  map[string]*session
	lastPrune time.Time
}

// NewDebouncer creates a Debouncer. Sessions unused for idle are dropped.
func NewDebouncer(window, idle time.Duration) *Debouncer {
	return &Debouncer{
		window:   window,
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// ticket registers a new query for id and supersedes the previous one.
func (d *Debouncer) ticket(id string) (uint64, <-chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.pruneLocked(now)

	s, ok := d.sessions[id]
	if !ok {
		s = &session{}
		d.sessions[strings.Clone(id)] = s
	}
	if s.superseded != nil {
		close(s.superseded)
	}
	s.seq++
	s.superseded = make(chan struct{})
	s.lastSeen = now
	s.inFlight++
	return s.seq, s.superseded
}

func (d *Debouncer) latest(id string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[id]
	return ok && s.seq == seq
}

func (d *Debouncer) release(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[id]; ok {
		s.inFlight--
		s.lastSeen = d.now()
	}
}

func (d *Debouncer) pruneLocked(now time.Time) {
	if d.idle <= 0 || now.Sub(d.lastPrune) < d.idle {
		return
	}
	d.lastPrune = now
	for id, s := range d.sessions {
		if s.inFlight == 0 && now.Sub(s.lastSeen) >= d.idle {
			delete(d.sessions, id)
		}
	}
}

// Sessions returns the number of tracked sessions.
func (d *Debouncer) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Debounce runs fn for sessionID once the debounce window has passed without a
// newer query from the same session. A query overtaken by a newer one, while
// waiting or while running, returns ErrSuperseded and its result is discarded.
// An empty sessionID runs fn immediately.
func Debounce[T any](ctx context.Context, d *Debouncer, sessionID string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if sessionID == "" || d == nil {
		return fn(ctx)
	}

	seq, superseded := d.ticket(sessionID)
	defer d.release(sessionID)

	if d.window > 0 {
		timer := time.NewTimer(d.window)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-superseded:
			return zero, ErrSuperseded
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	out, err := fn(ctx)
	if !d.latest(sessionID, seq) {
		return zero, ErrSuperseded
	}
	return out, err
}
