// Package recompute tracks recompute requests per reference profile.
//
// Each reference moves Idle -> Calculating -> Idle. A request that arrives
// while a pass is in flight is ignored, not queued. Every accepted request
// gets a token; only the pass holding the current token may publish, so a
// cancelled or superseded pass is discarded instead of overwriting newer
// results.
package recompute

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/google/uuid"
)

// State of a reference's recompute cycle.
type State string

// Recompute states.
const (
	StateIdle        State = "idle"
	StateCalculating State = "calculating"
)

// Sentinel errors.
var (
	ErrInProgress = errors.New("recompute already in progress")
	ErrStale      = errors.New("stale recompute token")
	ErrCancelled  = errors.New("recompute cancelled")
)

// Ticket identifies one accepted recompute request.
type Ticket struct {
	ReferenceID string
	Token       string
	IssuedAt    time.Time
	// Done closes when the pass is cancelled or superseded.
	Done <-chan struct{}
}

// View is a point-in-time copy of a reference's recompute state.
type View struct {
	ReferenceID string
	State       State
	Token       string
	Generation  uint64
	Results     []model.MatchResult
	PublishedAt time.Time
	LastError   string
}

type entry struct {
	state       State
	token       string
	cancel      context.CancelFunc
	generation  uint64
	results     []model.MatchResult
	publishedAt time.Time
	lastErr     string
}

// Tracker holds the recompute state of every reference profile.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	newID   func() string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithTokenSource overrides token generation.
func WithTokenSource(newID func() string) Option {
	return func(t *Tracker) {
		if newID != nil {
			t.newID = newID
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		entries: make(map[string]*entry),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) entryFor(referenceID string) *entry {
	e, ok := t.entries[referenceID]
	if !ok {
		e = &entry{state: StateIdle}
		t.entries[referenceID] = e
	}
	return e
}

// Begin moves referenceID to Calculating and issues a ticket. It returns
// ErrInProgress and leaves the running pass alone when one is in flight.
func (t *Tracker) Begin(referenceID string) (Ticket, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entryFor(referenceID)
	if e.state == StateCalculating {
		return Ticket{}, ErrInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.state = StateCalculating
	e.token = t.newID()
	e.cancel = cancel

	return Ticket{
		ReferenceID: referenceID,
		Token:       e.token,
		IssuedAt:    t.now(),
		Done:        ctx.Done(),
	}, nil
}

// current reports whether token is the live token of a calculating entry.
// Must be called with t.mu held.
func (t *Tracker) current(referenceID, token string) (*entry, bool) {
	e, ok := t.entries[referenceID]
	if !ok || e.state != StateCalculating || e.token != token {
		return nil, false
	}
	return e, true
}

// finish returns e to Idle and releases its cancel func.
// Must be called with t.mu held.
func finish(e *entry) {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = StateIdle
}

// Publish atomically replaces the published results of referenceID when
// token is still current, and moves the reference back to Idle. A stale
// token returns ErrStale and changes nothing.
func (t *Tracker) Publish(referenceID, token string, results []model.MatchResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.current(referenceID, token)
	if !ok {
		return ErrStale
	}
	e.results = results
	e.generation++
	e.publishedAt = t.now()
	e.lastErr = ""
	finish(e)
	return nil
}

// Fail records err for a current pass and returns the reference to Idle.
// Previously published results stay in place.
func (t *Tracker) Fail(referenceID, token string, err error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.current(referenceID, token)
	if !ok {
		return ErrStale
	}
	if err != nil {
		e.lastErr = err.Error()
	}
	finish(e)
	return nil
}

// Cancel aborts the in-flight pass of referenceID, if any. The pass's Done
// channel closes and its token becomes stale. Reports whether a pass was
// cancelled.
func (t *Tracker) Cancel(referenceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[referenceID]
	if !ok || e.state != StateCalculating {
		return false
	}
	e.token = ""
	e.lastErr = ErrCancelled.Error()
	finish(e)
	return true
}

// CancelAll aborts every in-flight pass. Used on shutdown.
func (t *Tracker) CancelAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, e := range t.entries {
		if e.state == StateCalculating {
			e.token = ""
			finish(e)
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the state of referenceID. Unknown references
// report Idle with no results.
func (t *Tracker) Snapshot(referenceID string) View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := View{ReferenceID: referenceID, State: StateIdle, Results: []model.MatchResult{}}
	e, ok := t.entries[referenceID]
	if !ok {
		return v
	}
	v.State = e.state
	v.Token = e.token
	v.Generation = e.generation
	v.PublishedAt = e.publishedAt
	v.LastError = e.lastErr
	if e.results != nil {
		v.Results = append(make([]model.MatchResult, 0, len(e.results)), e.results...)
	}
	return v
}

// InFlight returns the number of references currently calculating.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, e := range t.entries {
		if e.state == StateCalculating {
			n++
		}
	}
	return n
}
