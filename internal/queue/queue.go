// Package queue serializes permission requests so that exactly one is in
// front of the human at a time.
package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// WithdrawnMessage is the decision message written to a ticket whose caller
// went away before a human acted on it. Nobody reads it; it only keeps every
// ticket resolved exactly once.
const WithdrawnMessage = "Permission request withdrawn"

// State of the dispatch register
type State int

const (
	Idle State = iota
	Presenting
)

func (s State) String() string {
	if s == Presenting {
		return "presenting"
	}
	return "idle"
}

// Presenter is the human-facing surface. Calls are made while the queue is
// locked, so implementations must not call back into the Queue from inside
// Display or Dismiss.
type Presenter interface {
	Display(t *Ticket, depth int)
	Dismiss()
}

// DepthNotifier is implemented by presenters that show a live backlog count
type DepthNotifier interface {
	QueueChanged(depth int)
}

// Observer receives lifecycle events, e.g. for metrics
type Observer interface {
	Admitted(t *Ticket, depth int)
	Presented(t *Ticket, depth int)
	Decided(t *Ticket, d types.Decision)
	Retracted(t *Ticket)
}

// Ticket is a queued request plus its single-use completion handle
type Ticket struct {
	ID          string
	Request     types.PermissionRequest
	EnqueuedAt  time.Time
	PresentedAt time.Time

	decision chan types.Decision
}

// Decision yields exactly one value and is then closed
func (t *Ticket) Decision() <-chan types.Decision {
	return t.decision
}

func (t *Ticket) complete(d types.Decision) {
	t.decision <- d
	close(t.decision)
}

// Option configures a Queue
type Option func(*Queue)

// WithLogger sets the logger used for transition logs
func WithLogger(logger zerolog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger.With().Str("component", "queue").Logger()
	}
}

// WithObserver registers an observer for lifecycle events
func WithObserver(o Observer) Option {
	return func(q *Queue) {
		q.observer = o
	}
}

// Queue owns the FIFO of pending tickets and the current register
type Queue struct {
	mu      sync.Mutex
	pending []*Ticket
	current *Ticket

	presenter Presenter
	observer  Observer
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates an idle queue. presenter may be nil.
func New(presenter Presenter, opts ...Option) *Queue {
	q := &Queue{
		presenter: presenter,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue admits a well-formed request. If nothing is being presented the
// request is displayed immediately, otherwise it waits its turn.
func (q *Queue) Enqueue(req types.PermissionRequest) *Ticket {
	t := &Ticket{
		ID:         uuid.NewString(),
		Request:    req,
		EnqueuedAt: q.now(),
		decision:   make(chan types.Decision, 1),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		if q.observer != nil {
			q.observer.Admitted(t, 0)
		}
		q.present(t)
	} else {
		q.pending = append(q.pending, t)
		if q.observer != nil {
			q.observer.Admitted(t, len(q.pending))
		}
		q.notifyDepth()
	}

	q.logger.Info().
		Str("request_id", t.ID).
		Str("tool_name", req.ToolName).
		Int("queue_depth", len(q.pending)).
		Msg("Permission request admitted")

	return t
}

// Resolve hands d to the caller of the current ticket and moves on to the
// next pending ticket. It returns false, and changes nothing, when idle.
func (q *Queue) Resolve(d types.Decision) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		q.logger.Debug().Str("behavior", d.Behavior).Msg("Resolve called while idle")
		return false
	}
	q.resolveCurrent(d)
	return true
}

// ResolveTicket resolves only if id is the ticket currently presented. Stale
// controls (an old Slack button, a late shortcut) cannot resolve a newer
// request this way.
func (q *Queue) ResolveTicket(id string, d types.Decision) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil || q.current.ID != id {
		q.logger.Debug().Str("request_id", id).Msg("Ignoring decision for a ticket that is not current")
		return false
	}
	q.resolveCurrent(d)
	return true
}

// Retract withdraws a ticket whose caller disconnected. A pending ticket is
// removed from the FIFO; the current ticket is resolved with a withdrawal
// and the queue advances. Returns false if the ticket was already resolved.
func (q *Queue) Retract(t *Ticket) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == t {
		q.logger.Info().Str("request_id", t.ID).Msg("Current permission request withdrawn by caller")
		if q.observer != nil {
			q.observer.Retracted(t)
		}
		q.current = nil
		t.complete(types.Deny(WithdrawnMessage))
		q.advance()
		return true
	}

	for i, p := range q.pending {
		if p != t {
			continue
		}
		q.pending = append(q.pending[:i], q.pending[i+1:]...)
		q.logger.Info().
			Str("request_id", t.ID).
			Int("queue_depth", len(q.pending)).
			Msg("Pending permission request withdrawn by caller")
		if q.observer != nil {
			q.observer.Retracted(t)
		}
		t.complete(types.Deny(WithdrawnMessage))
		q.notifyDepth()
		return true
	}
	return false
}

// Depth returns the number of pending tickets, excluding the current one
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Current returns the ticket being presented, if any
func (q *Queue) Current() (*Ticket, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current, q.current != nil
}

// State reports whether a ticket is being presented
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil {
		return Presenting
	}
	return Idle
}

func (q *Queue) resolveCurrent(d types.Decision) {
	t := q.current
	q.current = nil
	t.complete(d)

	q.logger.Info().
		Str("request_id", t.ID).
		Str("tool_name", t.Request.ToolName).
		Str("behavior", d.Behavior).
		Dur("waited", q.now().Sub(t.EnqueuedAt)).
		Msg("Permission request resolved")

	if q.observer != nil {
		q.observer.Decided(t, d)
	}
	q.advance()
}

// advance presents the head of the FIFO, or dismisses the presenter when
// there is nothing left. Must be called with mu held and current empty.
func (q *Queue) advance() {
	if len(q.pending) == 0 {
		q.logger.Debug().Msg("Queue drained")
		if q.presenter != nil {
			q.presenter.Dismiss()
		}
		return
	}

	next := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	q.present(next)
}

func (q *Queue) present(t *Ticket) {
	q.current = t
	t.PresentedAt = q.now()

	q.logger.Debug().
		Str("request_id", t.ID).
		Int("queue_depth", len(q.pending)).
		Msg("Presenting permission request")

	if q.observer != nil {
		q.observer.Presented(t, len(q.pending))
	}
	if q.presenter != nil {
		q.presenter.Display(t, len(q.pending))
	}
}

func (q *Queue) notifyDepth() {
	if n, ok := q.presenter.(DepthNotifier); ok && q.current != nil {
		n.QueueChanged(len(q.pending))
	}
}
