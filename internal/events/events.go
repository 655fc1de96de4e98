// Package events provides the single-consumer loop that session and rule
// logic uses to observe connection lifecycle and business events.
//
// Producers publish after committing the corresponding state change; the
// one consumer processes events strictly in submission order, so side
// effects never interleave. The queue is bounded: when it is full the
// oldest unprocessed event is dropped and counted, rather than growing
// memory without limit.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultQueueSize is the queue capacity used when none is given.
const DefaultQueueSize = 256

// Event is implemented by all event kinds carried on the loop.
type Event interface {
	// EventName names the event kind for logging and handler dispatch.
	EventName() string
}

// SessionStarted announces a new development session.
type SessionStarted struct {
	SessionID        uuid.UUID
	WorkingDirectory string
}

// EventName implements Event.
func (SessionStarted) EventName() string { return "session_started" }

// SessionEnded announces a finished session and its final state.
type SessionEnded struct {
	SessionID uuid.UUID
	State     string
}

// EventName implements Event.
func (SessionEnded) EventName() string { return "session_ended" }

// RuleApplied announces the outcome of one rule application.
type RuleApplied struct {
	RuleID    uuid.UUID
	SessionID uuid.UUID
	Success   bool
	Message   string
}

// EventName implements Event.
func (RuleApplied) EventName() string { return "rule_applied" }

// ErrorOccurred carries an error some component chose to surface.
type ErrorOccurred struct {
	Err     error
	Context string
}

// EventName implements Event.
func (ErrorOccurred) EventName() string { return "error_occurred" }

// CacheUpdated carries the identifiers that changed in the rule cache.
type CacheUpdated struct {
	UpdatedRules []string
}

// EventName implements Event.
func (CacheUpdated) EventName() string { return "cache_updated" }

// TelemetryCollected carries a flat string-keyed metrics mapping.
type TelemetryCollected struct {
	Metrics map[string]string
}

// EventName implements Event.
func (TelemetryCollected) EventName() string { return "telemetry_collected" }

// Handler processes one event. Handlers run on the consumer goroutine,
// one event at a time, in submission order.
type Handler func(Event)

// Loop is a bounded, single-consumer event queue.
type Loop struct {
	log     *slog.Logger
	handler Handler

	mu     sync.Mutex
	queue  chan Event
	closed bool

	startOnce sync.Once
	wg        sync.WaitGroup

	dropped atomic.Uint64
}

// NewLoop creates an event loop delivering to handler. A size of 0
// selects DefaultQueueSize.
func NewLoop(log *slog.Logger, size int, handler Handler) *Loop {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if size <= 0 {
		size = DefaultQueueSize
	}

	return &Loop{
		log:     log.With("component", "event_loop"),
		handler: handler,
		queue:   make(chan Event, size),
	}
}

// Publish enqueues an event. When the queue is full the oldest
// unprocessed event is dropped to make room and the dropped-event
// counter is incremented. Publishing after Close is a silent no-op.
func (l *Loop) Publish(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	for {
		select {
		case l.queue <- ev:
			return
		default:
		}

		select {
		case old := <-l.queue:
			l.dropped.Add(1)
			l.log.Warn("Event queue full, dropping oldest", "dropped_event", old.EventName())
		default:
		}
	}
}

// Dropped returns the number of events discarded because the queue was
// full.
func (l *Loop) Dropped() uint64 {
	return l.dropped.Load()
}

// Start launches the consumer goroutine. There is exactly one active
// consumer per loop: calling Start again is a no-op, not an error.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		l.wg.Add(1)

		go l.run()

		l.log.Debug("Event loop started")
	})
}

func (l *Loop) run() {
	defer l.wg.Done()

	for ev := range l.queue {
		l.log.Debug("Processing event", "event", ev.EventName())

		if l.handler != nil {
			l.handler(ev)
		}
	}
}

// Close stops accepting events and waits for the consumer to drain the
// queue. Safe to call multiple times.
func (l *Loop) Close() {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()

		return
	}

	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	l.Start() // ensure a consumer exists to drain the queue
	l.wg.Wait()
}
