// Package audit is the ledger's fact stream. Every mutating operation appends
// one event here instead of relying on ambient pub/sub; callers (tests, the
// query surface, the websocket feed) read the log back.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one recorded ledger fact.
type Event struct {
	ID       string            `json:"id"`
	Fact     string            `json:"fact"`   // e.g. "loan.created"
	Entity   string            `json:"entity"` // entity kind: identity|loan|pool|escrow
	EntityID string            `json:"entity_id"`
	Fields   map[string]string `json:"fields,omitempty"`
	At       time.Time         `json:"at"`
}

// Sink receives events as they are recorded. Implementations must not block.
type Sink interface {
	Publish(Event)
}

// Recorder is what the ledger components write to.
type Recorder interface {
	Record(fact, entity, entityID string, fields map[string]string)
}

// Log is an append-only in-memory event log with optional fan-out sinks.
type Log struct {
	mu     sync.RWMutex
	events []Event
	sinks  []Sink
	now    func() time.Time
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// Attach adds a fan-out sink. Not safe to call concurrently with Record.
func (l *Log) Attach(s Sink) { l.sinks = append(l.sinks, s) }

func (l *Log) Record(fact, entity, entityID string, fields map[string]string) {
	evt := Event{
		ID:       uuid.New().String(),
		Fact:     fact,
		Entity:   entity,
		EntityID: entityID,
		Fields:   fields,
		At:       l.now(),
	}
	l.mu.Lock()
	l.events = append(l.events, evt)
	l.mu.Unlock()
	for _, s := range l.sinks {
		publish(s, evt)
	}
}

// publish shields Record from sink panics: a broken sink must not fail the
// ledger operation that produced the event.
func publish(s Sink, evt Event) {
	defer func() { _ = recover() }()
	s.Publish(evt)
}

// Events returns a snapshot of the log, oldest first.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
