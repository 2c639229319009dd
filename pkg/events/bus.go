// Package events provides a small in-process publish/subscribe bus for
// domain events emitted by the monitoring sweeps.
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shiftwatch/shiftwatch/pkg/logger"
)

// Topic identifies a domain event stream.
type Topic string

const (
	TopicLateStart   Topic = "late_start"
	TopicEarlyEnd    Topic = "early_end"
	TopicMissedShift Topic = "missed_shift"
	TopicLongBreak   Topic = "long_break"
	TopicNoBreakEnd  Topic = "no_break_end"
)

// Event is the payload delivered to subscribers. It carries enough
// context (planned/actual timestamps, computed delay) for downstream
// consumers without requiring a store round-trip.
type Event struct {
	Topic      Topic          `json:"topic"`
	EmployeeID string         `json:"employeeId"`
	CompanyID  string         `json:"companyId"`
	ShiftID    string         `json:"shiftId,omitempty"`
	ShiftDate  time.Time      `json:"shiftDate"`
	Severity   int            `json:"severity"`
	Minutes    int            `json:"minutes"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// HandlerFunc receives published events. Handlers run synchronously on
// the publisher's goroutine; long work belongs on a queue, not here.
type HandlerFunc func(Event)

// Bus fans events out to topic subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]HandlerFunc
	log  *slog.Logger
}

// NewBus creates an empty event bus.
func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		subs: make(map[Topic][]HandlerFunc),
		log:  log.With(logger.Scope("events")),
	}
}

// Subscribe registers fn for a topic. There is no unsubscribe; the bus
// lives for the process lifetime alongside its subscribers.
func (b *Bus) Subscribe(topic Topic, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], fn)
}

// Publish delivers the event to all subscribers of its topic.
// A panicking subscriber is logged and does not affect the others.
func (b *Bus) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.subs[ev.Topic]))
	copy(handlers, b.subs[ev.Topic])
	b.mu.RUnlock()

	for _, fn := range handlers {
		b.deliver(fn, ev)
	}
}

func (b *Bus) deliver(fn HandlerFunc, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked",
				slog.String("topic", string(ev.Topic)),
				slog.Any("panic", r))
		}
	}()
	fn(ev)
}

// SubscriberCount returns the number of subscribers for a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
