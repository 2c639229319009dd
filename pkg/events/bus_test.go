package events

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(slog.Default())

	var got []Event
	bus.Subscribe(TopicLateStart, func(ev Event) {
		got = append(got, ev)
	})

	bus.Publish(Event{
		Topic:      TopicLateStart,
		EmployeeID: "emp-1",
		Severity:   1,
		Minutes:    20,
	})

	assert.Len(t, got, 1)
	assert.Equal(t, "emp-1", got[0].EmployeeID)
	assert.Equal(t, 20, got[0].Minutes)
	assert.False(t, got[0].OccurredAt.IsZero(), "OccurredAt should be stamped")
}

func TestBus_TopicIsolation(t *testing.T) {
	bus := NewBus(slog.Default())

	lateCount := 0
	missedCount := 0
	bus.Subscribe(TopicLateStart, func(Event) { lateCount++ })
	bus.Subscribe(TopicMissedShift, func(Event) { missedCount++ })

	bus.Publish(Event{Topic: TopicLateStart})
	bus.Publish(Event{Topic: TopicLateStart})
	bus.Publish(Event{Topic: TopicMissedShift})

	assert.Equal(t, 2, lateCount)
	assert.Equal(t, 1, missedCount)
}

func TestBus_MultipleSubscribersAllReceive(t *testing.T) {
	bus := NewBus(slog.Default())

	a, b := 0, 0
	bus.Subscribe(TopicEarlyEnd, func(Event) { a++ })
	bus.Subscribe(TopicEarlyEnd, func(Event) { b++ })

	bus.Publish(Event{Topic: TopicEarlyEnd})

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 2, bus.SubscriberCount(TopicEarlyEnd))
}

func TestBus_PanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(slog.Default())

	delivered := false
	bus.Subscribe(TopicLongBreak, func(Event) { panic("bad subscriber") })
	bus.Subscribe(TopicLongBreak, func(Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(Event{Topic: TopicLongBreak})
	})
	assert.True(t, delivered, "second subscriber must still receive the event")
}

func TestBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus(slog.Default())
	assert.NotPanics(t, func() {
		bus.Publish(Event{Topic: TopicNoBreakEnd, OccurredAt: time.Now()})
	})
}
