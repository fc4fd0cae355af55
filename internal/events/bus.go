// Package events carries strip and daemon notifications from producers (the
// accessory, the scheduler, the log level control) to consumers such as the
// WebSocket hub.
package events

import (
	"encoding/json"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"
)

// EventType identifies the kind of event.
type EventType string

const (
	StripTargetChanged EventType = "strip.target_changed"
	StripWhiteChanged  EventType = "strip.white_changed"

	StripAnimationStarted EventType = "strip.animation_started"
	StripAnimationParked  EventType = "strip.animation_parked"
	StripIdentify         EventType = "strip.identify"

	LogLevelChanged EventType = "daemon.log_level_changed"
)

// Event is a single notification. Seq is assigned by the bus on publish and
// increases by one per event, so a consumer can tell when it missed some.
type Event struct {
	Seq       uint64          `json:"seq"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an Event stamped with the current time. Data that cannot
// be marshaled is sent as null.
func NewEvent(t EventType, data any) Event {
	return newEvent(t, data, time.Now())
}

func newEvent(t EventType, data any, now time.Time) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{Type: t, Timestamp: now, Data: raw}
}

// SubscriberFunc receives events on the publisher's goroutine and must not
// block.
type SubscriberFunc func(Event)

type subscription struct {
	id    uint64
	fn    SubscriberFunc
	types []EventType
}

func (s subscription) wants(t EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

// Bus fans events out synchronously. The subscriber list is copied on write,
// so Publish never takes a lock.
type Bus struct {
	clock clock.PassiveClock
	seq   atomic.Uint64

	mu     sync.Mutex
	nextID uint64
	subs   atomic.Pointer[[]subscription]
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock sets the clock used to stamp events built by Emit.
func WithClock(c clock.PassiveClock) Option {
	return func(b *Bus) { b.clock = c }
}

// NewBus creates an event bus with no subscribers.
func NewBus(opts ...Option) *Bus {
	b := &Bus{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(b)
	}
	b.subs.Store(&[]subscription{})
	return b
}

// Subscribe registers fn for the given types, or for every type when none
// are given. The returned function removes the subscription and may be
// called more than once.
func (b *Bus) Subscribe(fn SubscriberFunc, types ...EventType) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	next := append(slices.Clone(*b.subs.Load()), subscription{id: id, fn: fn, types: types})
	b.subs.Store(&next)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		next := slices.DeleteFunc(slices.Clone(*b.subs.Load()), func(s subscription) bool {
			return s.id == id
		})
		b.subs.Store(&next)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	return len(*b.subs.Load())
}

// Publish assigns the next sequence number and delivers e to every matching
// subscriber in subscription order.
func (b *Bus) Publish(e Event) {
	e.Seq = b.seq.Add(1)
	for _, s := range *b.subs.Load() {
		if s.wants(e.Type) {
			s.fn(e)
		}
	}
}

// Emit builds an event and publishes it. It is a no-op on a nil Bus so
// producers can hold an optional bus without checking it.
func (b *Bus) Emit(t EventType, data any) {
	if b == nil {
		return
	}
	b.Publish(newEvent(t, data, b.clock.Now()))
}
