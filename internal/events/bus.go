package events

import (
	"sync"
	"time"
)

// Event is one sequenced entry in the UI feed.
type Event struct {
	Seq       int64          `json:"seq"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Bus is a bounded in-memory event buffer with incremental reads.
type Bus struct {
	mu      sync.RWMutex
	nextSeq int64
	max     int
	events  []Event
}

// NewBus creates a bus capped at max entries to avoid unbounded growth.
func NewBus(max int) *Bus {
	if max <= 0 {
		max = 500
	}
	return &Bus{max: max, events: make([]Event, 0, max)}
}

// Publish appends one event, assigning its sequence and timestamp.
func (b *Bus) Publish(typ string, payload map[string]any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	evt := Event{
		Seq:       b.nextSeq,
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Payload:   payload,
	}
	b.events = append(b.events, evt)
	if len(b.events) > b.max {
		trim := len(b.events) - b.max
		b.events = append([]Event(nil), b.events[trim:]...)
	}
	return evt
}

// Since returns events with sequence strictly greater than seq.
func (b *Bus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, 0, len(b.events))
	for _, evt := range b.events {
		if evt.Seq > seq {
			out = append(out, evt)
		}
	}
	return out
}

// Latest returns the highest assigned sequence.
func (b *Bus) Latest() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nextSeq
}
