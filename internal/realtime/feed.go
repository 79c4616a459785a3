// Package realtime delivers row-level change notifications from
// PostgreSQL with at-least-once, possibly reordered semantics.
package realtime

import "encoding/json"

// EventType is the kind of row change an event describes.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one row-level change. Row carries the new row (or, for
// DELETE, the old row) as emitted by the database trigger.
type Event struct {
	Type  EventType       `json:"event"`
	Table string          `json:"table"`
	Row   json.RawMessage `json:"row"`
}

// Feed is a push channel of row changes. Delivery is at-least-once and
// may be reordered; consumers must deduplicate by row id. Resyncs fires
// after the underlying connection is re-established, telling consumers
// to discard optimistic state and re-read authoritative counts.
type Feed interface {
	Events() <-chan Event
	Resyncs() <-chan struct{}
	Close()
}
