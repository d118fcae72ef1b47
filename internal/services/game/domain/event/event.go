package event

import "time"

// Type identifies the event type string.
type Type string

// Event is the canonical envelope for an immutable domain fact.
//
// Deciders populate Type, Timestamp, and PayloadJSON. The journal assigns the
// remaining fields when the event is appended to a stream.
type Event struct {
	StreamID    string
	ID          string
	Seq         uint64
	Type        Type
	Timestamp   time.Time
	PayloadJSON []byte

	// Integrity fields, set by the journal.
	Hash           string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
}

// Types returns the type of each event, in order.
func Types(events []Event) []Type {
	types := make([]Type, len(events))
	for i, evt := range events {
		types[i] = evt.Type
	}
	return types
}
