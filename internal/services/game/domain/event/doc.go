// Package event defines the canonical event envelope and event-type registry used by
// the game write path.
//
// Events are immutable facts emitted by accepted commands. The registry rejects
// unknown types and malformed payloads before the journal assigns sequence and
// integrity fields, and records whether a type changes state on replay or is
// kept for audit and display only.
package event
