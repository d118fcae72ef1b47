// Package command defines the canonical command envelope and contract used across
// the write path.
//
// Commands express player intent. They are normalized and structurally
// validated here, before any decider sees them, so game rules are only ever
// evaluated against well-formed input.
package command
