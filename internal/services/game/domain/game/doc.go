// Package game owns the root game state and the fold that derives it.
//
// State is never written directly. Every field is the result of folding the
// stream's events, in order, through Fold; Rebuild does this from the initial
// state. Slice packages (campaign, narrative, alliance, mediation, fleet,
// deployment, consequence) decide which events to emit and depend on this
// package for state, payload, and error types.
//
// Snapshots are a cache of a folded State tagged with SchemaVersion. Bump the
// version whenever the shape or meaning of State changes so stale snapshots
// are ignored and the stream is replayed from the start.
package game
