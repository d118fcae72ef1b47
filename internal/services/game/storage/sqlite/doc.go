// Package sqlite persists event streams and snapshots in a SQLite file.
//
// Each batch append runs in one immediate transaction: sequences are
// allocated from event_seq, events are sealed into the hash chain and, when
// a keyring is configured, signed. Reads drop rows whose content no longer
// matches their hash and log the drop.
package sqlite
