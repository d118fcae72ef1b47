// Package checkpoint stores state snapshots that shorten replay.
//
// A snapshot is a cache: the state it holds must equal the fold of the
// stream's events up to Seq. Stores keep only the latest snapshot per stream.
package checkpoint

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// ErrSnapshotNotFound indicates the stream has no snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the folded state of a stream after event Seq.
type Snapshot struct {
	StreamID      string
	Seq           uint64
	SchemaVersion int
	State         game.State
	CreatedAt     time.Time
}

// Store persists snapshots.
type Store interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshot(ctx context.Context, streamID string) (Snapshot, error)
}

// Policy decides when a new snapshot is worth taking.
type Policy struct {
	// Every is the number of events since the last snapshot that triggers a
	// new one. Zero or less disables snapshots.
	Every int
}

// Due reports whether a stream at seq should be snapshotted, given the
// sequence of its last snapshot.
func (p Policy) Due(lastSnapshotSeq, seq uint64) bool {
	if p.Every <= 0 || seq <= lastSnapshotSeq {
		return false
	}
	return seq-lastSnapshotSeq >= uint64(p.Every)
}

// Memory keeps snapshots in process.
type Memory struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

// NewMemory returns an empty snapshot store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]Snapshot)}
}

// SaveSnapshot replaces the stream's snapshot unless a newer one is stored.
func (m *Memory) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.snaps[snap.StreamID]; ok && current.Seq > snap.Seq {
		return nil
	}
	snap.State = snap.State.Clone()
	m.snaps[snap.StreamID] = snap
	return nil
}

// LoadSnapshot returns the stream's snapshot.
func (m *Memory) LoadSnapshot(ctx context.Context, streamID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[streamID]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	snap.State = snap.State.Clone()
	return snap, nil
}

// Noop never stores anything, forcing full replay.
type Noop struct{}

func (Noop) SaveSnapshot(context.Context, Snapshot) error { return nil }

func (Noop) LoadSnapshot(context.Context, string) (Snapshot, error) {
	return Snapshot{}, ErrSnapshotNotFound
}
