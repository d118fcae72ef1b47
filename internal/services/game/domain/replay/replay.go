// Package replay reconstructs a stream's state from its latest snapshot and
// the events after it.
//
// A snapshot only shortens the fold; Reconstruct returns the same state with
// or without one. Snapshots with a different schema version are ignored.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/checkpoint"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/journal"
)

var (
	// ErrLogRequired indicates a missing event log.
	ErrLogRequired = errors.New("event log is required")
	// ErrStreamIDRequired indicates a missing stream id.
	ErrStreamIDRequired = errors.New("stream id is required")
)

// Loader folds a stream's events into game state.
type Loader struct {
	Log       journal.Log
	Snapshots checkpoint.Store
	Policy    checkpoint.Policy
	Logger    *log.Logger
	Now       func() time.Time
}

// Result is a reconstructed state and where it came from.
type Result struct {
	State game.State
	// Seq is the last event folded into State.
	Seq uint64
	// SnapshotSeq is the sequence of the snapshot used, or zero.
	SnapshotSeq  uint64
	FromSnapshot bool
	// Saved reports whether reconstruction stored a new snapshot.
	Saved bool
}

func (l Loader) logf(format string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

// Reconstruct loads the stream's state. Events whose payload cannot be
// folded are logged and skipped.
func (l Loader) Reconstruct(ctx context.Context, streamID string) (Result, error) {
	if l.Log == nil {
		return Result{}, ErrLogRequired
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return Result{}, ErrStreamIDRequired
	}

	result := Result{State: game.Initial()}
	if snap, ok := l.snapshot(ctx, streamID); ok {
		result.State = snap.State
		result.Seq = snap.Seq
		result.SnapshotSeq = snap.Seq
		result.FromSnapshot = true
	}

	events, err := l.Log.ReadAfter(ctx, streamID, result.Seq)
	if err != nil {
		return Result{}, fmt.Errorf("read stream %s after %d: %w", streamID, result.Seq, err)
	}
	for _, evt := range events {
		next, err := game.Fold(result.State, evt)
		if err != nil {
			l.logf("replay: skip %s seq %d: %v", streamID, evt.Seq, err)
		} else {
			result.State = next
		}
		result.Seq = evt.Seq
	}

	if l.Snapshots != nil && l.Policy.Due(result.SnapshotSeq, result.Seq) {
		if err := l.save(ctx, streamID, result.State, result.Seq); err != nil {
			l.logf("replay: save snapshot %s seq %d: %v", streamID, result.Seq, err)
		} else {
			result.Saved = true
		}
	}
	return result, nil
}

// Save stores a snapshot of state at seq when the policy says one is due.
// It reports whether a snapshot was written.
func (l Loader) Save(ctx context.Context, streamID string, state game.State, lastSnapshotSeq, seq uint64) bool {
	if l.Snapshots == nil || !l.Policy.Due(lastSnapshotSeq, seq) {
		return false
	}
	if err := l.save(ctx, streamID, state, seq); err != nil {
		l.logf("replay: save snapshot %s seq %d: %v", streamID, seq, err)
		return false
	}
	return true
}

func (l Loader) save(ctx context.Context, streamID string, state game.State, seq uint64) error {
	now := l.Now
	if now == nil {
		now = time.Now
	}
	return l.Snapshots.SaveSnapshot(ctx, checkpoint.Snapshot{
		StreamID:      streamID,
		Seq:           seq,
		SchemaVersion: game.SchemaVersion,
		State:         state,
		CreatedAt:     now().UTC(),
	})
}

func (l Loader) snapshot(ctx context.Context, streamID string) (checkpoint.Snapshot, bool) {
	if l.Snapshots == nil {
		return checkpoint.Snapshot{}, false
	}
	snap, err := l.Snapshots.LoadSnapshot(ctx, streamID)
	if err != nil {
		if !errors.Is(err, checkpoint.ErrSnapshotNotFound) {
			l.logf("replay: load snapshot %s: %v", streamID, err)
		}
		return checkpoint.Snapshot{}, false
	}
	if snap.SchemaVersion != game.SchemaVersion {
		l.logf("replay: ignore snapshot %s seq %d: schema version %d, want %d",
			streamID, snap.Seq, snap.SchemaVersion, game.SchemaVersion)
		return checkpoint.Snapshot{}, false
	}
	return snap, true
}
