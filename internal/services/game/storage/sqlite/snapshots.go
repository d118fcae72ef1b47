package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/checkpoint"
)

// SaveSnapshot stores the stream's snapshot unless a newer one exists.
func (s *Store) SaveSnapshot(ctx context.Context, snap checkpoint.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(snap.StreamID) == "" {
		return fmt.Errorf("stream id is required")
	}
	state, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("encode snapshot state: %w", err)
	}
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO snapshots (stream_id, seq, schema_version, state_json, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (stream_id) DO UPDATE SET
    seq = excluded.seq,
    schema_version = excluded.schema_version,
    state_json = excluded.state_json,
    created_at = excluded.created_at
WHERE excluded.seq >= snapshots.seq`,
		snap.StreamID, int64(snap.Seq), snap.SchemaVersion, state, toMillis(createdAt),
	); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stream's snapshot or checkpoint.ErrSnapshotNotFound.
// The schema version is returned as stored; callers decide whether it is
// usable.
func (s *Store) LoadSnapshot(ctx context.Context, streamID string) (checkpoint.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return checkpoint.Snapshot{}, err
	}
	if err := s.ready(); err != nil {
		return checkpoint.Snapshot{}, err
	}
	var (
		seq       int64
		version   int
		state     []byte
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT seq, schema_version, state_json, created_at FROM snapshots WHERE stream_id = ?", streamID,
	).Scan(&seq, &version, &state, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return checkpoint.Snapshot{}, checkpoint.ErrSnapshotNotFound
		}
		return checkpoint.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	snap := checkpoint.Snapshot{
		StreamID:      streamID,
		Seq:           uint64(seq),
		SchemaVersion: version,
		CreatedAt:     fromMillis(createdAt),
	}
	if err := json.Unmarshal(state, &snap.State); err != nil {
		return checkpoint.Snapshot{}, fmt.Errorf("decode snapshot state: %w", err)
	}
	return snap, nil
}
