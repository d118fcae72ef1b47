package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shawndeggans/space-fortress/internal/platform/id"
	"github.com/shawndeggans/space-fortress/internal/services/game/core/filter"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/journal"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const eventColumns = `stream_id, seq, event_id, event_type, ts_millis, payload_json,
	event_hash, prev_hash, chain_hash, signature, signature_key_id`

// ErrSeqConflict indicates a concurrent writer took the sequence first.
var ErrSeqConflict = errors.New("event sequence conflict")

// Append stores one event and returns its id.
func (s *Store) Append(ctx context.Context, streamID string, evt event.Event) (string, error) {
	stored, err := s.AppendBatch(ctx, streamID, []event.Event{evt})
	if err != nil {
		return "", err
	}
	return stored[0].ID, nil
}

// AppendBatch stores events in one transaction with contiguous sequences.
// The first event links to the last stored chain hash of the stream.
func (s *Store) AppendBatch(ctx context.Context, streamID string, events []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, event.ErrStreamIDRequired
	}
	if len(events) == 0 {
		return nil, journal.ErrEmptyBatch
	}

	// Validate everything before opening a transaction.
	validated := make([]event.Event, len(events))
	for i, evt := range events {
		evt.StreamID = streamID
		v, err := s.registry.ValidateForAppend(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if v.Timestamp.IsZero() {
			v.Timestamp = s.now()
		}
		v.Timestamp = v.Timestamp.UTC().Truncate(time.Millisecond)
		if v.ID == "" {
			if v.ID, err = id.NewID(); err != nil {
				return nil, fmt.Errorf("event %d id: %w", i, err)
			}
		}
		validated[i] = v
	}

	// BEGIN IMMEDIATE through _txlock in the DSN.
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO event_seq (stream_id, next_seq) VALUES (?, 1)", streamID,
	); err != nil {
		return nil, fmt.Errorf("init event seq: %w", err)
	}
	var baseSeq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT next_seq FROM event_seq WHERE stream_id = ?", streamID,
	).Scan(&baseSeq); err != nil {
		return nil, fmt.Errorf("get event seq: %w", err)
	}

	prevChainHash := ""
	if baseSeq > 1 {
		if err := tx.QueryRowContext(ctx,
			"SELECT chain_hash FROM events WHERE stream_id = ? AND seq = ?", streamID, baseSeq-1,
		).Scan(&prevChainHash); err != nil {
			return nil, fmt.Errorf("load previous event: %w", err)
		}
	}

	stored := make([]event.Event, len(validated))
	for i, evt := range validated {
		sealed, err := journal.Seal(evt, uint64(baseSeq)+uint64(i), prevChainHash, s.signer())
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			sealed.StreamID, int64(sealed.Seq), sealed.ID, string(sealed.Type), toMillis(sealed.Timestamp),
			sealed.PayloadJSON, sealed.Hash, sealed.PrevHash, sealed.ChainHash, sealed.Signature, sealed.SignatureKeyID,
		); err != nil {
			if isConstraintError(err) {
				return nil, fmt.Errorf("append event %d: %w", i, ErrSeqConflict)
			}
			return nil, fmt.Errorf("append event %d: %w", i, err)
		}
		prevChainHash = sealed.ChainHash
		stored[i] = sealed
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE event_seq SET next_seq = ? WHERE stream_id = ?",
		baseSeq+int64(len(stored)), streamID,
	); err != nil {
		return nil, fmt.Errorf("update event seq: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if isBusyError(err) {
			return nil, fmt.Errorf("commit: %w", ErrSeqConflict)
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stored, nil
}

// ReadAll returns the readable events of a stream in sequence order.
func (s *Store) ReadAll(ctx context.Context, streamID string) ([]event.Event, error) {
	return s.ReadAfter(ctx, streamID, 0)
}

// ReadAfter returns readable events with a sequence above afterSeq.
func (s *Store) ReadAfter(ctx context.Context, streamID string, afterSeq uint64) ([]event.Event, error) {
	return s.ListEventsFiltered(ctx, streamID, afterSeq, "")
}

// ListEventsFiltered returns readable events after afterSeq that match an
// AIP-160 filter over type, seq and ts.
func (s *Store) ListEventsFiltered(ctx context.Context, streamID string, afterSeq uint64, filterStr string) ([]event.Event, error) {
	cond, err := filter.ParseEventFilter(filterStr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	events, err := s.queryEvents(ctx, streamID, afterSeq, cond)
	if err != nil {
		return nil, err
	}
	readable := events[:0]
	for _, evt := range events {
		if err := journal.CheckContent(evt); err != nil {
			s.logger.Printf("sqlite: skip %s: %v", streamID, err)
			continue
		}
		readable = append(readable, evt)
	}
	return readable, nil
}

func (s *Store) queryEvents(ctx context.Context, streamID string, afterSeq uint64, cond filter.SQLCondition) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(streamID) == "" {
		return nil, event.ErrStreamIDRequired
	}

	where := "stream_id = ? AND seq > ?"
	params := []any{streamID, int64(afterSeq)}
	if !cond.Empty() {
		where += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE "+where+" ORDER BY seq ASC", params...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (event.Event, error) {
	var (
		evt       event.Event
		seq       int64
		eventType string
		ts        int64
		payload   []byte
	)
	if err := rows.Scan(&evt.StreamID, &seq, &evt.ID, &eventType, &ts, &payload,
		&evt.Hash, &evt.PrevHash, &evt.ChainHash, &evt.Signature, &evt.SignatureKeyID); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	evt.Seq = uint64(seq)
	evt.Type = event.Type(eventType)
	evt.Timestamp = fromMillis(ts)
	evt.PayloadJSON = payload
	return evt, nil
}

// VerifyIntegrity walks the stream's chain, including rows reads would
// skip, and returns a *journal.IntegrityError for the first break.
// Signatures are checked when the store has a keyring.
func (s *Store) VerifyIntegrity(ctx context.Context, streamID string) error {
	events, err := s.queryEvents(ctx, streamID, 0, filter.SQLCondition{})
	if err != nil {
		return err
	}
	return journal.VerifyChain(streamID, events, s.verifier())
}

// StreamIDs lists the streams with stored events.
func (s *Store) StreamIDs(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT stream_id FROM event_seq ORDER BY stream_id")
	if err != nil {
		return nil, fmt.Errorf("list stream ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var streamID string
		if err := rows.Scan(&streamID); err != nil {
			return nil, fmt.Errorf("scan stream id: %w", err)
		}
		ids = append(ids, streamID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stream ids: %w", err)
	}
	return ids, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func isBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
