package journal

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/shawndeggans/space-fortress/internal/platform/id"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
)

// Memory is an in-process Log. It backs tests and saves that are not
// written to disk.
type Memory struct {
	mu       sync.Mutex
	streams  map[string][]event.Event
	registry *event.Registry
	signer   Signer
	logger   *log.Logger
}

var _ Log = (*Memory)(nil)

// NewMemory returns an empty log. registry validates event types when set.
func NewMemory(registry *event.Registry, signer Signer) *Memory {
	return &Memory{
		streams:  make(map[string][]event.Event),
		registry: registry,
		signer:   signer,
		logger:   log.Default(),
	}
}

// SetLogger replaces the logger used for skipped events.
func (m *Memory) SetLogger(logger *log.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Append stores one event.
func (m *Memory) Append(ctx context.Context, streamID string, evt event.Event) (string, error) {
	stored, err := m.AppendBatch(ctx, streamID, []event.Event{evt})
	if err != nil {
		return "", err
	}
	return stored[0].ID, nil
}

// AppendBatch stores events with contiguous sequences. Nothing is stored if
// any event fails validation.
func (m *Memory) AppendBatch(ctx context.Context, streamID string, events []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, event.ErrStreamIDRequired
	}
	if len(events) == 0 {
		return nil, ErrEmptyBatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.streams[streamID]
	var seq uint64
	prev := ""
	if len(stream) > 0 {
		seq = stream[len(stream)-1].Seq
		prev = stream[len(stream)-1].ChainHash
	}

	stored := make([]event.Event, 0, len(events))
	for _, evt := range events {
		evt.StreamID = streamID
		normalized, err := m.normalize(evt)
		if err != nil {
			return nil, err
		}
		if normalized.ID == "" {
			if normalized.ID, err = id.NewID(); err != nil {
				return nil, err
			}
		}
		seq++
		sealed, err := Seal(normalized, seq, prev, m.signer)
		if err != nil {
			return nil, err
		}
		prev = sealed.ChainHash
		stored = append(stored, sealed)
	}
	m.streams[streamID] = append(stream, stored...)
	return slices.Clone(stored), nil
}

func (m *Memory) normalize(evt event.Event) (event.Event, error) {
	if m.registry != nil {
		validated, err := m.registry.ValidateForAppend(evt)
		if err != nil {
			return event.Event{}, fmt.Errorf("append %s: %w", evt.Type, err)
		}
		return validated, nil
	}
	if len(evt.PayloadJSON) == 0 {
		evt.PayloadJSON = []byte("{}")
	}
	return evt, nil
}

// ReadAll returns every readable event of the stream.
func (m *Memory) ReadAll(ctx context.Context, streamID string) ([]event.Event, error) {
	return m.ReadAfter(ctx, streamID, 0)
}

// ReadAfter returns readable events after afterSeq.
func (m *Memory) ReadAfter(ctx context.Context, streamID string, afterSeq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []event.Event
	for _, evt := range m.streams[streamID] {
		if evt.Seq <= afterSeq {
			continue
		}
		if err := CheckContent(evt); err != nil {
			m.logger.Printf("journal: skip %s: %v", streamID, err)
			continue
		}
		out = append(out, evt)
	}
	return out, nil
}

// Raw returns the stored events of a stream without content checks.
func (m *Memory) Raw(streamID string) []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.streams[streamID])
}

// VerifyIntegrity checks the stream's hash chain.
func (m *Memory) VerifyIntegrity(ctx context.Context, streamID string, verifier Verifier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return VerifyChain(streamID, m.Raw(streamID), verifier)
}
