// Package engine executes commands against a stream: it reconstructs state,
// decides, appends the events, folds them and snapshots when due.
//
// Commands on one stream are serialized; different streams run
// independently.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/checkpoint"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/journal"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/replay"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/shawndeggans/space-fortress/internal/services/game/domain/engine"

var (
	// ErrDeciderRequired indicates a missing decider.
	ErrDeciderRequired = errors.New("decider is required")
	// ErrLogRequired indicates a missing event log.
	ErrLogRequired = errors.New("event log is required")
)

// Decider turns a command into events. *decider.Decider satisfies it.
type Decider interface {
	Decide(state game.State, cmd command.Command) ([]event.Event, error)
}

// Config wires an Engine.
type Config struct {
	Decider   Decider
	Log       journal.Log
	Snapshots checkpoint.Store
	Policy    checkpoint.Policy
	Logger    *log.Logger
	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
	Now    func() time.Time
}

// Engine is the command handler around the pure core.
type Engine struct {
	decider Decider
	log     journal.Log
	loader  replay.Loader
	tracer  trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Result is the outcome of one accepted command.
type Result struct {
	// Events are the stored events, with sequence and integrity fields.
	Events []event.Event
	State  game.State
	Seq    uint64
	// Snapshotted reports whether a snapshot was written while executing.
	Snapshotted bool
}

// New builds an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Decider == nil {
		return nil, ErrDeciderRequired
	}
	if cfg.Log == nil {
		return nil, ErrLogRequired
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Engine{
		decider: cfg.Decider,
		log:     cfg.Log,
		loader: replay.Loader{
			Log:       cfg.Log,
			Snapshots: cfg.Snapshots,
			Policy:    cfg.Policy,
			Logger:    cfg.Logger,
			Now:       cfg.Now,
		},
		tracer: tracer,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// lock serializes commands per stream. Entries are never evicted; a process
// holds one per save slot it has touched.
func (e *Engine) lock(streamID string) func() {
	e.mu.Lock()
	l, ok := e.locks[streamID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[streamID] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Execute runs one command. A rejected command returns the current state
// and the decider's error; nothing is appended.
func (e *Engine) Execute(ctx context.Context, cmd command.Command) (result Result, err error) {
	ctx, span := e.tracer.Start(ctx, "engine.execute", trace.WithAttributes(
		attribute.String("fortress.stream_id", cmd.StreamID),
		attribute.String("fortress.command_type", string(cmd.Type)),
	))
	defer func() {
		span.SetAttributes(attribute.Int("fortress.event_count", len(result.Events)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if cmd.StreamID != "" {
		defer e.lock(cmd.StreamID)()
	}

	var loaded replay.Result
	if cmd.StreamID != "" {
		loaded, err = e.loader.Reconstruct(ctx, cmd.StreamID)
		if err != nil {
			return Result{}, fmt.Errorf("load stream %s: %w", cmd.StreamID, err)
		}
	} else {
		loaded.State = game.Initial()
	}
	result = Result{State: loaded.State, Seq: loaded.Seq, Snapshotted: loaded.Saved}

	events, err := e.decider.Decide(loaded.State, cmd)
	if err != nil {
		return result, err
	}
	stored, err := e.log.AppendBatch(ctx, cmd.StreamID, events)
	if err != nil {
		return result, fmt.Errorf("append %s: %w", cmd.Type, err)
	}
	state, err := game.FoldAll(loaded.State, stored)
	if err != nil {
		return result, fmt.Errorf("fold %s: %w", cmd.Type, err)
	}

	result.Events = stored
	result.State = state
	result.Seq = stored[len(stored)-1].Seq

	lastSnapshot := loaded.SnapshotSeq
	if loaded.Saved {
		lastSnapshot = loaded.Seq
	}
	if e.loader.Save(ctx, cmd.StreamID, state, lastSnapshot, result.Seq) {
		result.Snapshotted = true
	}
	return result, nil
}

// State reconstructs the current state of a stream.
func (e *Engine) State(ctx context.Context, streamID string) (game.State, uint64, error) {
	defer e.lock(streamID)()
	loaded, err := e.loader.Reconstruct(ctx, streamID)
	if err != nil {
		return game.State{}, 0, err
	}
	return loaded.State, loaded.Seq, nil
}
