// Package fortress parses fortress command flags and drives the game engine
// from newline-delimited JSON commands.
package fortress

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	entrypoint "github.com/shawndeggans/space-fortress/internal/platform/cmd"
	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/platform/errors/i18n"
	"github.com/shawndeggans/space-fortress/internal/platform/id"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/checkpoint"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/decider"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/engine"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/journal"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/projection"
	screens "github.com/shawndeggans/space-fortress/internal/services/game/i18n"
	"github.com/shawndeggans/space-fortress/internal/services/game/storage/integrity"
	"github.com/shawndeggans/space-fortress/internal/services/game/storage/sqlite"
)

const maxLineBytes = 1 << 20

var (
	errDatabaseRequired = errors.New("-timeline and -verify need a database path")
	errStreamRequired   = errors.New("-timeline and -verify need a stream id")
)

// Config holds fortress command configuration.
type Config struct {
	DBPath        string `env:"FORTRESS_DB_PATH"`
	ContentPath   string `env:"FORTRESS_CONTENT_PATH"`
	StreamID      string `env:"FORTRESS_STREAM_ID"`
	SnapshotEvery int    `env:"FORTRESS_SNAPSHOT_EVERY" envDefault:"25"`
	Locale        string `env:"FORTRESS_LOCALE"         envDefault:"en-US"`

	// Timeline is an event filter; when set the stored events matching it
	// are printed instead of reading commands.
	Timeline string
	Verify   bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite save file (empty keeps the game in memory)")
	fs.StringVar(&cfg.ContentPath, "content", cfg.ContentPath, "yaml content tables (empty uses the built-in tables)")
	fs.StringVar(&cfg.StreamID, "stream", cfg.StreamID, "save slot id (empty starts a new slot)")
	fs.IntVar(&cfg.SnapshotEvery, "snapshot-every", cfg.SnapshotEvery, "events between snapshots (0 disables)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for player messages")
	fs.StringVar(&cfg.Timeline, "timeline", "", `print stored events matching a filter, e.g. 'type = "BATTLE_RESOLVED"'`)
	fs.BoolVar(&cfg.Verify, "verify", false, "verify the save slot's hash chain")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the fortress command with tracing configured.
func Run(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceFortress, func(ctx context.Context) error {
		return run(ctx, cfg, in, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, in io.Reader, out, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "", log.LstdFlags)

	rt, err := open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.close(); err != nil {
			logger.Printf("close store: %v", err)
		}
	}()

	switch {
	case cfg.Verify:
		return rt.verify(ctx, out)
	case cfg.Timeline != "":
		return rt.timeline(ctx, out)
	}
	if rt.streamID == "" {
		streamID, err := id.NewStreamID()
		if err != nil {
			return fmt.Errorf("new stream id: %w", err)
		}
		rt.streamID = streamID
		logger.Printf("new save slot %s", streamID)
	}
	return rt.loop(ctx, in, out)
}

type runtime struct {
	cfg      Config
	streamID string
	engine   *engine.Engine
	store    *sqlite.Store
}

func open(cfg Config, logger *log.Logger) (*runtime, error) {
	streamID := strings.TrimSpace(cfg.StreamID)
	if cfg.Verify || cfg.Timeline != "" {
		if cfg.DBPath == "" {
			return nil, errDatabaseRequired
		}
		if streamID == "" {
			return nil, errStreamRequired
		}
	}

	catalog, err := loadContent(cfg.ContentPath)
	if err != nil {
		return nil, err
	}
	registry, err := game.NewEventRegistry()
	if err != nil {
		return nil, fmt.Errorf("event registry: %w", err)
	}
	keyring, err := integrity.KeyringFromEnv()
	if err != nil {
		return nil, fmt.Errorf("keyring: %w", err)
	}

	rt := &runtime{cfg: cfg, streamID: streamID}
	var (
		eventLog  journal.Log
		snapshots checkpoint.Store
	)
	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath, registry, keyring, sqlite.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		rt.store = store
		eventLog, snapshots = store, store
	} else {
		memory := journal.NewMemory(registry, keyring)
		memory.SetLogger(logger)
		eventLog, snapshots = memory, checkpoint.NewMemory()
	}

	d, err := decider.New(decider.Deps{
		Content:   catalog,
		Opponents: content.NewOpponents(catalog),
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.engine, err = engine.New(engine.Config{
		Decider:   d,
		Log:       eventLog,
		Snapshots: snapshots,
		Policy:    checkpoint.Policy{Every: cfg.SnapshotEvery},
		Logger:    logger,
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func loadContent(path string) (*content.Catalog, error) {
	if path == "" {
		return content.LoadEmbedded()
	}
	return content.LoadFile(path)
}

func (rt *runtime) close() error {
	if rt.store == nil {
		return nil
	}
	return rt.store.Close()
}

// request is one input line.
type request struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// response is one output line per request.
type response struct {
	Stream string       `json:"stream"`
	Seq    uint64       `json:"seq"`
	Events []event.Type `json:"events"`
	Phase  game.Phase   `json:"phase"`
	Screen string       `json:"screen"`
	Title  string       `json:"title"`
	Error  string       `json:"error,omitempty"`
	Code   string       `json:"code,omitempty"`
}

func (rt *runtime) loop(ctx context.Context, in io.Reader, out io.Writer) error {
	if in == nil {
		return nil
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	encoder := json.NewEncoder(out)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		resp, err := rt.execute(ctx, line)
		if err != nil {
			return err
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// execute runs one line. Rejected and malformed commands are reported in the
// response; only storage failures are returned.
func (rt *runtime) execute(ctx context.Context, line string) (response, error) {
	var req request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		state, seq, stateErr := rt.engine.State(ctx, rt.streamID)
		if stateErr != nil {
			return response{}, stateErr
		}
		resp := rt.respond(state, seq, nil)
		resp.Error = fmt.Sprintf("invalid command line: %v", err)
		return resp, nil
	}
	payload := []byte(req.Data)
	if len(payload) == 0 || string(payload) == "null" {
		payload = []byte("{}")
	}

	result, err := rt.engine.Execute(ctx, command.Command{
		StreamID:    rt.streamID,
		Type:        command.Type(req.Type),
		PayloadJSON: payload,
	})
	if err != nil {
		var invalid *decider.InvalidCommandError
		if !errors.As(err, &invalid) {
			return response{}, err
		}
		resp := rt.respond(result.State, result.Seq, nil)
		resp.Error = i18n.Localize(rt.cfg.Locale, err)
		resp.Code = string(apperrors.GetCode(err))
		return resp, nil
	}
	return rt.respond(result.State, result.Seq, result.Events), nil
}

func (rt *runtime) respond(state game.State, seq uint64, events []event.Event) response {
	screen := projection.Screen(state)
	return response{
		Stream: rt.streamID,
		Seq:    seq,
		Events: event.Types(events),
		Phase:  state.Phase,
		Screen: screen,
		Title:  screens.ScreenTitle(rt.cfg.Locale, screen),
	}
}

// timelineEntry is one printed event.
type timelineEntry struct {
	Seq     uint64          `json:"seq"`
	Type    event.Type      `json:"type"`
	At      string          `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

func (rt *runtime) timeline(ctx context.Context, out io.Writer) error {
	events, err := rt.store.ListEventsFiltered(ctx, rt.streamID, 0, rt.cfg.Timeline)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(out)
	for _, evt := range events {
		entry := timelineEntry{
			Seq:     evt.Seq,
			Type:    evt.Type,
			At:      evt.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Payload: json.RawMessage(evt.PayloadJSON),
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	return nil
}

// verifyReport is printed by -verify.
type verifyReport struct {
	Stream   string `json:"stream"`
	Events   int    `json:"events"`
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

// verify prints the chain check. A broken chain is reported, not returned.
func (rt *runtime) verify(ctx context.Context, out io.Writer) error {
	events, err := rt.store.ReadAll(ctx, rt.streamID)
	if err != nil {
		return err
	}
	report := verifyReport{Stream: rt.streamID, Events: len(events), Verified: true}
	if err := rt.store.VerifyIntegrity(ctx, rt.streamID); err != nil {
		var broken *journal.IntegrityError
		if !errors.As(err, &broken) {
			return err
		}
		report.Verified = false
		report.Error = broken.Error()
	}
	return json.NewEncoder(out).Encode(report)
}
