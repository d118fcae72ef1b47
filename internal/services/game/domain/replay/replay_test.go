package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/checkpoint"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/decider"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/journal"
)

const streamID = "save_replay"

type step struct {
	cmd     command.Type
	payload string
}

var opening = []step{
	{"START_GAME", `{"player_id":"captain"}`},
	{"ACCEPT_QUEST", `{"quest_id":"quest_salvage_claim"}`},
	{"MAKE_CHOICE", `{"dilemma_id":"dilemma_salvage_1_approach","choice_id":"choice_hail_first"}`},
	{"ACKNOWLEDGE_CHOICE_CONSEQUENCE", `{}`},
	{"MAKE_CHOICE", `{"dilemma_id":"dilemma_salvage_2_discovery","choice_id":"choice_share_manifest"}`},
	{"ACKNOWLEDGE_CHOICE_CONSEQUENCE", `{}`},
	{"MAKE_CHOICE", `{"dilemma_id":"dilemma_salvage_3_confrontation","choice_id":"choice_stand_ground"}`},
	{"ACKNOWLEDGE_CHOICE_CONSEQUENCE", `{}`},
}

// seedLog plays the opening through the decider into a memory log.
func seedLog(t *testing.T) *journal.Memory {
	t.Helper()
	catalog, err := content.LoadEmbedded()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d, err := decider.New(decider.Deps{
		Content:   catalog,
		Opponents: content.NewOpponents(catalog),
		Seeds:     func() (int64, error) { return 3, nil },
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	if err != nil {
		t.Fatalf("decider: %v", err)
	}
	registry, err := game.NewEventRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	mem := journal.NewMemory(registry, nil)

	ctx := context.Background()
	state := game.Initial()
	for _, s := range opening {
		events, err := d.Decide(state, command.Command{StreamID: streamID, Type: s.cmd, PayloadJSON: []byte(s.payload)})
		if err != nil {
			t.Fatalf("%s: %v", s.cmd, err)
		}
		stored, err := mem.AppendBatch(ctx, streamID, events)
		if err != nil {
			t.Fatalf("append %s: %v", s.cmd, err)
		}
		if state, err = game.FoldAll(state, stored); err != nil {
			t.Fatalf("fold %s: %v", s.cmd, err)
		}
	}
	return mem
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestReconstructMatchesFullRebuildAtEverySplit(t *testing.T) {
	ctx := context.Background()
	mem := seedLog(t)
	events, err := mem.ReadAll(ctx, streamID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want, err := game.Rebuild(events)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if want.Phase != game.PhaseCardSelection {
		t.Fatalf("phase = %s, want card_selection", want.Phase)
	}

	logger, _ := quietLogger()
	full, err := Loader{Log: mem, Logger: logger}.Reconstruct(ctx, streamID)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if full.FromSnapshot || full.Seq != uint64(len(events)) {
		t.Fatalf("result = %+v", full)
	}
	if !reflect.DeepEqual(full.State, want) {
		t.Fatal("full replay differs from rebuild")
	}

	for split := 0; split <= len(events); split++ {
		prefix, err := game.Rebuild(events[:split])
		if err != nil {
			t.Fatalf("prefix %d: %v", split, err)
		}
		snaps := checkpoint.NewMemory()
		if err := snaps.SaveSnapshot(ctx, checkpoint.Snapshot{
			StreamID:      streamID,
			Seq:           uint64(split),
			SchemaVersion: game.SchemaVersion,
			State:         prefix,
		}); err != nil {
			t.Fatalf("save %d: %v", split, err)
		}
		got, err := Loader{Log: mem, Snapshots: snaps, Logger: logger}.Reconstruct(ctx, streamID)
		if err != nil {
			t.Fatalf("reconstruct at %d: %v", split, err)
		}
		if !got.FromSnapshot || got.SnapshotSeq != uint64(split) {
			t.Fatalf("split %d: result = %+v", split, got)
		}
		if !reflect.DeepEqual(got.State, want) {
			t.Fatalf("split %d: state differs from full rebuild", split)
		}
	}
}

func TestReconstructIgnoresStaleSchemaVersion(t *testing.T) {
	ctx := context.Background()
	mem := seedLog(t)
	snaps := checkpoint.NewMemory()
	stale := game.Initial()
	stale.Bounty = 999999
	if err := snaps.SaveSnapshot(ctx, checkpoint.Snapshot{
		StreamID:      streamID,
		Seq:           2,
		SchemaVersion: game.SchemaVersion + 1,
		State:         stale,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	logger, buf := quietLogger()

	got, err := Loader{Log: mem, Snapshots: snaps, Logger: logger}.Reconstruct(ctx, streamID)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if got.FromSnapshot || got.State.Bounty == 999999 {
		t.Fatalf("stale snapshot used: %+v", got)
	}
	if !strings.Contains(buf.String(), "schema version") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestReconstructSavesSnapshotWhenDue(t *testing.T) {
	ctx := context.Background()
	mem := seedLog(t)
	snaps := checkpoint.NewMemory()
	loader := Loader{Log: mem, Snapshots: snaps, Policy: checkpoint.Policy{Every: 5}}

	first, err := loader.Reconstruct(ctx, streamID)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if !first.Saved {
		t.Fatalf("first = %+v, want saved", first)
	}
	snap, err := snaps.LoadSnapshot(ctx, streamID)
	if err != nil || snap.Seq != first.Seq || snap.SchemaVersion != game.SchemaVersion {
		t.Fatalf("snapshot = %+v, err = %v", snap, err)
	}

	second, err := loader.Reconstruct(ctx, streamID)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.FromSnapshot || second.Saved {
		t.Fatalf("second = %+v", second)
	}
	if !reflect.DeepEqual(first.State, second.State) {
		t.Fatal("snapshot changed reconstructed state")
	}
}

type failingSnapshots struct{ checkpoint.Noop }

func (failingSnapshots) SaveSnapshot(context.Context, checkpoint.Snapshot) error {
	return errors.New("disk full")
}

func TestReconstructLogsSnapshotSaveFailure(t *testing.T) {
	logger, buf := quietLogger()
	loader := Loader{Log: seedLog(t), Snapshots: failingSnapshots{}, Policy: checkpoint.Policy{Every: 1}, Logger: logger}

	got, err := loader.Reconstruct(context.Background(), streamID)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if got.Saved || !strings.Contains(buf.String(), "disk full") {
		t.Fatalf("saved = %v, log = %q", got.Saved, buf.String())
	}
}

// staticLog serves a fixed event list.
type staticLog struct{ events []event.Event }

func (s staticLog) Append(context.Context, string, event.Event) (string, error) {
	return "", errors.New("read only")
}

func (s staticLog) AppendBatch(context.Context, string, []event.Event) ([]event.Event, error) {
	return nil, errors.New("read only")
}

func (s staticLog) ReadAll(ctx context.Context, streamID string) ([]event.Event, error) {
	return s.ReadAfter(ctx, streamID, 0)
}

func (s staticLog) ReadAfter(_ context.Context, _ string, afterSeq uint64) ([]event.Event, error) {
	var out []event.Event
	for _, evt := range s.events {
		if evt.Seq > afterSeq {
			out = append(out, evt)
		}
	}
	return out, nil
}

func TestReconstructSkipsUnfoldableEvents(t *testing.T) {
	bounty, _ := json.Marshal(game.BountyModifiedPayload{Amount: 50, PreviousValue: 0, NewValue: 50, Reason: "test"})
	src := staticLog{events: []event.Event{
		{StreamID: streamID, Seq: 1, Type: game.EventTypeReputationChanged, PayloadJSON: []byte(`{"faction_id":7}`)},
		{StreamID: streamID, Seq: 2, Type: game.EventTypeBountyModified, PayloadJSON: bounty},
	}}
	logger, buf := quietLogger()

	got, err := Loader{Log: src, Logger: logger}.Reconstruct(context.Background(), streamID)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if got.Seq != 2 || got.State.Bounty != 50 {
		t.Fatalf("result = %+v", got)
	}
	if !strings.Contains(buf.String(), "seq 1") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestReconstructRequiresLogAndStream(t *testing.T) {
	if _, err := (Loader{}).Reconstruct(context.Background(), streamID); !errors.Is(err, ErrLogRequired) {
		t.Fatalf("err = %v", err)
	}
	if _, err := (Loader{Log: staticLog{}}).Reconstruct(context.Background(), "  "); !errors.Is(err, ErrStreamIDRequired) {
		t.Fatalf("err = %v", err)
	}
}
