package decider

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const streamID = "slot-1"

var starters = []string{"starter_scout", "starter_frigate", "starter_cutter", "starter_tender", "starter_lance"}

func newDecider(t *testing.T) *Decider {
	t.Helper()
	catalog, err := content.LoadEmbedded()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d, err := New(Deps{
		Content:   catalog,
		Opponents: content.NewOpponents(catalog),
		Seeds:     func() (int64, error) { return 99, nil },
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	if err != nil {
		t.Fatalf("new decider: %v", err)
	}
	return d
}

// play decides one command, folds its events, and appends them to log.
func play(t *testing.T, d *Decider, state game.State, log *[]event.Event, cmdType command.Type, payload any) game.State {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	events, err := d.Decide(state, command.Command{StreamID: streamID, Type: cmdType, PayloadJSON: data})
	if err != nil {
		t.Fatalf("%s: %v", cmdType, err)
	}
	for _, evt := range events {
		if evt.StreamID != streamID {
			t.Fatalf("%s: event %s stream = %q", cmdType, evt.Type, evt.StreamID)
		}
	}
	*log = append(*log, events...)
	next, err := game.FoldAll(state, events)
	if err != nil {
		t.Fatalf("%s fold: %v", cmdType, err)
	}
	return next
}

type obj = map[string]any

func TestDecideFullQuest(t *testing.T) {
	d := newDecider(t)
	var log []event.Event
	state := game.Initial()

	state = play(t, d, state, &log, "START_GAME", obj{"player_id": "captain"})
	state = play(t, d, state, &log, "ACCEPT_QUEST", obj{"quest_id": "quest_salvage_claim"})
	for _, step := range []struct{ dilemma, choice string }{
		{"dilemma_salvage_1_approach", "choice_hail_first"},
		{"dilemma_salvage_2_discovery", "choice_share_manifest"},
		{"dilemma_salvage_3_confrontation", "choice_stand_ground"},
	} {
		state = play(t, d, state, &log, "MAKE_CHOICE", obj{"dilemma_id": step.dilemma, "choice_id": step.choice})
		state = play(t, d, state, &log, "ACKNOWLEDGE_CHOICE_CONSEQUENCE", obj{})
	}
	if state.Phase != game.PhaseCardSelection || state.CurrentBattle == nil {
		t.Fatalf("phase = %s, battle = %+v", state.Phase, state.CurrentBattle)
	}

	for _, id := range starters {
		state = play(t, d, state, &log, "SELECT_CARD", obj{"card_id": id})
	}
	state = play(t, d, state, &log, "COMMIT_FLEET", obj{})
	for i, id := range starters {
		state = play(t, d, state, &log, "SET_CARD_POSITION", obj{"card_id": id, "position": i + 1})
	}
	state = play(t, d, state, &log, "LOCK_ORDERS", obj{"positions": starters})
	if state.Phase != game.PhaseConsequence || state.CurrentBattle.Seed != 99 {
		t.Fatalf("phase = %s, seed = %d", state.Phase, state.CurrentBattle.Seed)
	}

	state = play(t, d, state, &log, "ACKNOWLEDGE_OUTCOME", obj{})
	outcome := state.ActiveQuest.Resolution.Outcome
	state = play(t, d, state, &log, "CONTINUE_TO_NEXT_PHASE", obj{})
	if outcome != game.OutcomeDefeat {
		if state.Phase != game.PhasePostBattleDilemma {
			t.Fatalf("phase after %s = %s", outcome, state.Phase)
		}
		state = play(t, d, state, &log, "CONTINUE_TO_NEXT_PHASE", obj{})
		state = play(t, d, state, &log, "MAKE_CHOICE", obj{"dilemma_id": "dilemma_salvage_4_aftermath", "choice_id": "choice_return_salvage"})
		state = play(t, d, state, &log, "ACKNOWLEDGE_CHOICE_CONSEQUENCE", obj{})
	}
	if state.Phase != game.PhaseQuestSummary || state.PendingQuestSummary == nil {
		t.Fatalf("phase = %s, summary = %+v", state.Phase, state.PendingQuestSummary)
	}
	state = play(t, d, state, &log, "ACKNOWLEDGE_QUEST_SUMMARY", obj{})
	if state.Phase != game.PhaseQuestHub || len(state.CompletedQuests) != 1 {
		t.Fatalf("phase = %s, history = %+v", state.Phase, state.CompletedQuests)
	}

	rebuilt, err := game.Rebuild(log)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !reflect.DeepEqual(rebuilt, state) {
		t.Fatalf("rebuilt state differs from incremental state")
	}
}

func TestDecideStructuralErrors(t *testing.T) {
	d := newDecider(t)

	tests := []struct {
		name string
		cmd  command.Command
		code apperrors.Code
	}{
		{"unknown type", command.Command{StreamID: streamID, Type: "WARP_JUMP"}, apperrors.CodeCommandTypeUnknown},
		{"missing stream", command.Command{Type: "START_GAME", PayloadJSON: []byte(`{"player_id":"p"}`)}, apperrors.CodeCommandStreamRequired},
		{"invalid json", command.Command{StreamID: streamID, Type: "START_GAME", PayloadJSON: []byte(`{`)}, apperrors.CodeCommandPayloadInvalid},
		{"missing field", command.Command{StreamID: streamID, Type: "MAKE_CHOICE", PayloadJSON: []byte(`{"dilemma_id":"d"}`)}, apperrors.CodeCommandPayloadInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := d.Decide(game.Initial(), tt.cmd)
			if events != nil {
				t.Fatalf("events = %v", event.Types(events))
			}
			var invalid *InvalidCommandError
			if !errors.As(err, &invalid) || invalid.Kind != KindStructural {
				t.Fatalf("err = %v, want structural", err)
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestDecidePhaseNotAllowed(t *testing.T) {
	d := newDecider(t)
	state := game.Initial()
	state.Status = game.StatusInProgress
	state.Phase = game.PhaseQuestHub

	_, err := d.Decide(state, command.Command{StreamID: streamID, Type: "LOCK_ORDERS", PayloadJSON: []byte(`{"positions":[]}`)})
	var invalid *InvalidCommandError
	if !errors.As(err, &invalid) || invalid.Kind != KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	var rejection *game.Error
	if !errors.As(err, &rejection) || rejection.Slice != game.SliceDeployment || rejection.Kind != game.KindPhase {
		t.Fatalf("rejection = %+v", rejection)
	}
	if apperrors.GetCode(err) != apperrors.CodeCommandPhaseNotAllowed {
		t.Fatalf("code = %s", apperrors.GetCode(err))
	}
}

func TestDecideHandlerRejectionIsValidation(t *testing.T) {
	d := newDecider(t)
	var log []event.Event
	state := play(t, d, game.Initial(), &log, "START_GAME", obj{"player_id": "captain"})

	_, err := d.Decide(state, command.Command{StreamID: streamID, Type: "ACCEPT_QUEST", PayloadJSON: []byte(`{"quest_id":"quest_iron_accord"}`)})
	var invalid *InvalidCommandError
	if !errors.As(err, &invalid) || invalid.Kind != KindValidation || invalid.Type != "ACCEPT_QUEST" {
		t.Fatalf("err = %v", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeQuestNotAvailable {
		t.Fatalf("code = %s", apperrors.GetCode(err))
	}
}

func TestEveryDefinitionIsRouted(t *testing.T) {
	defs := Definitions()
	if len(defs) != len(routes) {
		t.Fatalf("definitions = %d, routes = %d", len(defs), len(routes))
	}
	for _, def := range defs {
		if _, ok := routes[def.Type]; !ok {
			t.Fatalf("%s has no route", def.Type)
		}
	}
	if _, err := NewCommandRegistry(); err != nil {
		t.Fatalf("registry: %v", err)
	}
}

func TestNewRequiresContent(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected error")
	}
}
