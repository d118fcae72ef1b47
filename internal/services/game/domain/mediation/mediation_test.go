package mediation

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func loadCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	catalog, err := content.LoadEmbedded()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	return catalog
}

func mediationState(mediationID string, parties ...string) game.State {
	state := game.Initial()
	state.Status = game.StatusInProgress
	state.Phase = game.PhaseMediation
	state.Reputation = map[string]int{"meridian": 0, "sundrift": 95, "ironveil": 0, "ashfall": 0}
	state.ActiveQuest = &game.ActiveQuest{QuestID: "quest_salvage_claim", FactionID: "meridian"}
	state.CurrentMediationID = mediationID
	state.Mediation = &game.MediationState{MediationID: mediationID, Parties: parties}
	return state
}

func salvageMediation() game.State {
	return mediationState("mediation_salvage_rights", "meridian", "sundrift")
}

func fold(t *testing.T, state game.State, events []event.Event) game.State {
	t.Helper()
	next, err := game.FoldAll(state, events)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	return next
}

func TestLeanTowardFaction(t *testing.T) {
	catalog := loadCatalog(t)
	state := salvageMediation()

	events, err := LeanTowardFaction(ViewOf(state), LeanTowardFactionPayload{FactionID: "meridian"}, catalog, now)
	if err != nil {
		t.Fatalf("lean: %v", err)
	}
	want := []event.Type{game.EventTypeMediationLeaned, game.EventTypeReputationChanged, game.EventTypeReputationChanged}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	var leaned game.MediationLeanedPayload
	if err := json.Unmarshal(events[0].PayloadJSON, &leaned); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if leaned.TowardFactionID != "meridian" || leaned.AwayFactionID != "sundrift" {
		t.Fatalf("leaned = %+v", leaned)
	}

	next := fold(t, state, events)
	if next.Reputation["meridian"] != 10 || next.Reputation["sundrift"] != 85 {
		t.Fatalf("reputation = %v", next.Reputation)
	}
	if !next.Mediation.Leaned() || next.Phase != game.PhaseMediation {
		t.Fatalf("mediation = %+v phase %s", next.Mediation, next.Phase)
	}
}

func TestLeanTowardFactionRejections(t *testing.T) {
	catalog := loadCatalog(t)

	tests := []struct {
		name    string
		mutate  func(*game.State)
		faction string
		code    apperrors.Code
	}{
		{"not a party", nil, "ironveil", apperrors.CodeMediationNotParty},
		{"already leaned", func(s *game.State) {
			s.Mediation.LeanedToward = "sundrift"
			s.Mediation.LeanedAway = "meridian"
		}, "meridian", apperrors.CodeMediationAlreadyLeaned},
		{"no mediation", func(s *game.State) { s.Mediation = nil }, "meridian", apperrors.CodeMediationNotActive},
		{"unknown mediation", func(s *game.State) { s.Mediation.MediationID = "mediation_missing" }, "meridian", apperrors.CodeMediationNotFound},
		{"wrong phase", func(s *game.State) { s.Phase = game.PhaseAlliance }, "meridian", apperrors.CodePhaseMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := salvageMediation()
			if tt.mutate != nil {
				tt.mutate(&state)
			}
			events, err := LeanTowardFaction(ViewOf(state), LeanTowardFactionPayload{FactionID: tt.faction}, catalog, now)
			if events != nil {
				t.Fatalf("events = %v, want none", event.Types(events))
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestRefuseToLean(t *testing.T) {
	catalog := loadCatalog(t)
	state := salvageMediation()

	events, err := RefuseToLean(ViewOf(state), catalog, now)
	if err != nil {
		t.Fatalf("refuse: %v", err)
	}
	want := []event.Type{
		game.EventTypeMediationRefused,
		game.EventTypeReputationChanged,
		game.EventTypeReputationChanged,
		game.EventTypeBattleTriggered,
		game.EventTypePhaseChanged,
	}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	next := fold(t, state, events)
	if next.Phase != game.PhaseCardSelection || next.Mediation != nil {
		t.Fatalf("phase = %s, mediation = %+v", next.Phase, next.Mediation)
	}
	if next.Reputation["meridian"] != -5 || next.Reputation["sundrift"] != 90 {
		t.Fatalf("reputation = %v", next.Reputation)
	}
	if next.CurrentBattle == nil || next.CurrentBattle.OpponentFactionID != "sundrift" {
		t.Fatalf("battle = %+v", next.CurrentBattle)
	}
	if next.Stats.MediationsRefused != 1 {
		t.Fatalf("stats = %+v", next.Stats)
	}
}

func TestRefuseToLeanUsesMediationBattle(t *testing.T) {
	catalog := loadCatalog(t)
	state := mediationState("mediation_platform", "ironveil", "ashfall")
	state.ActiveQuest = &game.ActiveQuest{QuestID: "quest_iron_accord", FactionID: "ironveil"}

	events, err := RefuseToLean(ViewOf(state), catalog, now)
	if err != nil {
		t.Fatalf("refuse: %v", err)
	}
	next := fold(t, state, events)
	if next.CurrentBattle == nil || next.CurrentBattle.Difficulty != 3 {
		t.Fatalf("battle = %+v", next.CurrentBattle)
	}
}

func TestAcceptCompromise(t *testing.T) {
	catalog := loadCatalog(t)
	state := salvageMediation()
	state.Mediation.LeanedToward = "meridian"
	state.Mediation.LeanedAway = "sundrift"

	events, err := AcceptCompromise(ViewOf(state), catalog, now)
	if err != nil {
		t.Fatalf("compromise: %v", err)
	}
	want := []event.Type{game.EventTypeCompromiseAccepted, game.EventTypePhaseChanged}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	next := fold(t, state, events)
	if next.Phase != game.PhaseConsequence {
		t.Fatalf("phase = %s", next.Phase)
	}
	resolution := next.ActiveQuest.Resolution
	if resolution == nil || resolution.Outcome != game.OutcomeCompromise || resolution.Modifier != game.CompromiseModifier {
		t.Fatalf("resolution = %+v", resolution)
	}
}

func TestAcceptCompromiseRequiresLean(t *testing.T) {
	catalog := loadCatalog(t)
	events, err := AcceptCompromise(ViewOf(salvageMediation()), catalog, now)
	if events != nil || apperrors.GetCode(err) != apperrors.CodeMediationNotLeaned {
		t.Fatalf("events = %v, err = %v", events, err)
	}
}
