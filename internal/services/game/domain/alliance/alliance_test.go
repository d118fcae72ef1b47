package alliance

import (
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

func allianceState() game.State {
	state := game.Initial()
	state.Status = game.StatusInProgress
	state.Phase = game.PhaseAlliance
	state.Reputation = map[string]int{"meridian": 0, "ironveil": 0, "sundrift": 0}
	state.ActiveQuest = &game.ActiveQuest{QuestID: "quest_salvage_claim", FactionID: "meridian"}
	for _, id := range []string{"starter_scout", "starter_frigate", "starter_cutter", "starter_tender", "starter_lance"} {
		state.OwnedCards = append(state.OwnedCards, game.OwnedCard{ID: id, Source: game.CardSourceStarter})
	}
	return state
}

func fold(t *testing.T, state game.State, events []event.Event) game.State {
	t.Helper()
	next, err := game.FoldAll(state, events)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	return next
}

func TestFormAlliance(t *testing.T) {
	catalog := loadCatalog(t)
	state := allianceState()

	events, err := FormAlliance(ViewOf(state), FormAlliancePayload{FactionID: "ironveil"}, catalog, now)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	want := []event.Type{
		game.EventTypeAllianceFormed,
		game.EventTypeReputationChanged,
		game.EventTypeReputationChanged,
		game.EventTypeCardGained,
	}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}

	next := fold(t, state, events)
	if next.Phase != game.PhaseAlliance {
		t.Fatalf("phase = %s", next.Phase)
	}
	if !next.ActiveQuest.AlliedWith("ironveil") || next.ActiveQuest.AllianceShare() != 0.3 {
		t.Fatalf("alliances = %+v", next.ActiveQuest.Alliances)
	}
	if next.Reputation["ironveil"] != 5 || next.Reputation["meridian"] != -5 {
		t.Fatalf("reputation = %v", next.Reputation)
	}
	card, ok := next.Card("ironveil_striker")
	if !ok || card.Source != game.CardSourceAlliance || card.Attack != 4 {
		t.Fatalf("card = %+v, %v", card, ok)
	}
	if !slices.Contains(next.ActiveQuest.CardsGained, "ironveil_striker") {
		t.Fatalf("quest cards = %v", next.ActiveQuest.CardsGained)
	}
}

func TestFormAllianceSkipsOwnedCards(t *testing.T) {
	catalog := loadCatalog(t)
	state := allianceState()
	state.OwnedCards = append(state.OwnedCards, game.OwnedCard{ID: "meridian_corvette", FactionID: "meridian"})

	events, err := FormAlliance(ViewOf(state), FormAlliancePayload{FactionID: "meridian"}, catalog, now)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if slices.Contains(event.Types(events), game.EventTypeCardGained) {
		t.Fatal("owned card gained twice")
	}
}

func TestFormAllianceRejections(t *testing.T) {
	catalog := loadCatalog(t)

	tests := []struct {
		name    string
		mutate  func(*game.State)
		faction string
		code    apperrors.Code
	}{
		{"not offered", nil, "ashfall", apperrors.CodeAllianceNotOffered},
		{"already allied", func(s *game.State) {
			s.ActiveQuest.Alliances = []game.Alliance{{FactionID: "meridian"}}
		}, "meridian", apperrors.CodeAllianceAlreadyFormed},
		{"limit", func(s *game.State) {
			s.ActiveQuest.Alliances = []game.Alliance{{FactionID: "ashfall"}, {FactionID: "void_wardens"}}
		}, "meridian", apperrors.CodeAllianceLimitReached},
		{"reputation", func(s *game.State) {
			s.Reputation["ironveil"] = -30
		}, "ironveil", apperrors.CodeAllianceReputationLow},
		{"wrong phase", func(s *game.State) {
			s.Phase = game.PhaseNarrative
		}, "meridian", apperrors.CodePhaseMismatch},
		{"no quest", func(s *game.State) {
			s.ActiveQuest = nil
		}, "meridian", apperrors.CodeQuestNotActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := allianceState()
			if tt.mutate != nil {
				tt.mutate(&state)
			}
			events, err := FormAlliance(ViewOf(state), FormAlliancePayload{FactionID: tt.faction}, catalog, now)
			if events != nil {
				t.Fatalf("events = %v, want none", event.Types(events))
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestFinalizeAlliances(t *testing.T) {
	catalog := loadCatalog(t)
	state := allianceState()
	state.ActiveQuest.Alliances = []game.Alliance{{FactionID: "meridian", BountyShare: 0.2}}

	events, err := FinalizeAlliances(ViewOf(state), catalog, now)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	want := []event.Type{game.EventTypeAlliancesFinalized, game.EventTypeBattleTriggered, game.EventTypePhaseChanged}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	next := fold(t, state, events)
	if next.Phase != game.PhaseCardSelection {
		t.Fatalf("phase = %s", next.Phase)
	}
	if next.CurrentBattle == nil || next.CurrentBattle.OpponentFactionID != "sundrift" || next.CurrentBattle.Difficulty != 1 {
		t.Fatalf("battle = %+v", next.CurrentBattle)
	}
}

func TestFinalizeAlliancesWithoutAllies(t *testing.T) {
	catalog := loadCatalog(t)
	events, err := FinalizeAlliances(ViewOf(allianceState()), catalog, now)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %v", event.Types(events))
	}
}
