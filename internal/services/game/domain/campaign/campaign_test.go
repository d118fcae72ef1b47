package campaign

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

func fold(t *testing.T, state game.State, events []event.Event) game.State {
	t.Helper()
	next, err := game.FoldAll(state, events)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	return next
}

func startedState(t *testing.T, catalog *content.Catalog) game.State {
	t.Helper()
	events, err := StartGame(ViewOf(game.Initial()), StartGamePayload{PlayerID: "pilot"}, catalog, now)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	return fold(t, game.Initial(), events)
}

func TestStartGame(t *testing.T) {
	catalog := loadCatalog(t)
	events, err := StartGame(ViewOf(game.Initial()), StartGamePayload{PlayerID: " pilot "}, catalog, now)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	types := event.Types(events)
	if types[0] != game.EventTypeGameStarted || types[len(types)-1] != game.EventTypePhaseChanged {
		t.Fatalf("types = %v", types)
	}
	gained := 0
	for _, typ := range types {
		if typ == game.EventTypeCardGained {
			gained++
		}
	}
	if gained != len(catalog.StarterCardIDs()) {
		t.Fatalf("cards gained = %d, want %d", gained, len(catalog.StarterCardIDs()))
	}

	state := fold(t, game.Initial(), events)
	if state.Status != game.StatusInProgress || state.Phase != game.PhaseQuestHub {
		t.Fatalf("status/phase = %s/%s", state.Status, state.Phase)
	}
	if state.PlayerID != "pilot" {
		t.Fatalf("player id = %q", state.PlayerID)
	}
	if state.Bounty != catalog.StartingBounty() {
		t.Fatalf("bounty = %d, want %d", state.Bounty, catalog.StartingBounty())
	}
	for _, factionID := range catalog.FactionIDs() {
		if value, ok := state.Reputation[factionID]; !ok || value != 0 {
			t.Fatalf("reputation[%s] = %d, %v", factionID, value, ok)
		}
	}
	if slices.Contains(state.AvailableQuestIDs, "quest_iron_accord") {
		t.Fatal("quest with prerequisites must not be available at start")
	}
	if !slices.Contains(state.AvailableQuestIDs, "quest_salvage_claim") {
		t.Fatalf("available = %v", state.AvailableQuestIDs)
	}
}

func TestStartGameRejections(t *testing.T) {
	catalog := loadCatalog(t)
	state := startedState(t, catalog)

	_, err := StartGame(ViewOf(state), StartGamePayload{PlayerID: "pilot"}, catalog, now)
	if apperrors.GetCode(err) != apperrors.CodeGameAlreadyInProgress {
		t.Fatalf("in progress: %v", err)
	}
	_, err = StartGame(ViewOf(game.Initial()), StartGamePayload{PlayerID: "  "}, catalog, now)
	if apperrors.GetCode(err) != apperrors.CodePlayerIDRequired {
		t.Fatalf("blank player: %v", err)
	}
}

func TestStartGameAfterEnding(t *testing.T) {
	catalog := loadCatalog(t)
	state := startedState(t, catalog)
	state.Status = game.StatusEnded
	state.Phase = game.PhaseEnding
	state.Reputation["meridian"] = 40

	events, err := StartGame(ViewOf(state), StartGamePayload{PlayerID: "pilot"}, catalog, now)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	last := events[len(events)-1]
	var change game.PhaseChangedPayload
	if err := json.Unmarshal(last.PayloadJSON, &change); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if change.From != game.PhaseEnding || change.To != game.PhaseQuestHub {
		t.Fatalf("phase change = %+v", change)
	}
	next := fold(t, state, events)
	if next.Reputation["meridian"] != 0 || next.Status != game.StatusInProgress {
		t.Fatalf("restart state = %+v", next)
	}
}

func TestAcceptQuest(t *testing.T) {
	catalog := loadCatalog(t)
	state := startedState(t, catalog)

	events, err := AcceptQuest(ViewOf(state), AcceptQuestPayload{QuestID: "quest_salvage_claim"}, catalog, now)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	want := []event.Type{game.EventTypeQuestAccepted, game.EventTypeDilemmaPresented, game.EventTypePhaseChanged}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}

	next := fold(t, state, events)
	if next.Phase != game.PhaseNarrative {
		t.Fatalf("phase = %s", next.Phase)
	}
	if next.ActiveQuest == nil || next.ActiveQuest.FactionID != "meridian" {
		t.Fatalf("active quest = %+v", next.ActiveQuest)
	}
	if next.CurrentDilemmaID != "dilemma_salvage_1_approach" {
		t.Fatalf("dilemma = %s", next.CurrentDilemmaID)
	}
	if slices.Contains(next.AvailableQuestIDs, "quest_salvage_claim") {
		t.Fatal("accepted quest still available")
	}
}

func TestAcceptQuestRejections(t *testing.T) {
	catalog := loadCatalog(t)
	state := startedState(t, catalog)

	tests := []struct {
		name  string
		state func() game.State
		quest string
		code  apperrors.Code
	}{
		{"unknown quest", func() game.State { return state }, "quest_missing", apperrors.CodeQuestNotFound},
		{"locked quest", func() game.State { return state }, "quest_iron_accord", apperrors.CodeQuestNotAvailable},
		{"wrong phase", func() game.State {
			s := state.Clone()
			s.Phase = game.PhaseNarrative
			return s
		}, "quest_salvage_claim", apperrors.CodePhaseMismatch},
		{"not started", func() game.State { return game.Initial() }, "quest_salvage_claim", apperrors.CodeGameNotInProgress},
		{"quest active", func() game.State {
			s := state.Clone()
			s.ActiveQuest = &game.ActiveQuest{QuestID: "quest_sanctuary_run"}
			return s
		}, "quest_salvage_claim", apperrors.CodeQuestAlreadyActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := AcceptQuest(ViewOf(tt.state()), AcceptQuestPayload{QuestID: tt.quest}, catalog, now)
			if events != nil {
				t.Fatalf("events = %v, want none", event.Types(events))
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func summaryState(completed int) game.State {
	state := game.Initial()
	state.Status = game.StatusInProgress
	state.Phase = game.PhaseQuestSummary
	state.Reputation = map[string]int{"meridian": 30, "ironveil": 10}
	for i := range completed {
		state.CompletedQuests = append(state.CompletedQuests, game.CompletedQuest{
			QuestID: []string{"quest_a", "quest_b", "quest_c"}[i],
			Result:  game.QuestResultCompleted,
		})
	}
	state.PendingQuestSummary = &game.QuestSummary{QuestID: state.CompletedQuests[completed-1].QuestID}
	return state
}

func TestAcknowledgeQuestSummaryEndsCampaignAfterThirdQuest(t *testing.T) {
	tests := []struct {
		completed int
		phase     game.Phase
		status    game.Status
	}{
		{1, game.PhaseQuestHub, game.StatusInProgress},
		{2, game.PhaseQuestHub, game.StatusInProgress},
		{3, game.PhaseEnding, game.StatusEnded},
	}
	for _, tt := range tests {
		state := summaryState(tt.completed)
		events, err := AcknowledgeQuestSummary(ViewOf(state), now)
		if err != nil {
			t.Fatalf("quest %d: %v", tt.completed, err)
		}
		next := fold(t, state, events)
		if next.Phase != tt.phase || next.Status != tt.status {
			t.Fatalf("quest %d: phase/status = %s/%s, want %s/%s", tt.completed, next.Phase, next.Status, tt.phase, tt.status)
		}
		if next.PendingQuestSummary != nil {
			t.Fatalf("quest %d: summary still pending", tt.completed)
		}
		if tt.status == game.StatusEnded && next.EndingID != "meridian" {
			t.Fatalf("ending = %s, want meridian", next.EndingID)
		}
	}
}

func TestAcknowledgeQuestSummaryRequiresPendingSummary(t *testing.T) {
	state := summaryState(1)
	state.PendingQuestSummary = nil
	_, err := AcknowledgeQuestSummary(ViewOf(state), now)
	if apperrors.GetCode(err) != apperrors.CodeQuestSummaryMissing {
		t.Fatalf("err = %v", err)
	}
}

func ownedCards(factions ...string) []game.OwnedCard {
	cards := make([]game.OwnedCard, len(factions))
	for i, factionID := range factions {
		cards[i] = game.OwnedCard{ID: "card_" + string(rune('a'+i)), FactionID: factionID}
	}
	return cards
}

func TestAcknowledgeQuestSummaryLocksCards(t *testing.T) {
	state := summaryState(1)
	state.Reputation["ironveil"] = -60
	state.OwnedCards = ownedCards("", "", "", "", "", "ironveil", "ironveil")

	events, err := AcknowledgeQuestSummary(ViewOf(state), now)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	next := fold(t, state, events)
	if next.UnlockedCardCount() != 5 {
		t.Fatalf("unlocked = %d, want 5", next.UnlockedCardCount())
	}
	locked, _ := next.Card("card_f")
	if !locked.IsLocked || locked.LockReason == "" {
		t.Fatalf("card_f = %+v", locked)
	}
}

func TestAcknowledgeQuestSummaryKeepsFleetPlayable(t *testing.T) {
	state := summaryState(1)
	state.Reputation["ironveil"] = -80
	state.OwnedCards = ownedCards("", "", "", "ironveil", "ironveil")

	events, err := AcknowledgeQuestSummary(ViewOf(state), now)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if slices.Contains(event.Types(events), game.EventTypeCardLocked) {
		t.Fatal("locked a card with only five usable")
	}
}

func TestAcknowledgeQuestSummaryUnlocksRecoveredCards(t *testing.T) {
	state := summaryState(1)
	state.OwnedCards = ownedCards("", "", "", "", "", "ironveil")
	state.OwnedCards[5].IsLocked = true

	events, err := AcknowledgeQuestSummary(ViewOf(state), now)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	next := fold(t, state, events)
	if card, _ := next.Card("card_f"); card.IsLocked {
		t.Fatal("expected card_f unlocked")
	}
}

func TestEndingID(t *testing.T) {
	tests := []struct {
		name       string
		reputation map[string]int
		want       string
	}{
		{"none", nil, game.IndependentEnding},
		{"below threshold", map[string]int{"meridian": 24}, game.IndependentEnding},
		{"at threshold", map[string]int{"meridian": 25, "ironveil": 10}, "meridian"},
		{"highest wins", map[string]int{"meridian": 30, "sundrift": 60}, "sundrift"},
		{"tie sorts first", map[string]int{"sundrift": 40, "ashfall": 40}, "ashfall"},
	}
	for _, tt := range tests {
		if got := EndingID(tt.reputation); got != tt.want {
			t.Fatalf("%s: ending = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestCompleteQuestPaysBaseBountyWithoutResolution(t *testing.T) {
	catalog := loadCatalog(t)
	state := startedState(t, catalog)
	state.Phase = game.PhaseChoiceConsequence
	state.ActiveQuest = &game.ActiveQuest{
		QuestID:   "quest_salvage_claim",
		FactionID: "meridian",
		Alliances: []game.Alliance{{FactionID: "meridian", BountyShare: 0.2}},
	}
	state.AvailableQuestIDs = []string{"quest_sanctuary_run", "quest_wardens_vigil"}

	emit := game.NewEmitter(now)
	err := CompleteQuest(emit, game.SliceMakeChoice, Progress{
		Phase:           state.Phase,
		ActiveQuest:     state.ActiveQuest,
		CompletedQuests: state.CompletedQuests,
		Bounty:          state.Bounty,
	}, catalog)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	events, err := emit.Events()
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	want := []event.Type{
		game.EventTypeBountyModified,
		game.EventTypeQuestCompleted,
		game.EventTypeQuestSummaryPresented,
		game.EventTypePhaseChanged,
	}
	if got := event.Types(events); !slices.Equal(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}

	next := fold(t, state, events)
	if next.Bounty != 100+240 {
		t.Fatalf("bounty = %d, want 340", next.Bounty)
	}
	if next.Phase != game.PhaseQuestSummary || next.ActiveQuest != nil {
		t.Fatalf("phase = %s, active = %+v", next.Phase, next.ActiveQuest)
	}
	if !slices.Contains(next.AvailableQuestIDs, "quest_iron_accord") {
		t.Fatalf("available = %v", next.AvailableQuestIDs)
	}
	if slices.Contains(next.AvailableQuestIDs, "quest_salvage_claim") {
		t.Fatal("completed quest offered again")
	}
	summary := next.PendingQuestSummary
	if summary == nil || summary.QuestNumber != 1 || summary.BountyEarned != 240 {
		t.Fatalf("summary = %+v", summary)
	}
	if !slices.Equal(summary.Alliances, []string{"meridian"}) {
		t.Fatalf("summary alliances = %v", summary.Alliances)
	}
	if len(next.CompletedQuests) != 1 || next.CompletedQuests[0].BountyEarned != 240 {
		t.Fatalf("completed = %+v", next.CompletedQuests)
	}
}

func TestFailQuestDoesNotUnlockDependents(t *testing.T) {
	catalog := loadCatalog(t)
	state := startedState(t, catalog)
	state.Phase = game.PhaseConsequence
	state.ActiveQuest = &game.ActiveQuest{
		QuestID:    "quest_salvage_claim",
		FactionID:  "meridian",
		Resolution: &game.Resolution{Source: game.ResolutionBattle, Outcome: game.OutcomeDefeat},
	}

	emit := game.NewEmitter(now)
	err := FailQuest(emit, game.SliceConsequence, Progress{
		Phase:       state.Phase,
		ActiveQuest: state.ActiveQuest,
		Bounty:      state.Bounty,
	}, catalog, "battle lost")
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	events, err := emit.Events()
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	next := fold(t, state, events)
	if slices.Contains(next.AvailableQuestIDs, "quest_iron_accord") || slices.Contains(next.AvailableQuestIDs, "quest_salvage_claim") {
		t.Fatalf("available = %v", next.AvailableQuestIDs)
	}
	if next.Stats.QuestsFailed != 1 || next.CompletedQuests[0].Result != game.QuestResultFailed {
		t.Fatalf("history = %+v", next.CompletedQuests)
	}
	if next.PendingQuestSummary == nil || next.PendingQuestSummary.Outcome != game.OutcomeDefeat {
		t.Fatalf("summary = %+v", next.PendingQuestSummary)
	}
}

func TestQuestEndRequiresActiveQuest(t *testing.T) {
	catalog := loadCatalog(t)
	err := CompleteQuest(game.NewEmitter(now), game.SliceConsequence, Progress{}, catalog)
	if apperrors.GetCode(err) != apperrors.CodeQuestNotActive {
		t.Fatalf("err = %v", err)
	}
}
