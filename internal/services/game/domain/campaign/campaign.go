// Package campaign decides the commands that frame a campaign: starting a
// game, accepting quests, and closing a quest's summary screen. It also owns
// the quest ending sequence shared by the narrative and consequence slices.
package campaign

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeStartGame               command.Type = "START_GAME"
	CommandTypeAcceptQuest             command.Type = "ACCEPT_QUEST"
	CommandTypeAcknowledgeQuestSummary command.Type = "ACKNOWLEDGE_QUEST_SUMMARY"
)

// StartGamePayload starts a campaign for a player.
type StartGamePayload struct {
	PlayerID string `json:"player_id"`
}

// AcceptQuestPayload names an available quest to take on.
type AcceptQuestPayload struct {
	QuestID string `json:"quest_id"`
}

// Commands returns the campaign command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeStartGame, ValidatePayload: command.DecodeValidator(func(p StartGamePayload) error {
			if strings.TrimSpace(p.PlayerID) == "" {
				return errors.New("player_id is required")
			}
			return nil
		})},
		{Type: CommandTypeAcceptQuest, ValidatePayload: command.DecodeValidator(func(p AcceptQuestPayload) error {
			if strings.TrimSpace(p.QuestID) == "" {
				return errors.New("quest_id is required")
			}
			return nil
		})},
		{Type: CommandTypeAcknowledgeQuestSummary},
	}
}

// Content is the content this slice reads.
type Content interface {
	content.Lookup
	FactionIDs() []string
	StarterCardIDs() []string
	StartingBounty() int
	UnlockedQuestIDs(completed []string) []string
}

// View is the state the campaign handlers read.
type View struct {
	Status              game.Status
	Phase               game.Phase
	AvailableQuestIDs   []string
	ActiveQuest         *game.ActiveQuest
	CompletedQuests     []game.CompletedQuest
	OwnedCards          []game.OwnedCard
	Reputation          map[string]int
	Bounty              int
	Stats               game.Stats
	PendingQuestSummary *game.QuestSummary
}

// ViewOf projects the campaign view from state.
func ViewOf(s game.State) View {
	return View{
		Status:              s.Status,
		Phase:               s.Phase,
		AvailableQuestIDs:   s.AvailableQuestIDs,
		ActiveQuest:         s.ActiveQuest,
		CompletedQuests:     s.CompletedQuests,
		OwnedCards:          s.OwnedCards,
		Reputation:          s.Reputation,
		Bounty:              s.Bounty,
		Stats:               s.Stats,
		PendingQuestSummary: s.PendingQuestSummary,
	}
}

// StartGame begins a fresh game. It is accepted before the first game and
// after a game has ended.
func StartGame(view View, payload StartGamePayload, tables Content, now time.Time) ([]event.Event, error) {
	if view.Status == game.StatusInProgress {
		return nil, game.Reject(game.SliceCampaign, game.KindPhase, apperrors.CodeGameAlreadyInProgress, "game already in progress")
	}
	playerID := strings.TrimSpace(payload.PlayerID)
	if playerID == "" {
		return nil, game.Reject(game.SliceCampaign, game.KindStructure, apperrors.CodePlayerIDRequired, "player id is required")
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeGameStarted, game.GameStartedPayload{
		PlayerID:          playerID,
		FactionIDs:        tables.FactionIDs(),
		StartingBounty:    tables.StartingBounty(),
		AvailableQuestIDs: tables.UnlockedQuestIDs(nil),
	})
	game.EmitCardGains(emit, tables, func(string) bool { return false }, tables.StarterCardIDs(), game.CardSourceStarter)
	emit.PhaseChange(view.Phase, game.PhaseQuestHub)
	return emit.Events()
}

// AcceptQuest starts an available quest at its first dilemma.
func AcceptQuest(view View, payload AcceptQuestPayload, tables Content, now time.Time) ([]event.Event, error) {
	if err := game.RequireInProgress(game.SliceCampaign, view.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceCampaign, view.Phase, game.PhaseQuestHub); err != nil {
		return nil, err
	}
	if view.ActiveQuest != nil {
		return nil, game.Reject(game.SliceCampaign, game.KindRule, apperrors.CodeQuestAlreadyActive,
			"another quest is active", "quest_id", view.ActiveQuest.QuestID)
	}
	quest, ok := tables.Quest(payload.QuestID)
	if !ok {
		return nil, game.Reject(game.SliceCampaign, game.KindMissing, apperrors.CodeQuestNotFound,
			fmt.Sprintf("quest %s not found", payload.QuestID), "quest_id", payload.QuestID)
	}
	if !slices.Contains(view.AvailableQuestIDs, quest.ID) {
		return nil, game.Reject(game.SliceCampaign, game.KindRule, apperrors.CodeQuestNotAvailable,
			fmt.Sprintf("quest %s is not available", quest.ID), "quest_id", quest.ID)
	}
	if len(quest.DilemmaIDs) == 0 {
		return nil, game.Reject(game.SliceCampaign, game.KindMissing, apperrors.CodeQuestHasNoDilemmas,
			fmt.Sprintf("quest %s has no dilemmas", quest.ID), "quest_id", quest.ID)
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeQuestAccepted, game.QuestAcceptedPayload{QuestID: quest.ID, FactionID: quest.FactionID})
	emit.Emit(game.EventTypeDilemmaPresented, game.DilemmaPresentedPayload{
		QuestID:      quest.ID,
		DilemmaID:    quest.DilemmaIDs[0],
		DilemmaIndex: 0,
	})
	emit.PhaseChange(view.Phase, game.PhaseNarrative)
	return emit.Events()
}

// AcknowledgeQuestSummary closes the summary screen, applies reputation card
// locks, and either ends the campaign or returns to the quest hub.
func AcknowledgeQuestSummary(view View, now time.Time) ([]event.Event, error) {
	if err := game.RequireInProgress(game.SliceCampaign, view.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceCampaign, view.Phase, game.PhaseQuestSummary); err != nil {
		return nil, err
	}
	if view.PendingQuestSummary == nil {
		return nil, game.Reject(game.SliceCampaign, game.KindMissing, apperrors.CodeQuestSummaryMissing, "no quest summary to acknowledge")
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeQuestSummaryAcknowledged, game.QuestSummaryAcknowledgedPayload{QuestID: view.PendingQuestSummary.QuestID})
	emitCardLocks(emit, view.OwnedCards, view.Reputation)

	if len(view.CompletedQuests) >= game.CampaignLength {
		emit.Emit(game.EventTypeGameEnded, game.GameEndedPayload{
			EndingID:        EndingID(view.Reputation),
			QuestsCompleted: view.Stats.QuestsCompleted,
			QuestsFailed:    view.Stats.QuestsFailed,
			FinalBounty:     view.Bounty,
		})
		emit.PhaseChange(view.Phase, game.PhaseEnding)
		return emit.Events()
	}
	emit.PhaseChange(view.Phase, game.PhaseQuestHub)
	return emit.Events()
}

// emitCardLocks unlocks cards whose faction recovered and locks cards whose
// faction reputation fell below the threshold. Locks stop before fewer than
// FleetSize cards remain usable.
func emitCardLocks(emit *game.Emitter, cards []game.OwnedCard, reputation map[string]int) {
	usable := 0
	for _, card := range cards {
		if !card.IsLocked {
			usable++
		}
	}
	for _, card := range cards {
		if card.IsLocked && !shouldLock(card, reputation) {
			emit.Emit(game.EventTypeCardUnlocked, game.CardUnlockedPayload{CardID: card.ID})
			usable++
		}
	}
	for _, card := range cards {
		if card.IsLocked || !shouldLock(card, reputation) {
			continue
		}
		if usable <= game.FleetSize {
			return
		}
		emit.Emit(game.EventTypeCardLocked, game.CardLockedPayload{
			CardID: card.ID,
			Reason: fmt.Sprintf("%s reputation below %d", card.FactionID, game.LockThreshold),
		})
		usable--
	}
}

func shouldLock(card game.OwnedCard, reputation map[string]int) bool {
	return card.FactionID != "" && reputation[card.FactionID] < game.LockThreshold
}

// EndingID names the campaign ending: the faction with the highest reputation
// at or above the ending threshold, or the independent ending. Ties go to the
// faction id that sorts first.
func EndingID(reputation map[string]int) string {
	ending := game.IndependentEnding
	best := game.EndingThreshold - 1
	for _, factionID := range game.SortedKeys(reputation) {
		if value := reputation[factionID]; value > best {
			best = value
			ending = factionID
		}
	}
	return ending
}
