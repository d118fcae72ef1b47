// Package alliance decides the alliance phase: forming quest-scoped
// alliances and closing the phase into the quest's battle.
package alliance

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeFormAlliance      command.Type = "FORM_ALLIANCE"
	CommandTypeFinalizeAlliances command.Type = "FINALIZE_ALLIANCES"
)

// FormAlliancePayload names the faction to ally with.
type FormAlliancePayload struct {
	FactionID string `json:"faction_id"`
}

// Commands returns the alliance command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeFormAlliance, ValidatePayload: command.DecodeValidator(func(p FormAlliancePayload) error {
			if strings.TrimSpace(p.FactionID) == "" {
				return errors.New("faction_id is required")
			}
			return nil
		})},
		{Type: CommandTypeFinalizeAlliances},
	}
}

// View is the state the alliance handlers read.
type View struct {
	Status      game.Status
	Phase       game.Phase
	ActiveQuest *game.ActiveQuest
	OwnedCards  []game.OwnedCard
	Reputation  map[string]int
}

// ViewOf projects the alliance view from state.
func ViewOf(s game.State) View {
	return View{
		Status:      s.Status,
		Phase:       s.Phase,
		ActiveQuest: s.ActiveQuest,
		OwnedCards:  s.OwnedCards,
		Reputation:  s.Reputation,
	}
}

func (v View) owns(cardID string) bool {
	return slices.ContainsFunc(v.OwnedCards, func(card game.OwnedCard) bool { return card.ID == cardID })
}

func (v View) quest(tables content.Lookup) (*game.ActiveQuest, content.Quest, error) {
	if err := game.RequireInProgress(game.SliceAlliance, v.Status); err != nil {
		return nil, content.Quest{}, err
	}
	if err := game.RequirePhase(game.SliceAlliance, v.Phase, game.PhaseAlliance); err != nil {
		return nil, content.Quest{}, err
	}
	if v.ActiveQuest == nil {
		return nil, content.Quest{}, game.Reject(game.SliceAlliance, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}
	quest, ok := tables.Quest(v.ActiveQuest.QuestID)
	if !ok {
		return nil, content.Quest{}, game.Reject(game.SliceAlliance, game.KindMissing, apperrors.CodeQuestNotFound,
			fmt.Sprintf("quest %s not found", v.ActiveQuest.QuestID), "quest_id", v.ActiveQuest.QuestID)
	}
	return v.ActiveQuest, quest, nil
}

// FormAlliance allies with a faction the quest offers.
func FormAlliance(view View, payload FormAlliancePayload, tables content.Lookup, now time.Time) ([]event.Event, error) {
	active, quest, err := view.quest(tables)
	if err != nil {
		return nil, err
	}
	factionID := strings.TrimSpace(payload.FactionID)
	option, ok := quest.Alliance(factionID)
	if !ok {
		return nil, game.Reject(game.SliceAlliance, game.KindMissing, apperrors.CodeAllianceNotOffered,
			fmt.Sprintf("%s offers no alliance", factionID), "faction_id", factionID)
	}
	if active.AlliedWith(factionID) {
		return nil, game.Reject(game.SliceAlliance, game.KindRule, apperrors.CodeAllianceAlreadyFormed,
			fmt.Sprintf("already allied with %s", factionID), "faction_id", factionID)
	}
	if len(active.Alliances) >= game.MaxAlliances {
		return nil, game.Reject(game.SliceAlliance, game.KindRule, apperrors.CodeAllianceLimitReached,
			"alliance limit reached", "limit", strconv.Itoa(game.MaxAlliances))
	}
	if view.Reputation[factionID] < option.MinReputation {
		return nil, game.Reject(game.SliceAlliance, game.KindRule, apperrors.CodeAllianceReputationLow,
			fmt.Sprintf("%s requires reputation %d", factionID, option.MinReputation),
			"faction_id", factionID, "required", strconv.Itoa(option.MinReputation))
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeAllianceFormed, game.AllianceFormedPayload{
		QuestID:     active.QuestID,
		FactionID:   factionID,
		BountyShare: option.BountyShare,
		IsSecret:    option.IsSecret,
		CardIDs:     option.CardIDs,
	})
	game.EmitReputation(emit, game.NewLedger(view.Reputation), option.Reputation, "alliance "+factionID)
	game.EmitCardGains(emit, tables, view.owns, option.CardIDs, game.CardSourceAlliance)
	return emit.Events()
}

// FinalizeAlliances closes the alliance phase and triggers the quest battle.
// Finalizing with no alliances is allowed.
func FinalizeAlliances(view View, tables content.Lookup, now time.Time) ([]event.Event, error) {
	active, quest, err := view.quest(tables)
	if err != nil {
		return nil, err
	}
	if quest.Battle == nil {
		return nil, game.Reject(game.SliceAlliance, game.KindMissing, apperrors.CodeBattleUndefined,
			fmt.Sprintf("quest %s has no battle", quest.ID), "quest_id", quest.ID)
	}

	factionIDs := make([]string, 0, len(active.Alliances))
	for _, alliance := range active.Alliances {
		factionIDs = append(factionIDs, alliance.FactionID)
	}
	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeAlliancesFinalized, game.AlliancesFinalizedPayload{QuestID: active.QuestID, FactionIDs: factionIDs})
	emit.Emit(game.EventTypeBattleTriggered, game.BattleTriggered(*active, *quest.Battle))
	emit.PhaseChange(view.Phase, game.PhaseCardSelection)
	return emit.Events()
}
