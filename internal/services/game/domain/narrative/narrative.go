// Package narrative decides dilemma choices and the consequence screen that
// follows each one.
package narrative

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/campaign"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeMakeChoice                   command.Type = "MAKE_CHOICE"
	CommandTypeAcknowledgeChoiceConsequence command.Type = "ACKNOWLEDGE_CHOICE_CONSEQUENCE"
)

// MakeChoicePayload picks a choice on the presented dilemma.
type MakeChoicePayload struct {
	DilemmaID string `json:"dilemma_id"`
	ChoiceID  string `json:"choice_id"`
}

// Commands returns the narrative command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeMakeChoice, ValidatePayload: command.DecodeValidator(func(p MakeChoicePayload) error {
			if strings.TrimSpace(p.DilemmaID) == "" {
				return errors.New("dilemma_id is required")
			}
			if strings.TrimSpace(p.ChoiceID) == "" {
				return errors.New("choice_id is required")
			}
			return nil
		})},
		{Type: CommandTypeAcknowledgeChoiceConsequence},
	}
}

// Content is the content this slice reads.
type Content interface {
	content.Lookup
	UnlockedQuestIDs(completed []string) []string
}

// View is the state the narrative handlers read.
type View struct {
	Status                   game.Status
	Phase                    game.Phase
	ActiveQuest              *game.ActiveQuest
	CurrentDilemmaID         string
	OwnedCards               []game.OwnedCard
	Reputation               map[string]int
	Bounty                   int
	CompletedQuests          []game.CompletedQuest
	PendingChoiceConsequence *game.ChoiceConsequence
}

// ViewOf projects the narrative view from state.
func ViewOf(s game.State) View {
	return View{
		Status:                   s.Status,
		Phase:                    s.Phase,
		ActiveQuest:              s.ActiveQuest,
		CurrentDilemmaID:         s.CurrentDilemmaID,
		OwnedCards:               s.OwnedCards,
		Reputation:               s.Reputation,
		Bounty:                   s.Bounty,
		CompletedQuests:          s.CompletedQuests,
		PendingChoiceConsequence: s.PendingChoiceConsequence,
	}
}

func (v View) owns(cardID string) bool {
	return slices.ContainsFunc(v.OwnedCards, func(card game.OwnedCard) bool { return card.ID == cardID })
}

// fieldable counts the owned cards that are not locked. With ids it counts
// only those cards.
func (v View) fieldable(ids ...string) int {
	count := 0
	for _, card := range v.OwnedCards {
		if card.IsLocked || (len(ids) > 0 && !slices.Contains(ids, card.ID)) {
			continue
		}
		count++
	}
	return count
}

// MakeChoice resolves a choice on the presented dilemma.
//
// The card floor is checked before anything is emitted: a choice that loses
// unlocked cards may not leave fewer than FleetSize cards a fleet can field.
func MakeChoice(view View, payload MakeChoicePayload, tables Content, now time.Time) ([]event.Event, error) {
	if err := game.RequireInProgress(game.SliceMakeChoice, view.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceMakeChoice, view.Phase, game.PhaseNarrative); err != nil {
		return nil, err
	}
	quest := view.ActiveQuest
	if quest == nil {
		return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}
	dilemma, ok := tables.Dilemma(payload.DilemmaID)
	if !ok {
		return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeDilemmaNotFound,
			fmt.Sprintf("dilemma %s not found", payload.DilemmaID), "dilemma_id", payload.DilemmaID)
	}
	if dilemma.ID != view.CurrentDilemmaID {
		return nil, game.Reject(game.SliceMakeChoice, game.KindRule, apperrors.CodeDilemmaNotPresented,
			fmt.Sprintf("dilemma %s is not presented", dilemma.ID), "dilemma_id", dilemma.ID)
	}
	choice, ok := dilemma.Choice(payload.ChoiceID)
	if !ok {
		return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeChoiceNotFound,
			fmt.Sprintf("choice %s not found in %s", payload.ChoiceID, dilemma.ID),
			"choice_id", payload.ChoiceID, "dilemma_id", dilemma.ID)
	}

	effects := choice.Consequences
	losses := ownedLosses(view, effects.CardsLost)
	if lost := view.fieldable(losses...); len(losses) > 0 && lost > 0 {
		projected := view.fieldable() + countGains(view, tables, effects.CardsGained) - lost
		if projected < game.FleetSize {
			return nil, game.Reject(game.SliceMakeChoice, game.KindRule, apperrors.CodeChoiceBelowFleetFloor,
				fmt.Sprintf("choice leaves %d cards", projected),
				"projected", strconv.Itoa(projected), "minimum", strconv.Itoa(game.FleetSize))
		}
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeChoiceMade, game.ChoiceMadePayload{
		QuestID:   quest.QuestID,
		DilemmaID: dilemma.ID,
		ChoiceID:  choice.ID,
	})
	reason := "choice " + choice.ID
	changes := game.EmitReputation(emit, game.NewLedger(view.Reputation), effects.Reputation, reason)
	gained := game.EmitCardGains(emit, tables, view.owns, effects.CardsGained, game.CardSourceChoice)
	for _, cardID := range losses {
		emit.Emit(game.EventTypeCardLost, game.CardLostPayload{CardID: cardID, Reason: reason})
	}
	bountyChange := 0
	if effects.Bounty != 0 {
		next := max(view.Bounty+effects.Bounty, 0)
		bountyChange = next - view.Bounty
		emit.Emit(game.EventTypeBountyModified, game.BountyModifiedPayload{
			Amount:        effects.Bounty,
			PreviousValue: view.Bounty,
			NewValue:      next,
			Reason:        reason,
		})
	}
	var flags []string
	for _, flag := range game.SortedKeys(effects.Flags) {
		if !effects.Flags[flag] {
			continue
		}
		emit.Emit(game.EventTypeFlagSet, game.FlagSetPayload{Flag: flag, Value: true})
		flags = append(flags, flag)
	}

	step, nextDilemmaID := NextStep(tables, quest.QuestID, dilemma.ID, choice.Triggers)
	var mediationID string
	if step == game.NextMediation {
		mediationID = choice.Triggers.MediationID
	}
	emit.Emit(game.EventTypeChoiceConsequencePresented, game.ChoiceConsequencePresentedPayload{
		Consequence: game.ChoiceConsequence{
			QuestID:           quest.QuestID,
			DilemmaID:         dilemma.ID,
			ChoiceID:          choice.ID,
			OutcomeText:       choice.OutcomeText,
			ReputationChanges: changes,
			CardsGained:       gained,
			CardsLost:         losses,
			BountyChange:      bountyChange,
			FlagsSet:          flags,
			TriggersNext:      step,
			NextDilemmaID:     nextDilemmaID,
			MediationID:       mediationID,
		},
	})
	emit.PhaseChange(view.Phase, game.PhaseChoiceConsequence)
	return emit.Events()
}

// NextStep decides what follows a choice. Explicit triggers win in the order
// battle, alliance, mediation, next dilemma, quest complete. Without one, the
// quest's last dilemma completes the quest and any other moves to the next
// dilemma in the chain.
func NextStep(tables content.Lookup, questID, dilemmaID string, triggers content.Triggers) (game.NextStep, string) {
	switch {
	case triggers.Battle:
		return game.NextBattle, ""
	case triggers.Alliance:
		return game.NextAlliance, ""
	case triggers.MediationID != "":
		return game.NextMediation, ""
	case triggers.NextDilemmaID != "":
		return game.NextDilemma, triggers.NextDilemmaID
	case triggers.QuestComplete:
		return game.NextQuestComplete, ""
	}
	quest, ok := tables.Quest(questID)
	if !ok {
		return game.NextQuestComplete, ""
	}
	index, ok := quest.DilemmaIndex(dilemmaID)
	if !ok || index >= len(quest.DilemmaIDs)-1 {
		return game.NextQuestComplete, ""
	}
	return game.NextDilemma, quest.DilemmaIDs[index+1]
}

// ownedLosses returns the lost ids the player owns, without duplicates.
func ownedLosses(view View, ids []string) []string {
	var losses []string
	for _, id := range ids {
		if view.owns(id) && !slices.Contains(losses, id) {
			losses = append(losses, id)
		}
	}
	return losses
}

func countGains(view View, lookup content.Lookup, ids []string) int {
	var gains []string
	for _, id := range ids {
		if _, ok := lookup.Card(id); !ok || view.owns(id) || slices.Contains(gains, id) {
			continue
		}
		gains = append(gains, id)
	}
	return len(gains)
}

// AcknowledgeChoiceConsequence closes the consequence screen and moves the
// quest to whatever the choice triggered.
func AcknowledgeChoiceConsequence(view View, tables Content, now time.Time) ([]event.Event, error) {
	if err := game.RequireInProgress(game.SliceMakeChoice, view.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceMakeChoice, view.Phase, game.PhaseChoiceConsequence); err != nil {
		return nil, err
	}
	pending := view.PendingChoiceConsequence
	if pending == nil {
		return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeConsequenceMissing, "no consequence to acknowledge")
	}
	quest := view.ActiveQuest
	if quest == nil {
		return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeChoiceConsequenceAcknowledged, game.ChoiceConsequenceAcknowledgedPayload{
		DilemmaID: pending.DilemmaID,
		ChoiceID:  pending.ChoiceID,
	})

	switch pending.TriggersNext {
	case game.NextDilemma:
		dilemma, ok := tables.Dilemma(pending.NextDilemmaID)
		if !ok {
			return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeDilemmaNotFound,
				fmt.Sprintf("dilemma %s not found", pending.NextDilemmaID), "dilemma_id", pending.NextDilemmaID)
		}
		index := quest.CurrentDilemmaIndex
		if def, ok := tables.Quest(quest.QuestID); ok {
			if i, ok := def.DilemmaIndex(dilemma.ID); ok {
				index = i
			}
		}
		emit.Emit(game.EventTypeDilemmaPresented, game.DilemmaPresentedPayload{
			QuestID:      quest.QuestID,
			DilemmaID:    dilemma.ID,
			DilemmaIndex: index,
		})
		emit.PhaseChange(view.Phase, game.PhaseNarrative)
	case game.NextBattle:
		def, ok := tables.Quest(quest.QuestID)
		if !ok || def.Battle == nil {
			return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeBattleUndefined,
				fmt.Sprintf("quest %s has no battle", quest.QuestID), "quest_id", quest.QuestID)
		}
		emit.Emit(game.EventTypeBattleTriggered, game.BattleTriggered(*quest, *def.Battle))
		emit.PhaseChange(view.Phase, game.PhaseCardSelection)
	case game.NextAlliance:
		emit.PhaseChange(view.Phase, game.PhaseAlliance)
	case game.NextMediation:
		mediation, ok := tables.Mediation(pending.MediationID)
		if !ok {
			return nil, game.Reject(game.SliceMakeChoice, game.KindMissing, apperrors.CodeMediationNotFound,
				fmt.Sprintf("mediation %s not found", pending.MediationID), "mediation_id", pending.MediationID)
		}
		emit.Emit(game.EventTypeMediationStarted, game.MediationStartedPayload{
			MediationID: mediation.ID,
			QuestID:     quest.QuestID,
			Parties:     mediation.Parties,
		})
		emit.PhaseChange(view.Phase, game.PhaseMediation)
	case game.NextQuestComplete:
		err := campaign.CompleteQuest(emit, game.SliceMakeChoice, campaign.Progress{
			Phase:           view.Phase,
			ActiveQuest:     quest,
			CompletedQuests: view.CompletedQuests,
			Bounty:          view.Bounty,
		}, tables)
		if err != nil {
			return nil, err
		}
	default:
		return nil, game.Reject(game.SliceMakeChoice, game.KindStructure, apperrors.CodeConsequenceMissing,
			fmt.Sprintf("unknown next step %q", pending.TriggersNext))
	}
	return emit.Events()
}
