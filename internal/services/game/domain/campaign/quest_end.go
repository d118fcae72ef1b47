package campaign

import (
	"slices"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// QuestTables is the content read when a quest ends.
type QuestTables interface {
	Quest(id string) (content.Quest, bool)
	UnlockedQuestIDs(completed []string) []string
}

// Progress is the state read when a quest ends.
type Progress struct {
	Phase           game.Phase
	ActiveQuest     *game.ActiveQuest
	CompletedQuests []game.CompletedQuest
	Bounty          int
}

// CompleteQuest emits the successful end of the active quest. A quest that
// ends without a battle or mediation pays its base bounty here.
func CompleteQuest(emit *game.Emitter, slice game.Slice, progress Progress, tables QuestTables) error {
	quest := progress.ActiveQuest
	if quest == nil {
		return game.Reject(slice, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}
	earned := quest.BountyEarned
	var outcome game.Outcome
	if quest.Resolution != nil {
		outcome = quest.Resolution.Outcome
	} else if def, ok := tables.Quest(quest.QuestID); ok && def.BaseBounty > 0 {
		reward := game.Reward(def.BaseBounty, game.VictoryModifier, quest.AllianceShare())
		if reward > 0 {
			emit.Emit(game.EventTypeBountyModified, game.BountyModifiedPayload{
				Amount:        reward,
				PreviousValue: progress.Bounty,
				NewValue:      progress.Bounty + reward,
				Reason:        "quest reward",
			})
			earned += reward
		}
	}

	emit.Emit(game.EventTypeQuestCompleted, game.QuestCompletedPayload{
		QuestID:          quest.QuestID,
		FactionID:        quest.FactionID,
		Outcome:          outcome,
		BountyEarned:     earned,
		UnlockedQuestIDs: unlockedAfter(progress.CompletedQuests, quest.QuestID, true, tables),
	})
	emit.Emit(game.EventTypeQuestSummaryPresented, game.QuestSummaryPresentedPayload{
		Summary: summary(progress, game.QuestResultCompleted, outcome, earned),
	})
	emit.PhaseChange(progress.Phase, game.PhaseQuestSummary)
	return nil
}

// FailQuest emits the failed end of the active quest.
func FailQuest(emit *game.Emitter, slice game.Slice, progress Progress, tables QuestTables, reason string) error {
	quest := progress.ActiveQuest
	if quest == nil {
		return game.Reject(slice, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}
	emit.Emit(game.EventTypeQuestFailed, game.QuestFailedPayload{
		QuestID:          quest.QuestID,
		FactionID:        quest.FactionID,
		Reason:           reason,
		UnlockedQuestIDs: unlockedAfter(progress.CompletedQuests, quest.QuestID, false, tables),
	})
	emit.Emit(game.EventTypeQuestSummaryPresented, game.QuestSummaryPresentedPayload{
		Summary: summary(progress, game.QuestResultFailed, game.OutcomeDefeat, quest.BountyEarned),
	})
	emit.PhaseChange(progress.Phase, game.PhaseQuestSummary)
	return nil
}

// unlockedAfter lists quests offered once questID finishes. Only completed
// quests satisfy prerequisites; finished quests are never offered again.
func unlockedAfter(history []game.CompletedQuest, questID string, succeeded bool, tables QuestTables) []string {
	var completed, finished []string
	for _, record := range history {
		finished = append(finished, record.QuestID)
		if record.Result == game.QuestResultCompleted {
			completed = append(completed, record.QuestID)
		}
	}
	finished = append(finished, questID)
	if succeeded {
		completed = append(completed, questID)
	}
	unlocked := tables.UnlockedQuestIDs(completed)
	return slices.DeleteFunc(unlocked, func(id string) bool {
		return slices.Contains(finished, id)
	})
}

func summary(progress Progress, result game.QuestResult, outcome game.Outcome, earned int) game.QuestSummary {
	quest := progress.ActiveQuest
	var allies []string
	for _, alliance := range quest.Alliances {
		allies = append(allies, alliance.FactionID)
	}
	return game.QuestSummary{
		QuestID:      quest.QuestID,
		FactionID:    quest.FactionID,
		Result:       result,
		Outcome:      outcome,
		BountyEarned: earned,
		CardsGained:  slices.Clone(quest.CardsGained),
		Alliances:    allies,
		BattlesWon:   quest.BattlesWon,
		BattlesLost:  quest.BattlesLost,
		QuestNumber:  len(progress.CompletedQuests) + 1,
	}
}
