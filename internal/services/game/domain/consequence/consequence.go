// Package consequence decides the screens after a quest's conflict is
// settled: paying out the outcome and moving on to the post-battle dilemma
// or the quest summary.
package consequence

import (
	"fmt"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/campaign"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeAcknowledgeOutcome  command.Type = "ACKNOWLEDGE_OUTCOME"
	CommandTypeContinueToNextPhase command.Type = "CONTINUE_TO_NEXT_PHASE"
)

// Commands returns the consequence command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeAcknowledgeOutcome},
		{Type: CommandTypeContinueToNextPhase},
	}
}

// View is the state the consequence handlers read.
type View struct {
	Status          game.Status
	Phase           game.Phase
	ActiveQuest     *game.ActiveQuest
	CompletedQuests []game.CompletedQuest
	Reputation      map[string]int
	Bounty          int
}

// ViewOf projects the consequence view from state.
func ViewOf(s game.State) View {
	return View{
		Status:          s.Status,
		Phase:           s.Phase,
		ActiveQuest:     s.ActiveQuest,
		CompletedQuests: s.CompletedQuests,
		Reputation:      s.Reputation,
		Bounty:          s.Bounty,
	}
}

func (v View) progress() campaign.Progress {
	return campaign.Progress{
		Phase:           v.Phase,
		ActiveQuest:     v.ActiveQuest,
		CompletedQuests: v.CompletedQuests,
		Bounty:          v.Bounty,
	}
}

func (v View) resolution() (*game.Resolution, error) {
	if err := game.RequireInProgress(game.SliceConsequence, v.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceConsequence, v.Phase, game.PhaseConsequence); err != nil {
		return nil, err
	}
	if v.ActiveQuest == nil {
		return nil, game.Reject(game.SliceConsequence, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}
	if v.ActiveQuest.Resolution == nil {
		return nil, game.Reject(game.SliceConsequence, game.KindMissing, apperrors.CodeResolutionMissing,
			"quest conflict is not settled", "quest_id", v.ActiveQuest.QuestID)
	}
	return v.ActiveQuest.Resolution, nil
}

// AcknowledgeOutcome pays the quest's bounty for the settled outcome and
// applies the quest faction's reputation reward.
func AcknowledgeOutcome(view View, tables campaign.QuestTables, now time.Time) ([]event.Event, error) {
	resolution, err := view.resolution()
	if err != nil {
		return nil, err
	}
	if resolution.Acknowledged {
		return nil, game.Reject(game.SliceConsequence, game.KindRule, apperrors.CodeOutcomeAlreadyAcked,
			"outcome already acknowledged", "quest_id", view.ActiveQuest.QuestID)
	}
	quest, ok := tables.Quest(view.ActiveQuest.QuestID)
	if !ok {
		return nil, game.Reject(game.SliceConsequence, game.KindMissing, apperrors.CodeQuestNotFound,
			fmt.Sprintf("quest %s not found", view.ActiveQuest.QuestID), "quest_id", view.ActiveQuest.QuestID)
	}
	reward := game.Reward(quest.BaseBounty, resolution.Modifier, view.ActiveQuest.AllianceShare())

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeOutcomeAcknowledged, game.OutcomeAcknowledgedPayload{
		QuestID:      view.ActiveQuest.QuestID,
		Source:       resolution.Source,
		Outcome:      resolution.Outcome,
		Modifier:     resolution.Modifier,
		BountyReward: reward,
	})
	if reward != 0 {
		emit.Emit(game.EventTypeBountyModified, game.BountyModifiedPayload{
			Amount:        reward,
			PreviousValue: view.Bounty,
			NewValue:      max(view.Bounty+reward, 0),
			Reason:        "outcome " + string(resolution.Outcome),
		})
	}
	if delta := resolution.Outcome.ReputationReward(); delta != 0 {
		ledger := game.NewLedger(view.Reputation)
		emit.Emit(game.EventTypeReputationChanged,
			ledger.Change(view.ActiveQuest.FactionID, delta, "outcome "+string(resolution.Outcome)))
	}
	return emit.Events()
}

// ContinueToNextPhase leaves the consequence screen once the outcome has been
// acknowledged, or resumes the narrative from the post-battle dilemma screen.
func ContinueToNextPhase(view View, tables campaign.QuestTables, now time.Time) ([]event.Event, error) {
	if err := game.RequireInProgress(game.SliceConsequence, view.Status); err != nil {
		return nil, err
	}
	emit := game.NewEmitter(now)
	if view.Phase == game.PhasePostBattleDilemma {
		emit.PhaseChange(view.Phase, game.PhaseNarrative)
		return emit.Events()
	}

	resolution, err := view.resolution()
	if err != nil {
		return nil, err
	}
	if !resolution.Acknowledged {
		return nil, game.Reject(game.SliceConsequence, game.KindRule, apperrors.CodeOutcomeNotAcknowledged,
			"outcome must be acknowledged first", "quest_id", view.ActiveQuest.QuestID)
	}

	if resolution.Outcome == game.OutcomeDefeat {
		if err := campaign.FailQuest(emit, game.SliceConsequence, view.progress(), tables, "defeated in battle"); err != nil {
			return nil, err
		}
		return emit.Events()
	}
	if quest, ok := tables.Quest(view.ActiveQuest.QuestID); ok && quest.PostBattleDilemmaID != "" {
		emit.Emit(game.EventTypeDilemmaPresented, game.DilemmaPresentedPayload{
			QuestID:      quest.ID,
			DilemmaID:    quest.PostBattleDilemmaID,
			DilemmaIndex: view.ActiveQuest.CurrentDilemmaIndex,
			PostBattle:   true,
		})
		emit.PhaseChange(view.Phase, game.PhasePostBattleDilemma)
		return emit.Events()
	}
	if err := campaign.CompleteQuest(emit, game.SliceConsequence, view.progress(), tables); err != nil {
		return nil, err
	}
	return emit.Events()
}
