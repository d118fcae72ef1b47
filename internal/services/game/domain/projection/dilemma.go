package projection

import (
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// ChoiceView is one answer offered by a dilemma.
type ChoiceView struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	Reputation  map[string]int `json:"reputation,omitempty"`
	CardsGained []string       `json:"cards_gained,omitempty"`
	CardsLost   []string       `json:"cards_lost,omitempty"`
	Bounty      int            `json:"bounty,omitempty"`
	// LeadsTo previews what follows the choice.
	LeadsTo game.NextStep `json:"leads_to"`
}

// DilemmaView is the narrative screen.
type DilemmaView struct {
	QuestID    string       `json:"quest_id"`
	QuestName  string       `json:"quest_name"`
	DilemmaID  string       `json:"dilemma_id"`
	Title      string       `json:"title"`
	Narrative  string       `json:"narrative"`
	Index      int          `json:"index"`
	Total      int          `json:"total"`
	PostBattle bool         `json:"post_battle"`
	Choices    []ChoiceView `json:"choices"`
}

// Dilemma returns the presented dilemma. It reports false when no dilemma
// is on screen or its content is missing.
func Dilemma(s game.State, lookup Lookup) (DilemmaView, bool) {
	if s.Phase != game.PhaseNarrative && s.Phase != game.PhasePostBattleDilemma {
		return DilemmaView{}, false
	}
	if s.ActiveQuest == nil || s.CurrentDilemmaID == "" {
		return DilemmaView{}, false
	}
	dilemma, ok := lookup.Dilemma(s.CurrentDilemmaID)
	if !ok {
		return DilemmaView{}, false
	}
	view := DilemmaView{
		QuestID:   s.ActiveQuest.QuestID,
		QuestName: s.ActiveQuest.QuestID,
		DilemmaID: dilemma.ID,
		Title:     dilemma.Title,
		Narrative: dilemma.Narrative,
		Index:     s.ActiveQuest.CurrentDilemmaIndex,
	}
	if quest, ok := lookup.Quest(s.ActiveQuest.QuestID); ok {
		view.QuestName = quest.Name
		view.Total = len(quest.DilemmaIDs)
		if _, inChain := quest.DilemmaIndex(dilemma.ID); !inChain && quest.PostBattleDilemmaID == dilemma.ID {
			view.PostBattle = true
		}
	}
	for _, choice := range dilemma.Choices {
		view.Choices = append(view.Choices, ChoiceView{
			ID:          choice.ID,
			Label:       choice.Label,
			Reputation:  choice.Consequences.Reputation,
			CardsGained: choice.Consequences.CardsGained,
			CardsLost:   choice.Consequences.CardsLost,
			Bounty:      choice.Consequences.Bounty,
			LeadsTo:     leadsTo(choice.Triggers),
		})
	}
	return view, true
}

func leadsTo(t content.Triggers) game.NextStep {
	switch {
	case t.Battle:
		return game.NextBattle
	case t.Alliance:
		return game.NextAlliance
	case t.MediationID != "":
		return game.NextMediation
	case t.NextDilemmaID != "":
		return game.NextDilemma
	default:
		return game.NextQuestComplete
	}
}

// ConsequenceKind separates the two consequence screens.
type ConsequenceKind string

const (
	ConsequenceChoice  ConsequenceKind = "choice"
	ConsequenceOutcome ConsequenceKind = "outcome"
)

// OutcomeView is a settled quest conflict.
type OutcomeView struct {
	Source       game.ResolutionSource `json:"source"`
	Outcome      game.Outcome          `json:"outcome"`
	Modifier     float64               `json:"modifier"`
	Acknowledged bool                  `json:"acknowledged"`
	PlayerWins   int                   `json:"player_wins,omitempty"`
	OpponentWins int                   `json:"opponent_wins,omitempty"`
	Draws        int                   `json:"draws,omitempty"`
}

// ConsequenceView is either a choice consequence or a quest outcome.
type ConsequenceView struct {
	Kind    ConsequenceKind         `json:"kind"`
	QuestID string                  `json:"quest_id"`
	Choice  *game.ChoiceConsequence `json:"choice,omitempty"`
	Outcome *OutcomeView            `json:"outcome,omitempty"`
}

// Consequence returns the consequence on screen, if any.
func Consequence(s game.State) (ConsequenceView, bool) {
	switch s.Phase {
	case game.PhaseChoiceConsequence:
		if s.PendingChoiceConsequence == nil {
			return ConsequenceView{}, false
		}
		pending := *s.PendingChoiceConsequence
		return ConsequenceView{Kind: ConsequenceChoice, QuestID: pending.QuestID, Choice: &pending}, true
	case game.PhaseConsequence:
		if s.ActiveQuest == nil || s.ActiveQuest.Resolution == nil {
			return ConsequenceView{}, false
		}
		resolution := s.ActiveQuest.Resolution
		outcome := &OutcomeView{
			Source:       resolution.Source,
			Outcome:      resolution.Outcome,
			Modifier:     resolution.Modifier,
			Acknowledged: resolution.Acknowledged,
		}
		if resolution.Source == game.ResolutionBattle && s.CurrentBattle != nil {
			outcome.PlayerWins = s.CurrentBattle.PlayerWins
			outcome.OpponentWins = s.CurrentBattle.OpponentWins
			outcome.Draws = s.CurrentBattle.Draws
		}
		return ConsequenceView{Kind: ConsequenceOutcome, QuestID: s.ActiveQuest.QuestID, Outcome: outcome}, true
	default:
		return ConsequenceView{}, false
	}
}
