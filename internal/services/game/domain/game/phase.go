package game

import (
	"math"
	"time"
)

// Status is the lifecycle of a game.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusEnded      Status = "ended"
)

// Phase is the screen-level state machine discriminator.
type Phase string

const (
	PhaseNotStarted        Phase = "not_started"
	PhaseQuestHub          Phase = "quest_hub"
	PhaseNarrative         Phase = "narrative"
	PhaseChoiceConsequence Phase = "choice_consequence"
	PhaseAlliance          Phase = "alliance"
	PhaseMediation         Phase = "mediation"
	PhaseCardSelection     Phase = "card_selection"
	PhaseDeployment        Phase = "deployment"
	PhaseBattle            Phase = "battle"
	PhaseConsequence       Phase = "consequence"
	PhasePostBattleDilemma Phase = "post_battle_dilemma"
	PhaseQuestSummary      Phase = "quest_summary"
	PhaseEnding            Phase = "ending"
)

// Phases lists every phase in state machine order.
func Phases() []Phase {
	return []Phase{
		PhaseNotStarted,
		PhaseQuestHub,
		PhaseNarrative,
		PhaseChoiceConsequence,
		PhaseAlliance,
		PhaseMediation,
		PhaseCardSelection,
		PhaseDeployment,
		PhaseBattle,
		PhaseConsequence,
		PhasePostBattleDilemma,
		PhaseQuestSummary,
		PhaseEnding,
	}
}

// Rules shared by every slice.
const (
	ReputationMin = -100
	ReputationMax = 100

	// FleetSize is both the committed fleet size and the number of battle rounds.
	FleetSize = 5
	// CampaignLength is the number of quests recorded before the game ends.
	CampaignLength = 3
	// MaxAlliances caps alliances formed for one quest.
	MaxAlliances = 2

	// LockThreshold locks a faction's cards when reputation falls below it.
	LockThreshold = -50
	// EndingThreshold is the reputation a faction needs to claim the ending.
	EndingThreshold = 25
	// IndependentEnding is used when no faction reaches EndingThreshold.
	IndependentEnding = "independent"

	CompromiseModifier = 0.5
	DrawModifier       = 0.5
	VictoryModifier    = 1.0
	DefeatModifier     = 0.0
)

// BattleDelay separates the end of a battle from the consequence screen so
// consumers can pace the replay.
const BattleDelay = 7 * time.Second

// ClampReputation bounds value to [ReputationMin, ReputationMax].
func ClampReputation(value int) int {
	return min(max(value, ReputationMin), ReputationMax)
}

// Reward is the bounty paid for a quest: base scaled by the outcome modifier,
// less the share promised to allies, rounded to the nearest credit.
func Reward(base int, modifier, allianceShare float64) int {
	share := min(max(allianceShare, 0), 1)
	return int(math.Round(float64(base) * modifier * (1 - share)))
}
