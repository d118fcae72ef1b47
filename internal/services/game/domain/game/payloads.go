package game

// Event payloads. Field names are the wire format stored in the event log.

type GameStartedPayload struct {
	PlayerID          string   `json:"player_id"`
	FactionIDs        []string `json:"faction_ids"`
	StartingBounty    int      `json:"starting_bounty"`
	AvailableQuestIDs []string `json:"available_quest_ids"`
}

type QuestAcceptedPayload struct {
	QuestID   string `json:"quest_id"`
	FactionID string `json:"faction_id"`
}

// DilemmaPresentedPayload presents a dilemma. PostBattle marks the quest's
// post-battle dilemma, which sits outside the ordered chain.
type DilemmaPresentedPayload struct {
	QuestID      string `json:"quest_id"`
	DilemmaID    string `json:"dilemma_id"`
	DilemmaIndex int    `json:"dilemma_index"`
	PostBattle   bool   `json:"post_battle,omitempty"`
}

type ChoiceMadePayload struct {
	QuestID   string `json:"quest_id"`
	DilemmaID string `json:"dilemma_id"`
	ChoiceID  string `json:"choice_id"`
}

// ReputationChangedPayload carries the clamped NewValue the fold stores.
// Delta is the requested change and is informational.
type ReputationChangedPayload struct {
	FactionID     string `json:"faction_id"`
	Delta         int    `json:"delta"`
	PreviousValue int    `json:"previous_value"`
	NewValue      int    `json:"new_value"`
	Reason        string `json:"reason,omitempty"`
}

type CardGainedPayload struct {
	CardID     string     `json:"card_id"`
	Name       string     `json:"name"`
	FactionID  string     `json:"faction_id,omitempty"`
	Attack     int        `json:"attack"`
	Defense    int        `json:"defense"`
	Hull       int        `json:"hull"`
	Agility    int        `json:"agility"`
	EnergyCost int        `json:"energy_cost"`
	Source     CardSource `json:"source"`
}

type CardLostPayload struct {
	CardID string `json:"card_id"`
	Reason string `json:"reason,omitempty"`
}

type CardLockedPayload struct {
	CardID string `json:"card_id"`
	Reason string `json:"reason"`
}

type CardUnlockedPayload struct {
	CardID string `json:"card_id"`
}

// BountyModifiedPayload carries the floored NewValue the fold stores.
type BountyModifiedPayload struct {
	Amount        int    `json:"amount"`
	PreviousValue int    `json:"previous_value"`
	NewValue      int    `json:"new_value"`
	Reason        string `json:"reason,omitempty"`
}

type FlagSetPayload struct {
	Flag  string `json:"flag"`
	Value bool   `json:"value"`
}

type ChoiceConsequencePresentedPayload struct {
	Consequence ChoiceConsequence `json:"consequence"`
}

type ChoiceConsequenceAcknowledgedPayload struct {
	DilemmaID string `json:"dilemma_id"`
	ChoiceID  string `json:"choice_id"`
}

type PhaseChangedPayload struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

type AllianceFormedPayload struct {
	QuestID     string   `json:"quest_id"`
	FactionID   string   `json:"faction_id"`
	BountyShare float64  `json:"bounty_share"`
	IsSecret    bool     `json:"is_secret,omitempty"`
	CardIDs     []string `json:"card_ids,omitempty"`
}

type AlliancesFinalizedPayload struct {
	QuestID    string   `json:"quest_id"`
	FactionIDs []string `json:"faction_ids"`
}

type MediationStartedPayload struct {
	MediationID string   `json:"mediation_id"`
	QuestID     string   `json:"quest_id"`
	Parties     []string `json:"parties"`
}

type MediationLeanedPayload struct {
	MediationID     string `json:"mediation_id"`
	TowardFactionID string `json:"toward_faction_id"`
	AwayFactionID   string `json:"away_faction_id"`
}

type MediationRefusedPayload struct {
	MediationID string `json:"mediation_id"`
}

type CompromiseAcceptedPayload struct {
	MediationID    string  `json:"mediation_id"`
	BountyModifier float64 `json:"bounty_modifier"`
}

type BattleTriggeredPayload struct {
	BattleID     string `json:"battle_id"`
	QuestID      string `json:"quest_id"`
	OpponentType string `json:"opponent_type"`
	FactionID    string `json:"faction_id,omitempty"`
	Difficulty   int    `json:"difficulty"`
	Context      string `json:"context,omitempty"`
}

type CardSelectedPayload struct {
	CardID string `json:"card_id"`
}

type CardDeselectedPayload struct {
	CardID string `json:"card_id"`
}

type FleetCommittedPayload struct {
	CardIDs []string `json:"card_ids"`
}

// CardPositionedPayload places a card in a 1-based fleet slot.
type CardPositionedPayload struct {
	CardID   string `json:"card_id"`
	Position int    `json:"position"`
}

// OrdersLockedPayload records the final positions and the seed that drives
// opponent generation and every roll of the battle.
type OrdersLockedPayload struct {
	BattleID   string            `json:"battle_id"`
	Positions  [FleetSize]string `json:"positions"`
	Seed       int64             `json:"seed"`
	SeedSource string            `json:"seed_source"`
}

// Side names a combatant side.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Initiative names who strikes first in a round.
type Initiative string

const (
	InitiativePlayer       Initiative = "player"
	InitiativeOpponent     Initiative = "opponent"
	InitiativeSimultaneous Initiative = "simultaneous"
)

// RoundOutcome is the result of one round.
type RoundOutcome string

const (
	RoundPlayerWon   RoundOutcome = "player_won"
	RoundOpponentWon RoundOutcome = "opponent_won"
	RoundDraw        RoundOutcome = "draw"
)

// Combatant is a card's public battle stats.
type Combatant struct {
	CardID    string `json:"card_id"`
	Name      string `json:"name"`
	FactionID string `json:"faction_id,omitempty"`
	Attack    int    `json:"attack"`
	Defense   int    `json:"defense"`
	Hull      int    `json:"hull"`
	Agility   int    `json:"agility"`
}

// AttackRoll is one d20 attack: Total = Base + Modifier, and it hits when
// Total reaches Target.
type AttackRoll struct {
	Base     int  `json:"base"`
	Modifier int  `json:"modifier"`
	Total    int  `json:"total"`
	Target   int  `json:"target"`
	Hit      bool `json:"hit"`
}

type RoundStartedPayload struct {
	BattleID string `json:"battle_id"`
	Round    int    `json:"round"`
}

type CardsRevealedPayload struct {
	BattleID string    `json:"battle_id"`
	Round    int       `json:"round"`
	Player   Combatant `json:"player"`
	Opponent Combatant `json:"opponent"`
}

type InitiativeResolvedPayload struct {
	BattleID        string     `json:"battle_id"`
	Round           int        `json:"round"`
	Initiative      Initiative `json:"initiative"`
	PlayerAgility   int        `json:"player_agility"`
	OpponentAgility int        `json:"opponent_agility"`
}

type AttackRolledPayload struct {
	BattleID string     `json:"battle_id"`
	Round    int        `json:"round"`
	Attacker Side       `json:"attacker"`
	Roll     AttackRoll `json:"roll"`
}

type RoundResolvedPayload struct {
	BattleID     string       `json:"battle_id"`
	Round        int          `json:"round"`
	Player       Combatant    `json:"player"`
	Opponent     Combatant    `json:"opponent"`
	PlayerRoll   AttackRoll   `json:"player_roll"`
	OpponentRoll AttackRoll   `json:"opponent_roll"`
	Initiative   Initiative   `json:"initiative"`
	Outcome      RoundOutcome `json:"outcome"`
}

type BattleResolvedPayload struct {
	BattleID     string         `json:"battle_id"`
	Outcome      Outcome        `json:"outcome"`
	PlayerWins   int            `json:"player_wins"`
	OpponentWins int            `json:"opponent_wins"`
	Draws        int            `json:"draws"`
	Rounds       []RoundOutcome `json:"rounds"`
}

type OutcomeAcknowledgedPayload struct {
	QuestID      string           `json:"quest_id"`
	Source       ResolutionSource `json:"source"`
	Outcome      Outcome          `json:"outcome"`
	Modifier     float64          `json:"modifier"`
	BountyReward int              `json:"bounty_reward"`
}

type QuestCompletedPayload struct {
	QuestID          string   `json:"quest_id"`
	FactionID        string   `json:"faction_id"`
	Outcome          Outcome  `json:"outcome,omitempty"`
	BountyEarned     int      `json:"bounty_earned"`
	UnlockedQuestIDs []string `json:"unlocked_quest_ids"`
}

type QuestFailedPayload struct {
	QuestID          string   `json:"quest_id"`
	FactionID        string   `json:"faction_id"`
	Reason           string   `json:"reason"`
	UnlockedQuestIDs []string `json:"unlocked_quest_ids"`
}

type QuestSummaryPresentedPayload struct {
	Summary QuestSummary `json:"summary"`
}

type QuestSummaryAcknowledgedPayload struct {
	QuestID string `json:"quest_id"`
}

type GameEndedPayload struct {
	EndingID        string `json:"ending_id"`
	QuestsCompleted int    `json:"quests_completed"`
	QuestsFailed    int    `json:"quests_failed"`
	FinalBounty     int    `json:"final_bounty"`
}
