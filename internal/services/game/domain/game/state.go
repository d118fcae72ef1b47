package game

import (
	"slices"
	"time"
)

// SchemaVersion tags snapshots of State.
const SchemaVersion = 2

// CardSource records how a card entered the player's fleet.
type CardSource string

const (
	CardSourceStarter  CardSource = "starter"
	CardSourceQuest    CardSource = "quest"
	CardSourceAlliance CardSource = "alliance"
	CardSourceChoice   CardSource = "choice"
	CardSourceUnlock   CardSource = "unlock"
)

// OwnedCard is a card in the player's collection.
//
// Stats are copied from the content template when the card is gained and do
// not follow later template changes.
type OwnedCard struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	FactionID  string     `json:"faction_id,omitempty"`
	Attack     int        `json:"attack"`
	Defense    int        `json:"defense"`
	Hull       int        `json:"hull"`
	Agility    int        `json:"agility"`
	EnergyCost int        `json:"energy_cost"`
	Source     CardSource `json:"source"`
	AcquiredAt time.Time  `json:"acquired_at"`
	IsLocked   bool       `json:"is_locked,omitempty"`
	LockReason string     `json:"lock_reason,omitempty"`
}

// Alliance is an alliance formed for the active quest.
type Alliance struct {
	FactionID   string  `json:"faction_id"`
	BountyShare float64 `json:"bounty_share"`
	IsSecret    bool    `json:"is_secret,omitempty"`
}

// ResolutionSource is what settled the quest's conflict.
type ResolutionSource string

const (
	ResolutionBattle    ResolutionSource = "battle"
	ResolutionMediation ResolutionSource = "mediation"
)

// Outcome is how a quest's conflict ended.
type Outcome string

const (
	OutcomeVictory    Outcome = "victory"
	OutcomeDefeat     Outcome = "defeat"
	OutcomeDraw       Outcome = "draw"
	OutcomeCompromise Outcome = "compromise"
)

// Modifier returns the bounty multiplier for the outcome.
func (o Outcome) Modifier() float64 {
	switch o {
	case OutcomeVictory:
		return VictoryModifier
	case OutcomeDraw:
		return DrawModifier
	case OutcomeCompromise:
		return CompromiseModifier
	default:
		return DefeatModifier
	}
}

// ReputationReward returns the quest faction's reputation change for o.
func (o Outcome) ReputationReward() int {
	switch o {
	case OutcomeVictory:
		return 10
	case OutcomeCompromise:
		return 5
	case OutcomeDefeat:
		return -10
	default:
		return 0
	}
}

// Resolution is the settled conflict of the active quest.
type Resolution struct {
	Source       ResolutionSource `json:"source"`
	Outcome      Outcome          `json:"outcome"`
	Modifier     float64          `json:"modifier"`
	Acknowledged bool             `json:"acknowledged,omitempty"`
}

// ActiveQuest is the quest in progress. It is cleared when the quest
// completes or fails.
type ActiveQuest struct {
	QuestID             string      `json:"quest_id"`
	FactionID           string      `json:"faction_id"`
	CurrentDilemmaIndex int         `json:"current_dilemma_index"`
	DilemmasCompleted   int         `json:"dilemmas_completed"`
	Alliances           []Alliance  `json:"alliances,omitempty"`
	BattlesWon          int         `json:"battles_won"`
	BattlesLost         int         `json:"battles_lost"`
	BattlesDrawn        int         `json:"battles_drawn"`
	BountyEarned        int         `json:"bounty_earned"`
	CardsGained         []string    `json:"cards_gained,omitempty"`
	Resolution          *Resolution `json:"resolution,omitempty"`
}

// AlliedWith reports whether the quest has an alliance with factionID.
func (q *ActiveQuest) AlliedWith(factionID string) bool {
	if q == nil {
		return false
	}
	for _, alliance := range q.Alliances {
		if alliance.FactionID == factionID {
			return true
		}
	}
	return false
}

// BattlesFought counts the quest's resolved battles of any outcome.
func (q ActiveQuest) BattlesFought() int {
	return q.BattlesWon + q.BattlesLost + q.BattlesDrawn
}

// AllianceShare returns the total bounty share promised to allies.
func (q *ActiveQuest) AllianceShare() float64 {
	if q == nil {
		return 0
	}
	total := 0.0
	for _, alliance := range q.Alliances {
		total += alliance.BountyShare
	}
	return min(total, 1)
}

// QuestResult records how a quest left the active slot.
type QuestResult string

const (
	QuestResultCompleted QuestResult = "completed"
	QuestResultFailed    QuestResult = "failed"
)

// CompletedQuest is one entry in the campaign history.
type CompletedQuest struct {
	QuestID      string      `json:"quest_id"`
	FactionID    string      `json:"faction_id"`
	Result       QuestResult `json:"result"`
	BountyEarned int         `json:"bounty_earned"`
	FinishedAt   time.Time   `json:"finished_at"`
}

// BattlePhase tracks a battle from fleet selection to resolution.
type BattlePhase string

const (
	BattlePhaseSelection  BattlePhase = "selection"
	BattlePhaseDeployment BattlePhase = "deployment"
	BattlePhaseExecution  BattlePhase = "execution"
	BattlePhaseResolved   BattlePhase = "resolved"
)

// BattleState is the battle of the active quest.
//
// Positions always has FleetSize slots and a card id occupies at most one.
type BattleState struct {
	BattleID          string                 `json:"battle_id"`
	Phase             BattlePhase            `json:"phase"`
	OpponentType      string                 `json:"opponent_type"`
	OpponentFactionID string                 `json:"opponent_faction_id,omitempty"`
	Difficulty        int                    `json:"difficulty"`
	Context           string                 `json:"context,omitempty"`
	SelectedCardIDs   []string               `json:"selected_card_ids,omitempty"`
	Positions         [FleetSize]string      `json:"positions"`
	Seed              int64                  `json:"seed,omitempty"`
	CurrentRound      int                    `json:"current_round"`
	Rounds            []RoundResolvedPayload `json:"rounds,omitempty"`
	Outcome           Outcome                `json:"outcome,omitempty"`
	PlayerWins        int                    `json:"player_wins"`
	OpponentWins      int                    `json:"opponent_wins"`
	Draws             int                    `json:"draws"`
}

// IsSelected reports whether cardID is in the committed or pending fleet.
func (b *BattleState) IsSelected(cardID string) bool {
	return b != nil && slices.Contains(b.SelectedCardIDs, cardID)
}

// PositionOf returns the 1-based slot holding cardID, or 0.
func (b *BattleState) PositionOf(cardID string) int {
	if b == nil {
		return 0
	}
	for i, id := range b.Positions {
		if id == cardID {
			return i + 1
		}
	}
	return 0
}

// MediationState is the mediation in progress.
type MediationState struct {
	MediationID  string   `json:"mediation_id"`
	Parties      []string `json:"parties"`
	LeanedToward string   `json:"leaned_toward,omitempty"`
	LeanedAway   string   `json:"leaned_away,omitempty"`
}

// Leaned reports whether the player has leaned toward a party.
func (m *MediationState) Leaned() bool {
	return m != nil && m.LeanedToward != ""
}

// Stats are campaign-wide counters.
type Stats struct {
	QuestsCompleted       int `json:"quests_completed"`
	QuestsFailed          int `json:"quests_failed"`
	BattlesWon            int `json:"battles_won"`
	BattlesLost           int `json:"battles_lost"`
	BattlesDrawn          int `json:"battles_drawn"`
	ChoicesMade           int `json:"choices_made"`
	AlliancesFormed       int `json:"alliances_formed"`
	MediationsCompromised int `json:"mediations_compromised"`
	MediationsRefused     int `json:"mediations_refused"`
	CardsGained           int `json:"cards_gained"`
	CardsLost             int `json:"cards_lost"`
	BountyEarned          int `json:"bounty_earned"`
	BountySpent           int `json:"bounty_spent"`
}

// ChoiceRecord is one answered dilemma.
type ChoiceRecord struct {
	QuestID   string    `json:"quest_id"`
	DilemmaID string    `json:"dilemma_id"`
	ChoiceID  string    `json:"choice_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NextStep is what follows an acknowledged choice consequence.
type NextStep string

const (
	NextDilemma       NextStep = "dilemma"
	NextBattle        NextStep = "battle"
	NextAlliance      NextStep = "alliance"
	NextMediation     NextStep = "mediation"
	NextQuestComplete NextStep = "quest_complete"
)

// ReputationChange is a display summary of one reputation event.
type ReputationChange struct {
	FactionID string `json:"faction_id"`
	Delta     int    `json:"delta"`
	NewValue  int    `json:"new_value"`
}

// ChoiceConsequence is the pending consequence screen.
//
// TriggersNext selects which of the target fields applies: NextDilemmaID for
// NextDilemma and MediationID for NextMediation. The other kinds carry no
// target.
type ChoiceConsequence struct {
	QuestID           string             `json:"quest_id"`
	DilemmaID         string             `json:"dilemma_id"`
	ChoiceID          string             `json:"choice_id"`
	OutcomeText       string             `json:"outcome_text,omitempty"`
	ReputationChanges []ReputationChange `json:"reputation_changes,omitempty"`
	CardsGained       []string           `json:"cards_gained,omitempty"`
	CardsLost         []string           `json:"cards_lost,omitempty"`
	BountyChange      int                `json:"bounty_change,omitempty"`
	FlagsSet          []string           `json:"flags_set,omitempty"`
	TriggersNext      NextStep           `json:"triggers_next"`
	NextDilemmaID     string             `json:"next_dilemma_id,omitempty"`
	MediationID       string             `json:"mediation_id,omitempty"`
}

// QuestSummary is the pending end-of-quest screen.
type QuestSummary struct {
	QuestID      string      `json:"quest_id"`
	FactionID    string      `json:"faction_id"`
	Result       QuestResult `json:"result"`
	Outcome      Outcome     `json:"outcome,omitempty"`
	BountyEarned int         `json:"bounty_earned"`
	CardsGained  []string    `json:"cards_gained,omitempty"`
	Alliances    []string    `json:"alliances,omitempty"`
	BattlesWon   int         `json:"battles_won"`
	BattlesLost  int         `json:"battles_lost"`
	QuestNumber  int         `json:"quest_number"`
}

// State is the root game aggregate.
type State struct {
	PlayerID                 string             `json:"player_id,omitempty"`
	Status                   Status             `json:"status"`
	Phase                    Phase              `json:"phase"`
	Reputation               map[string]int     `json:"reputation"`
	OwnedCards               []OwnedCard        `json:"owned_cards,omitempty"`
	AvailableQuestIDs        []string           `json:"available_quest_ids,omitempty"`
	ActiveQuest              *ActiveQuest       `json:"active_quest,omitempty"`
	CompletedQuests          []CompletedQuest   `json:"completed_quests,omitempty"`
	CurrentDilemmaID         string             `json:"current_dilemma_id,omitempty"`
	CurrentBattle            *BattleState       `json:"current_battle,omitempty"`
	CurrentMediationID       string             `json:"current_mediation_id,omitempty"`
	Mediation                *MediationState    `json:"mediation,omitempty"`
	Bounty                   int                `json:"bounty"`
	Flags                    map[string]bool    `json:"flags,omitempty"`
	Stats                    Stats              `json:"stats"`
	ChoiceHistory            []ChoiceRecord     `json:"choice_history,omitempty"`
	PendingChoiceConsequence *ChoiceConsequence `json:"pending_choice_consequence,omitempty"`
	PendingQuestSummary      *QuestSummary      `json:"pending_quest_summary,omitempty"`
	EndingID                 string             `json:"ending_id,omitempty"`
}

// Initial returns the state before any event has been folded.
func Initial() State {
	return State{
		Status:     StatusNotStarted,
		Phase:      PhaseNotStarted,
		Reputation: map[string]int{},
	}
}

// Card returns the owned card with the given id.
func (s State) Card(cardID string) (OwnedCard, bool) {
	for _, card := range s.OwnedCards {
		if card.ID == cardID {
			return card, true
		}
	}
	return OwnedCard{}, false
}

// Owns reports whether the player owns cardID.
func (s State) Owns(cardID string) bool {
	_, ok := s.Card(cardID)
	return ok
}

// UnlockedCardCount returns how many owned cards can be fielded.
func (s State) UnlockedCardCount() int {
	count := 0
	for _, card := range s.OwnedCards {
		if !card.IsLocked {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Reputation = cloneMap(s.Reputation)
	out.Flags = cloneMap(s.Flags)
	out.OwnedCards = slices.Clone(s.OwnedCards)
	out.AvailableQuestIDs = slices.Clone(s.AvailableQuestIDs)
	out.CompletedQuests = slices.Clone(s.CompletedQuests)
	out.ChoiceHistory = slices.Clone(s.ChoiceHistory)
	if s.ActiveQuest != nil {
		quest := *s.ActiveQuest
		quest.Alliances = slices.Clone(s.ActiveQuest.Alliances)
		quest.CardsGained = slices.Clone(s.ActiveQuest.CardsGained)
		if s.ActiveQuest.Resolution != nil {
			resolution := *s.ActiveQuest.Resolution
			quest.Resolution = &resolution
		}
		out.ActiveQuest = &quest
	}
	if s.CurrentBattle != nil {
		battle := *s.CurrentBattle
		battle.SelectedCardIDs = slices.Clone(s.CurrentBattle.SelectedCardIDs)
		battle.Rounds = slices.Clone(s.CurrentBattle.Rounds)
		out.CurrentBattle = &battle
	}
	if s.Mediation != nil {
		mediation := *s.Mediation
		mediation.Parties = slices.Clone(s.Mediation.Parties)
		out.Mediation = &mediation
	}
	if s.PendingChoiceConsequence != nil {
		pending := *s.PendingChoiceConsequence
		pending.ReputationChanges = slices.Clone(pending.ReputationChanges)
		pending.CardsGained = slices.Clone(pending.CardsGained)
		pending.CardsLost = slices.Clone(pending.CardsLost)
		pending.FlagsSet = slices.Clone(pending.FlagsSet)
		out.PendingChoiceConsequence = &pending
	}
	if s.PendingQuestSummary != nil {
		summary := *s.PendingQuestSummary
		summary.CardsGained = slices.Clone(summary.CardsGained)
		summary.Alliances = slices.Clone(summary.Alliances)
		out.PendingQuestSummary = &summary
	}
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// compact clears empty optional collections so a state read back from its
// JSON encoding equals the folded one.
func (s *State) compact() {
	s.OwnedCards = nilIfEmpty(s.OwnedCards)
	s.AvailableQuestIDs = nilIfEmpty(s.AvailableQuestIDs)
	s.CompletedQuests = nilIfEmpty(s.CompletedQuests)
	s.ChoiceHistory = nilIfEmpty(s.ChoiceHistory)
	if len(s.Flags) == 0 {
		s.Flags = nil
	}
	if q := s.ActiveQuest; q != nil {
		q.Alliances = nilIfEmpty(q.Alliances)
		q.CardsGained = nilIfEmpty(q.CardsGained)
	}
	if b := s.CurrentBattle; b != nil {
		b.SelectedCardIDs = nilIfEmpty(b.SelectedCardIDs)
		b.Rounds = nilIfEmpty(b.Rounds)
	}
	if c := s.PendingChoiceConsequence; c != nil {
		c.ReputationChanges = nilIfEmpty(c.ReputationChanges)
		c.CardsGained = nilIfEmpty(c.CardsGained)
		c.CardsLost = nilIfEmpty(c.CardsLost)
		c.FlagsSet = nilIfEmpty(c.FlagsSet)
	}
	if q := s.PendingQuestSummary; q != nil {
		q.CardsGained = nilIfEmpty(q.CardsGained)
		q.Alliances = nilIfEmpty(q.Alliances)
	}
}

func nilIfEmpty[S ~[]E, E any](in S) S {
	if len(in) == 0 {
		return nil
	}
	return in
}
