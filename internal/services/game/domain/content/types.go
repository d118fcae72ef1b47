package content

// Faction is a political power the player earns reputation with.
type Faction struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Ability is descriptive card text. Battle resolution does not read it.
type Ability struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Card is an immutable ship template.
//
// FactionID is empty for unaligned ships, which are never locked by
// reputation.
type Card struct {
	ID         string    `yaml:"id"`
	Name       string    `yaml:"name"`
	FactionID  string    `yaml:"faction"`
	Attack     int       `yaml:"attack"`
	Defense    int       `yaml:"defense"`
	Hull       int       `yaml:"hull"`
	Agility    int       `yaml:"agility"`
	EnergyCost int       `yaml:"energy_cost"`
	Abilities  []Ability `yaml:"abilities"`
}

// BattleSpec describes the opposition a battle is fought against.
type BattleSpec struct {
	OpponentType string `yaml:"opponent_type"`
	FactionID    string `yaml:"faction"`
	Difficulty   int    `yaml:"difficulty"`
	Context      string `yaml:"context"`
}

// AllianceOption is an alliance a quest offers during the alliance phase.
type AllianceOption struct {
	FactionID     string         `yaml:"faction"`
	BountyShare   float64        `yaml:"bounty_share"`
	IsSecret      bool           `yaml:"is_secret"`
	CardIDs       []string       `yaml:"card_ids"`
	MinReputation int            `yaml:"min_reputation"`
	Reputation    map[string]int `yaml:"reputation"`
}

// Quest is a chain of dilemmas that usually ends in a battle.
type Quest struct {
	ID                  string           `yaml:"id"`
	Name                string           `yaml:"name"`
	FactionID           string           `yaml:"faction"`
	Description         string           `yaml:"description"`
	BaseBounty          int              `yaml:"base_bounty"`
	DilemmaIDs          []string         `yaml:"dilemma_ids"`
	Battle              *BattleSpec      `yaml:"battle"`
	Alliances           []AllianceOption `yaml:"alliances"`
	PostBattleDilemmaID string           `yaml:"post_battle_dilemma_id"`
	Requires            []string         `yaml:"requires"`
}

// Alliance returns the alliance option offered by factionID.
func (q Quest) Alliance(factionID string) (AllianceOption, bool) {
	for _, option := range q.Alliances {
		if option.FactionID == factionID {
			return option, true
		}
	}
	return AllianceOption{}, false
}

// DilemmaIndex returns the position of dilemmaID in the quest's dilemma chain.
func (q Quest) DilemmaIndex(dilemmaID string) (int, bool) {
	for i, id := range q.DilemmaIDs {
		if id == dilemmaID {
			return i, true
		}
	}
	return 0, false
}

// Dilemma is a narrative decision point.
type Dilemma struct {
	ID        string   `yaml:"id"`
	QuestID   string   `yaml:"quest_id"`
	Title     string   `yaml:"title"`
	Narrative string   `yaml:"narrative"`
	Choices   []Choice `yaml:"choices"`
}

// Choice returns the choice with the given id.
func (d Dilemma) Choice(choiceID string) (Choice, bool) {
	for _, choice := range d.Choices {
		if choice.ID == choiceID {
			return choice, true
		}
	}
	return Choice{}, false
}

// Choice is one answer to a dilemma.
type Choice struct {
	ID           string       `yaml:"id"`
	Label        string       `yaml:"label"`
	OutcomeText  string       `yaml:"outcome_text"`
	Consequences Consequences `yaml:"consequences"`
	Triggers     Triggers     `yaml:"triggers"`
}

// Consequences are the state changes a choice applies.
type Consequences struct {
	Reputation  map[string]int  `yaml:"reputation"`
	CardsGained []string        `yaml:"cards_gained"`
	CardsLost   []string        `yaml:"cards_lost"`
	Bounty      int             `yaml:"bounty"`
	Flags       map[string]bool `yaml:"flags"`
}

// Triggers name what a choice leads to. Resolution order is battle,
// alliance, mediation, then next dilemma.
type Triggers struct {
	Battle        bool   `yaml:"battle"`
	Alliance      bool   `yaml:"alliance"`
	MediationID   string `yaml:"mediation_id"`
	NextDilemmaID string `yaml:"next_dilemma_id"`
	QuestComplete bool   `yaml:"quest_complete"`
}

// Mediation is a battle-avoiding negotiation between exactly two factions.
type Mediation struct {
	ID            string      `yaml:"id"`
	QuestID       string      `yaml:"quest_id"`
	Title         string      `yaml:"title"`
	Narrative     string      `yaml:"narrative"`
	Parties       []string    `yaml:"parties"`
	LeanEffect    int         `yaml:"lean_effect"`
	RefusePenalty int         `yaml:"refuse_penalty"`
	Battle        *BattleSpec `yaml:"battle"`
}

// OtherParty returns the party opposite factionID.
func (m Mediation) OtherParty(factionID string) (string, bool) {
	if len(m.Parties) != 2 {
		return "", false
	}
	switch factionID {
	case m.Parties[0]:
		return m.Parties[1], true
	case m.Parties[1]:
		return m.Parties[0], true
	default:
		return "", false
	}
}

// Document is the on-disk content layout.
type Document struct {
	StartingBounty int         `yaml:"starting_bounty"`
	StarterCardIDs []string    `yaml:"starter_card_ids"`
	Factions       []Faction   `yaml:"factions"`
	Cards          []Card      `yaml:"cards"`
	Quests         []Quest     `yaml:"quests"`
	Dilemmas       []Dilemma   `yaml:"dilemmas"`
	Mediations     []Mediation `yaml:"mediations"`
}
