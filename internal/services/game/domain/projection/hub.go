package projection

import (
	"slices"
	"sort"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// QuestStatus is a quest's place in the campaign.
type QuestStatus string

const (
	QuestAvailable QuestStatus = "available"
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
	QuestLocked    QuestStatus = "locked"
)

// QuestCard is one quest on the hub.
type QuestCard struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	FactionID   string      `json:"faction_id"`
	FactionName string      `json:"faction_name"`
	Description string      `json:"description,omitempty"`
	BaseBounty  int         `json:"base_bounty"`
	Status      QuestStatus `json:"status"`
}

// QuestHubView is the quest selection screen.
type QuestHubView struct {
	Bounty          int         `json:"bounty"`
	Quests          []QuestCard `json:"quests"`
	QuestsRecorded  int         `json:"quests_recorded"`
	QuestsRemaining int         `json:"quests_remaining"`
	CanAccept       bool        `json:"can_accept"`
}

// QuestHub lists every quest in content order with its status.
func QuestHub(s game.State, lookup Lookup) QuestHubView {
	recorded := make(map[string]game.QuestResult, len(s.CompletedQuests))
	for _, done := range s.CompletedQuests {
		recorded[done.QuestID] = done.Result
	}
	view := QuestHubView{
		Bounty:          s.Bounty,
		QuestsRecorded:  len(s.CompletedQuests),
		QuestsRemaining: max(game.CampaignLength-len(s.CompletedQuests), 0),
		CanAccept:       s.Status == game.StatusInProgress && s.Phase == game.PhaseQuestHub && s.ActiveQuest == nil,
	}
	for _, quest := range lookup.Quests() {
		card := QuestCard{
			ID:          quest.ID,
			Name:        quest.Name,
			FactionID:   quest.FactionID,
			FactionName: factionName(lookup, quest.FactionID),
			Description: quest.Description,
			BaseBounty:  quest.BaseBounty,
			Status:      QuestLocked,
		}
		switch {
		case s.ActiveQuest != nil && s.ActiveQuest.QuestID == quest.ID:
			card.Status = QuestActive
		case recorded[quest.ID] == game.QuestResultCompleted:
			card.Status = QuestCompleted
		case recorded[quest.ID] == game.QuestResultFailed:
			card.Status = QuestFailed
		case slices.Contains(s.AvailableQuestIDs, quest.ID):
			card.Status = QuestAvailable
		}
		view.Quests = append(view.Quests, card)
	}
	return view
}

// QuestSummaryView is the end-of-quest screen.
type QuestSummaryView struct {
	Summary   game.QuestSummary `json:"summary"`
	QuestName string            `json:"quest_name"`
	// FinalQuest is set when acknowledging ends the campaign.
	FinalQuest bool `json:"final_quest"`
	Bounty     int  `json:"bounty"`
}

// QuestSummary returns the pending summary, if any.
func QuestSummary(s game.State, lookup Lookup) (QuestSummaryView, bool) {
	if s.PendingQuestSummary == nil {
		return QuestSummaryView{}, false
	}
	view := QuestSummaryView{
		Summary:    *s.PendingQuestSummary,
		QuestName:  s.PendingQuestSummary.QuestID,
		FinalQuest: len(s.CompletedQuests) >= game.CampaignLength,
		Bounty:     s.Bounty,
	}
	if quest, ok := lookup.Quest(s.PendingQuestSummary.QuestID); ok {
		view.QuestName = quest.Name
	}
	return view, true
}

// Standing describes the player's relationship with one faction.
type Standing struct {
	FactionID  string `json:"faction_id"`
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
	Tier       string `json:"tier"`
	// CardsLocked is set when the faction's cards are locked out of fleets.
	CardsLocked bool `json:"cards_locked"`
}

// Tier names a reputation band.
func Tier(reputation int) string {
	switch {
	case reputation >= 75:
		return "devoted"
	case reputation >= game.EndingThreshold:
		return "friendly"
	case reputation > -25:
		return "neutral"
	case reputation >= game.LockThreshold:
		return "unfriendly"
	default:
		return "hostile"
	}
}

// Standings lists factions from highest to lowest reputation, ties in
// content order.
func Standings(s game.State, lookup Lookup) []Standing {
	factions := lookup.Factions()
	standings := make([]Standing, 0, len(factions))
	for _, faction := range factions {
		rep := s.Reputation[faction.ID]
		standings = append(standings, Standing{
			FactionID:   faction.ID,
			Name:        faction.Name,
			Reputation:  rep,
			Tier:        Tier(rep),
			CardsLocked: rep < game.LockThreshold,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Reputation > standings[j].Reputation
	})
	return standings
}
