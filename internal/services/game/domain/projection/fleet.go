package projection

import "github.com/shawndeggans/space-fortress/internal/services/game/domain/game"

// FleetCard is an owned card as the fleet screens show it.
type FleetCard struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FactionID   string `json:"faction_id,omitempty"`
	FactionName string `json:"faction_name,omitempty"`
	Attack      int    `json:"attack"`
	Defense     int    `json:"defense"`
	Hull        int    `json:"hull"`
	Agility     int    `json:"agility"`
	Locked      bool   `json:"locked"`
	LockReason  string `json:"lock_reason,omitempty"`
	Selected    bool   `json:"selected"`
	// Position is the 1-based deployment slot, or 0.
	Position int `json:"position,omitempty"`
}

// FleetView backs the card pool and deployment screens.
type FleetView struct {
	Cards     []FleetCard            `json:"cards"`
	Selected  int                    `json:"selected"`
	Required  int                    `json:"required"`
	Positions [game.FleetSize]string `json:"positions"`
	CanCommit bool                   `json:"can_commit"`
	CanLock   bool                   `json:"can_lock"`
}

// Fleet lists owned cards with their selection and deployment marks.
func Fleet(s game.State, lookup Lookup) FleetView {
	battle := s.CurrentBattle
	view := FleetView{Required: game.FleetSize}
	if battle != nil {
		view.Selected = len(battle.SelectedCardIDs)
		view.Positions = battle.Positions
	}
	for _, card := range s.OwnedCards {
		fc := FleetCard{
			ID:         card.ID,
			Name:       card.Name,
			FactionID:  card.FactionID,
			Attack:     card.Attack,
			Defense:    card.Defense,
			Hull:       card.Hull,
			Agility:    card.Agility,
			Locked:     card.IsLocked,
			LockReason: card.LockReason,
			Selected:   battle.IsSelected(card.ID),
			Position:   battle.PositionOf(card.ID),
		}
		if card.FactionID != "" {
			fc.FactionName = factionName(lookup, card.FactionID)
		}
		view.Cards = append(view.Cards, fc)
	}
	if battle == nil {
		return view
	}
	view.CanCommit = s.Phase == game.PhaseCardSelection && view.Selected == game.FleetSize
	if s.Phase == game.PhaseDeployment {
		view.CanLock = true
		for _, id := range battle.Positions {
			if id == "" {
				view.CanLock = false
				break
			}
		}
	}
	return view
}
