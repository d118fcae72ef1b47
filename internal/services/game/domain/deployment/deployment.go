// Package deployment decides fleet positioning and launches the battle.
//
// LOCK_ORDERS is the only place the battle engine runs. Its events are, in
// order: ORDERS_LOCKED, the phase change into battle, the battle trace, and the
// phase change into consequence stamped BattleDelay after the others.
package deployment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/battle"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/core/random"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeSetCardPosition command.Type = "SET_CARD_POSITION"
	CommandTypeLockOrders      command.Type = "LOCK_ORDERS"
)

// SetCardPositionPayload places a committed card in a 1-based slot.
type SetCardPositionPayload struct {
	CardID   string `json:"card_id"`
	Position int    `json:"position"`
}

// LockOrdersPayload carries the final slot order. Seed is optional; without
// it a seed is drawn from the configured generator and recorded.
type LockOrdersPayload struct {
	Positions []string `json:"positions"`
	Seed      *int64   `json:"seed,omitempty"`
}

// Commands returns the deployment command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeSetCardPosition, ValidatePayload: command.DecodeValidator(func(p SetCardPositionPayload) error {
			if strings.TrimSpace(p.CardID) == "" {
				return errors.New("card_id is required")
			}
			return nil
		})},
		{Type: CommandTypeLockOrders, ValidatePayload: command.DecodeValidator(func(p LockOrdersPayload) error {
			if p.Positions == nil {
				return errors.New("positions is required")
			}
			return nil
		})},
	}
}

// Opponents builds the opposing fleet for a battle.
type Opponents interface {
	Generate(spec content.BattleSpec, seed int64) ([]content.OpponentCard, error)
}

// Deps are the collaborators LOCK_ORDERS needs.
type Deps struct {
	Opponents Opponents
	Seeds     random.Generator
}

// View is the state the deployment handlers read.
type View struct {
	Status        game.Status
	Phase         game.Phase
	CurrentBattle *game.BattleState
	OwnedCards    []game.OwnedCard
}

// ViewOf projects the deployment view from state.
func ViewOf(s game.State) View {
	return View{
		Status:        s.Status,
		Phase:         s.Phase,
		CurrentBattle: s.CurrentBattle,
		OwnedCards:    s.OwnedCards,
	}
}

func (v View) battle() (*game.BattleState, error) {
	if err := game.RequireInProgress(game.SliceDeployment, v.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceDeployment, v.Phase, game.PhaseDeployment); err != nil {
		return nil, err
	}
	if v.CurrentBattle == nil {
		return nil, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeBattleNotActive, "no battle in progress")
	}
	if v.CurrentBattle.Phase != game.BattlePhaseDeployment {
		return nil, game.Reject(game.SliceDeployment, game.KindPhase, apperrors.CodeBattlePhaseMismatch,
			"battle is not deploying", "battle_phase", string(v.CurrentBattle.Phase))
	}
	return v.CurrentBattle, nil
}

func (v View) card(cardID string) (game.OwnedCard, bool) {
	for _, card := range v.OwnedCards {
		if card.ID == cardID {
			return card, true
		}
	}
	return game.OwnedCard{}, false
}

// SetCardPosition places a fleet card in a 1-based slot. Moving a placed card
// is allowed; the fold clears its old slot.
func SetCardPosition(view View, payload SetCardPositionPayload, now time.Time) ([]event.Event, error) {
	current, err := view.battle()
	if err != nil {
		return nil, err
	}
	if payload.Position < 1 || payload.Position > game.FleetSize {
		return nil, game.Reject(game.SliceDeployment, game.KindStructure, apperrors.CodePositionOutOfRange,
			fmt.Sprintf("position %d out of range", payload.Position), "position", strconv.Itoa(payload.Position))
	}
	cardID := strings.TrimSpace(payload.CardID)
	if !current.IsSelected(cardID) {
		return nil, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeCardNotInFleet,
			fmt.Sprintf("card %s is not in the fleet", cardID), "card_id", cardID)
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeCardPositioned, game.CardPositionedPayload{CardID: cardID, Position: payload.Position})
	return emit.Events()
}

// LockOrders validates the final positions, fights the battle, and moves to
// the consequence screen. Nothing is emitted unless every position is valid.
func LockOrders(view View, payload LockOrdersPayload, deps Deps, now time.Time) ([]event.Event, error) {
	current, err := view.battle()
	if err != nil {
		return nil, err
	}
	positions, err := checkPositions(view, current, payload.Positions)
	if err != nil {
		return nil, err
	}

	var player battle.Fleet
	for i, cardID := range positions {
		card, ok := view.card(cardID)
		if !ok {
			return nil, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeCardNotFound,
				fmt.Sprintf("card %s not found", cardID), "card_id", cardID)
		}
		player[i] = game.Combatant{
			CardID:    card.ID,
			Name:      card.Name,
			FactionID: card.FactionID,
			Attack:    card.Attack,
			Defense:   card.Defense,
			Hull:      card.Hull,
			Agility:   card.Agility,
		}
	}

	seed, source, err := random.ResolveSeed(payload.Seed, deps.Seeds)
	if err != nil {
		return nil, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeSeedUnavailable, err.Error())
	}
	opponent, err := opponentFleet(deps.Opponents, current, seed)
	if err != nil {
		return nil, err
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeOrdersLocked, game.OrdersLockedPayload{
		BattleID:   current.BattleID,
		Positions:  positions,
		Seed:       seed,
		SeedSource: string(source),
	})
	emit.PhaseChange(view.Phase, game.PhaseBattle)
	if _, err := battle.Execute(battle.Context{BattleID: current.BattleID}, player, opponent, battle.NewRoller(seed), emit); err != nil {
		return nil, fmt.Errorf("execute battle %s: %w", current.BattleID, err)
	}
	emit.EmitAt(now.Add(game.BattleDelay), game.EventTypePhaseChanged, game.PhaseChangedPayload{
		From: game.PhaseBattle,
		To:   game.PhaseConsequence,
	})
	return emit.Events()
}

// checkPositions requires exactly FleetSize filled, distinct slots holding
// owned cards from the committed fleet.
func checkPositions(view View, current *game.BattleState, requested []string) ([game.FleetSize]string, error) {
	var positions [game.FleetSize]string
	filled := 0
	for _, cardID := range requested {
		if strings.TrimSpace(cardID) != "" {
			filled++
		}
	}
	if len(requested) != game.FleetSize || filled != game.FleetSize {
		return positions, game.Reject(game.SliceDeployment, game.KindStructure, apperrors.CodePositionsIncomplete,
			fmt.Sprintf("%d of %d positions filled", filled, game.FleetSize))
	}
	seen := make(map[string]bool, game.FleetSize)
	for i, cardID := range requested {
		cardID = strings.TrimSpace(cardID)
		if seen[cardID] {
			return positions, game.Reject(game.SliceDeployment, game.KindStructure, apperrors.CodePositionsDuplicate,
				fmt.Sprintf("card %s placed twice", cardID), "card_id", cardID)
		}
		seen[cardID] = true
		if _, ok := view.card(cardID); !ok {
			return positions, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeCardNotOwned,
				fmt.Sprintf("card %s not owned", cardID), "card_id", cardID)
		}
		if !current.IsSelected(cardID) {
			return positions, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeCardNotInFleet,
				fmt.Sprintf("card %s is not in the fleet", cardID), "card_id", cardID)
		}
		positions[i] = cardID
	}
	return positions, nil
}

func opponentFleet(opponents Opponents, current *game.BattleState, seed int64) (battle.Fleet, error) {
	var fleet battle.Fleet
	if opponents == nil {
		return fleet, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeOpponentFleetInvalid, "no opponent generator")
	}
	cards, err := opponents.Generate(content.BattleSpec{
		OpponentType: current.OpponentType,
		FactionID:    current.OpponentFactionID,
		Difficulty:   current.Difficulty,
		Context:      current.Context,
	}, seed)
	if err != nil {
		return fleet, game.Reject(game.SliceDeployment, game.KindMissing, apperrors.CodeOpponentFleetInvalid, err.Error())
	}
	if len(cards) != game.FleetSize {
		return fleet, game.Reject(game.SliceDeployment, game.KindStructure, apperrors.CodeOpponentFleetInvalid,
			fmt.Sprintf("opponent fleet has %d ships", len(cards)))
	}
	for i, opp := range cards {
		fleet[i] = game.Combatant{
			CardID:    opp.InstanceID,
			Name:      opp.Card.Name,
			FactionID: opp.Card.FactionID,
			Attack:    opp.Card.Attack,
			Defense:   opp.Card.Defense,
			Hull:      opp.Card.Hull,
			Agility:   opp.Card.Agility,
		}
	}
	return fleet, nil
}
