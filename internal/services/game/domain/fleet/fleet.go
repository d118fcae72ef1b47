// Package fleet decides card selection for a triggered battle.
package fleet

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeSelectCard   command.Type = "SELECT_CARD"
	CommandTypeDeselectCard command.Type = "DESELECT_CARD"
	CommandTypeCommitFleet  command.Type = "COMMIT_FLEET"
)

// CardPayload names the card to select or deselect.
type CardPayload struct {
	CardID string `json:"card_id"`
}

func validateCard(p CardPayload) error {
	if strings.TrimSpace(p.CardID) == "" {
		return errors.New("card_id is required")
	}
	return nil
}

// Commands returns the fleet command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeSelectCard, ValidatePayload: command.DecodeValidator(validateCard)},
		{Type: CommandTypeDeselectCard, ValidatePayload: command.DecodeValidator(validateCard)},
		{Type: CommandTypeCommitFleet},
	}
}

// View is the state the fleet handlers read.
type View struct {
	Status        game.Status
	Phase         game.Phase
	CurrentBattle *game.BattleState
	OwnedCards    []game.OwnedCard
}

// ViewOf projects the fleet view from state.
func ViewOf(s game.State) View {
	return View{
		Status:        s.Status,
		Phase:         s.Phase,
		CurrentBattle: s.CurrentBattle,
		OwnedCards:    s.OwnedCards,
	}
}

func (v View) battle() (*game.BattleState, error) {
	if err := game.RequireInProgress(game.SliceFleet, v.Status); err != nil {
		return nil, err
	}
	if err := game.RequirePhase(game.SliceFleet, v.Phase, game.PhaseCardSelection); err != nil {
		return nil, err
	}
	if v.CurrentBattle == nil {
		return nil, game.Reject(game.SliceFleet, game.KindMissing, apperrors.CodeBattleNotActive, "no battle in progress")
	}
	if v.CurrentBattle.Phase != game.BattlePhaseSelection {
		return nil, game.Reject(game.SliceFleet, game.KindPhase, apperrors.CodeBattlePhaseMismatch,
			"battle is not selecting cards", "battle_phase", string(v.CurrentBattle.Phase))
	}
	return v.CurrentBattle, nil
}

// SelectCard adds an owned, unlocked card to the fleet.
func SelectCard(view View, payload CardPayload, now time.Time) ([]event.Event, error) {
	battle, err := view.battle()
	if err != nil {
		return nil, err
	}
	cardID := strings.TrimSpace(payload.CardID)
	i := slices.IndexFunc(view.OwnedCards, func(card game.OwnedCard) bool { return card.ID == cardID })
	if i < 0 {
		return nil, game.Reject(game.SliceFleet, game.KindMissing, apperrors.CodeCardNotOwned,
			fmt.Sprintf("card %s not owned", cardID), "card_id", cardID)
	}
	if view.OwnedCards[i].IsLocked {
		return nil, game.Reject(game.SliceFleet, game.KindRule, apperrors.CodeCardLocked,
			fmt.Sprintf("card %s is locked", cardID), "card_id", cardID)
	}
	if battle.IsSelected(cardID) {
		return nil, game.Reject(game.SliceFleet, game.KindRule, apperrors.CodeCardAlreadySelected,
			fmt.Sprintf("card %s already selected", cardID), "card_id", cardID)
	}
	if len(battle.SelectedCardIDs) >= game.FleetSize {
		return nil, game.Reject(game.SliceFleet, game.KindStructure, apperrors.CodeFleetFull,
			"fleet is full", "size", strconv.Itoa(game.FleetSize))
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeCardSelected, game.CardSelectedPayload{CardID: cardID})
	return emit.Events()
}

// DeselectCard removes a card from the fleet.
func DeselectCard(view View, payload CardPayload, now time.Time) ([]event.Event, error) {
	battle, err := view.battle()
	if err != nil {
		return nil, err
	}
	cardID := strings.TrimSpace(payload.CardID)
	if !battle.IsSelected(cardID) {
		return nil, game.Reject(game.SliceFleet, game.KindMissing, apperrors.CodeCardNotSelected,
			fmt.Sprintf("card %s not selected", cardID), "card_id", cardID)
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeCardDeselected, game.CardDeselectedPayload{CardID: cardID})
	return emit.Events()
}

// CommitFleet commits exactly FleetSize selected cards and moves to
// deployment.
func CommitFleet(view View, now time.Time) ([]event.Event, error) {
	battle, err := view.battle()
	if err != nil {
		return nil, err
	}
	if len(battle.SelectedCardIDs) != game.FleetSize {
		return nil, game.Reject(game.SliceFleet, game.KindStructure, apperrors.CodeFleetIncomplete,
			fmt.Sprintf("fleet has %d cards", len(battle.SelectedCardIDs)), "size", strconv.Itoa(game.FleetSize))
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeFleetCommitted, game.FleetCommittedPayload{CardIDs: slices.Clone(battle.SelectedCardIDs)})
	emit.PhaseChange(view.Phase, game.PhaseDeployment)
	return emit.Events()
}
