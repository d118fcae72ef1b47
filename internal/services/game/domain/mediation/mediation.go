// Package mediation decides the battle-avoiding negotiation between two
// factions. A mediation moves from not leaned to leaned toward one party, and
// ends either in a compromise or, when refused, in the fallback battle.
package mediation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

const (
	CommandTypeLeanTowardFaction command.Type = "LEAN_TOWARD_FACTION"
	CommandTypeRefuseToLean      command.Type = "REFUSE_TO_LEAN"
	CommandTypeAcceptCompromise  command.Type = "ACCEPT_COMPROMISE"
)

// LeanTowardFactionPayload names the mediation party to favor.
type LeanTowardFactionPayload struct {
	FactionID string `json:"faction_id"`
}

// Commands returns the mediation command definitions.
func Commands() []command.Definition {
	return []command.Definition{
		{Type: CommandTypeLeanTowardFaction, ValidatePayload: command.DecodeValidator(func(p LeanTowardFactionPayload) error {
			if strings.TrimSpace(p.FactionID) == "" {
				return errors.New("faction_id is required")
			}
			return nil
		})},
		{Type: CommandTypeRefuseToLean},
		{Type: CommandTypeAcceptCompromise},
	}
}

// Content is the content this slice reads.
type Content interface {
	content.Lookup
	BattleFor(mediation content.Mediation) (content.BattleSpec, bool)
}

// View is the state the mediation handlers read.
type View struct {
	Status      game.Status
	Phase       game.Phase
	ActiveQuest *game.ActiveQuest
	Mediation   *game.MediationState
	Reputation  map[string]int
}

// ViewOf projects the mediation view from state.
func ViewOf(s game.State) View {
	return View{
		Status:      s.Status,
		Phase:       s.Phase,
		ActiveQuest: s.ActiveQuest,
		Mediation:   s.Mediation,
		Reputation:  s.Reputation,
	}
}

func (v View) mediation(tables content.Lookup) (content.Mediation, error) {
	if err := game.RequireInProgress(game.SliceMediation, v.Status); err != nil {
		return content.Mediation{}, err
	}
	if err := game.RequirePhase(game.SliceMediation, v.Phase, game.PhaseMediation); err != nil {
		return content.Mediation{}, err
	}
	if v.ActiveQuest == nil {
		return content.Mediation{}, game.Reject(game.SliceMediation, game.KindMissing, apperrors.CodeQuestNotActive, "no active quest")
	}
	if v.Mediation == nil {
		return content.Mediation{}, game.Reject(game.SliceMediation, game.KindMissing, apperrors.CodeMediationNotActive, "no mediation in progress")
	}
	mediation, ok := tables.Mediation(v.Mediation.MediationID)
	if !ok {
		return content.Mediation{}, game.Reject(game.SliceMediation, game.KindMissing, apperrors.CodeMediationNotFound,
			fmt.Sprintf("mediation %s not found", v.Mediation.MediationID), "mediation_id", v.Mediation.MediationID)
	}
	return mediation, nil
}

// LeanTowardFaction favors one party. The other party is always the away
// faction; a faction outside the two parties is rejected.
func LeanTowardFaction(view View, payload LeanTowardFactionPayload, tables content.Lookup, now time.Time) ([]event.Event, error) {
	mediation, err := view.mediation(tables)
	if err != nil {
		return nil, err
	}
	if view.Mediation.Leaned() {
		return nil, game.Reject(game.SliceMediation, game.KindRule, apperrors.CodeMediationAlreadyLeaned,
			"already leaned toward "+view.Mediation.LeanedToward, "faction_id", view.Mediation.LeanedToward)
	}
	toward := strings.TrimSpace(payload.FactionID)
	away, ok := mediation.OtherParty(toward)
	if !ok {
		return nil, game.Reject(game.SliceMediation, game.KindMissing, apperrors.CodeMediationNotParty,
			fmt.Sprintf("%s is not a party to %s", toward, mediation.ID), "faction_id", toward)
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeMediationLeaned, game.MediationLeanedPayload{
		MediationID:     mediation.ID,
		TowardFactionID: toward,
		AwayFactionID:   away,
	})
	if mediation.LeanEffect != 0 {
		ledger := game.NewLedger(view.Reputation)
		reason := "mediation " + mediation.ID
		emit.Emit(game.EventTypeReputationChanged, ledger.Change(toward, mediation.LeanEffect, reason))
		emit.Emit(game.EventTypeReputationChanged, ledger.Change(away, -mediation.LeanEffect, reason))
	}
	return emit.Events()
}

// RefuseToLean abandons the mediation. Both parties resent it and the
// dispute is settled by battle.
func RefuseToLean(view View, tables Content, now time.Time) ([]event.Event, error) {
	mediation, err := view.mediation(tables)
	if err != nil {
		return nil, err
	}
	battle, ok := tables.BattleFor(mediation)
	if !ok {
		return nil, game.Reject(game.SliceMediation, game.KindMissing, apperrors.CodeBattleUndefined,
			fmt.Sprintf("mediation %s has no battle", mediation.ID), "quest_id", mediation.QuestID)
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeMediationRefused, game.MediationRefusedPayload{MediationID: mediation.ID})
	if mediation.RefusePenalty != 0 {
		ledger := game.NewLedger(view.Reputation)
		for _, factionID := range mediation.Parties {
			emit.Emit(game.EventTypeReputationChanged, ledger.Change(factionID, -mediation.RefusePenalty, "refused mediation "+mediation.ID))
		}
	}
	emit.Emit(game.EventTypeBattleTriggered, game.BattleTriggered(*view.ActiveQuest, battle))
	emit.PhaseChange(view.Phase, game.PhaseCardSelection)
	return emit.Events()
}

// AcceptCompromise settles the mediation after a lean, at a reduced bounty.
func AcceptCompromise(view View, tables content.Lookup, now time.Time) ([]event.Event, error) {
	mediation, err := view.mediation(tables)
	if err != nil {
		return nil, err
	}
	if !view.Mediation.Leaned() {
		return nil, game.Reject(game.SliceMediation, game.KindRule, apperrors.CodeMediationNotLeaned, "lean toward a faction first")
	}

	emit := game.NewEmitter(now)
	emit.Emit(game.EventTypeCompromiseAccepted, game.CompromiseAcceptedPayload{
		MediationID:    mediation.ID,
		BountyModifier: game.CompromiseModifier,
	})
	emit.PhaseChange(view.Phase, game.PhaseConsequence)
	return emit.Events()
}
