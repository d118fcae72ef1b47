// Package decider routes a validated command to its slice handler.
//
// Decide is pure over (state, command, deps): content, the opponent generator,
// the seed source and the clock are injected, and the only output is the
// ordered event list. Every failure is an *InvalidCommandError.
package decider

import (
	"errors"
	"fmt"
	"slices"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/alliance"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/campaign"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/command"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/consequence"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/core/random"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/deployment"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/fleet"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/mediation"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/narrative"
)

// Content is every table the handlers read. *content.Catalog satisfies it.
type Content interface {
	campaign.Content
	BattleFor(mediation content.Mediation) (content.BattleSpec, bool)
}

// Deps are the decider's injected collaborators.
type Deps struct {
	Content   Content
	Opponents deployment.Opponents
	Seeds     random.Generator
	Now       func() time.Time
}

// InvalidKind separates handler rejections from malformed commands.
type InvalidKind string

const (
	// KindValidation is a command rejected by game rules.
	KindValidation InvalidKind = "validation"
	// KindStructural is a command that could not be routed or decoded.
	KindStructural InvalidKind = "structural"
)

// InvalidCommandError reports a command that produced no events.
type InvalidCommandError struct {
	Type command.Type
	Kind InvalidKind
	Err  error
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid %s command %s: %v", e.Kind, e.Type, e.Err)
}

func (e *InvalidCommandError) Unwrap() error {
	return e.Err
}

func structural(t command.Type, code apperrors.Code, err error) *InvalidCommandError {
	return &InvalidCommandError{
		Type: t,
		Kind: KindStructural,
		Err: &apperrors.Error{
			Code:     code,
			Message:  err.Error(),
			Metadata: map[string]string{"type": string(t)},
			Cause:    err,
		},
	}
}

type handler func(state game.State, cmd command.Command, deps Deps, now time.Time) ([]event.Event, error)

// route binds a command to its handler and the phases that accept it. A
// route without phases is accepted in any phase.
type route struct {
	slice  game.Slice
	phases []game.Phase
	handle handler
}

// decoded adapts a handler taking a typed payload.
func decoded[P any](fn func(game.State, P, Deps, time.Time) ([]event.Event, error)) handler {
	return func(state game.State, cmd command.Command, deps Deps, now time.Time) ([]event.Event, error) {
		payload, err := command.Decode[P](cmd)
		if err != nil {
			return nil, err
		}
		return fn(state, payload, deps, now)
	}
}

var routes = map[command.Type]route{
	campaign.CommandTypeStartGame: {
		slice: game.SliceCampaign,
		handle: decoded(func(s game.State, p campaign.StartGamePayload, d Deps, now time.Time) ([]event.Event, error) {
			return campaign.StartGame(campaign.ViewOf(s), p, d.Content, now)
		}),
	},
	campaign.CommandTypeAcceptQuest: {
		slice:  game.SliceCampaign,
		phases: []game.Phase{game.PhaseQuestHub},
		handle: decoded(func(s game.State, p campaign.AcceptQuestPayload, d Deps, now time.Time) ([]event.Event, error) {
			return campaign.AcceptQuest(campaign.ViewOf(s), p, d.Content, now)
		}),
	},
	campaign.CommandTypeAcknowledgeQuestSummary: {
		slice:  game.SliceCampaign,
		phases: []game.Phase{game.PhaseQuestSummary},
		handle: func(s game.State, _ command.Command, _ Deps, now time.Time) ([]event.Event, error) {
			return campaign.AcknowledgeQuestSummary(campaign.ViewOf(s), now)
		},
	},
	narrative.CommandTypeMakeChoice: {
		slice:  game.SliceMakeChoice,
		phases: []game.Phase{game.PhaseNarrative},
		handle: decoded(func(s game.State, p narrative.MakeChoicePayload, d Deps, now time.Time) ([]event.Event, error) {
			return narrative.MakeChoice(narrative.ViewOf(s), p, d.Content, now)
		}),
	},
	narrative.CommandTypeAcknowledgeChoiceConsequence: {
		slice:  game.SliceMakeChoice,
		phases: []game.Phase{game.PhaseChoiceConsequence},
		handle: func(s game.State, _ command.Command, d Deps, now time.Time) ([]event.Event, error) {
			return narrative.AcknowledgeChoiceConsequence(narrative.ViewOf(s), d.Content, now)
		},
	},
	alliance.CommandTypeFormAlliance: {
		slice:  game.SliceAlliance,
		phases: []game.Phase{game.PhaseAlliance},
		handle: decoded(func(s game.State, p alliance.FormAlliancePayload, d Deps, now time.Time) ([]event.Event, error) {
			return alliance.FormAlliance(alliance.ViewOf(s), p, d.Content, now)
		}),
	},
	alliance.CommandTypeFinalizeAlliances: {
		slice:  game.SliceAlliance,
		phases: []game.Phase{game.PhaseAlliance},
		handle: func(s game.State, _ command.Command, d Deps, now time.Time) ([]event.Event, error) {
			return alliance.FinalizeAlliances(alliance.ViewOf(s), d.Content, now)
		},
	},
	mediation.CommandTypeLeanTowardFaction: {
		slice:  game.SliceMediation,
		phases: []game.Phase{game.PhaseMediation},
		handle: decoded(func(s game.State, p mediation.LeanTowardFactionPayload, d Deps, now time.Time) ([]event.Event, error) {
			return mediation.LeanTowardFaction(mediation.ViewOf(s), p, d.Content, now)
		}),
	},
	mediation.CommandTypeRefuseToLean: {
		slice:  game.SliceMediation,
		phases: []game.Phase{game.PhaseMediation},
		handle: func(s game.State, _ command.Command, d Deps, now time.Time) ([]event.Event, error) {
			return mediation.RefuseToLean(mediation.ViewOf(s), d.Content, now)
		},
	},
	mediation.CommandTypeAcceptCompromise: {
		slice:  game.SliceMediation,
		phases: []game.Phase{game.PhaseMediation},
		handle: func(s game.State, _ command.Command, d Deps, now time.Time) ([]event.Event, error) {
			return mediation.AcceptCompromise(mediation.ViewOf(s), d.Content, now)
		},
	},
	fleet.CommandTypeSelectCard: {
		slice:  game.SliceFleet,
		phases: []game.Phase{game.PhaseCardSelection},
		handle: decoded(func(s game.State, p fleet.CardPayload, _ Deps, now time.Time) ([]event.Event, error) {
			return fleet.SelectCard(fleet.ViewOf(s), p, now)
		}),
	},
	fleet.CommandTypeDeselectCard: {
		slice:  game.SliceFleet,
		phases: []game.Phase{game.PhaseCardSelection},
		handle: decoded(func(s game.State, p fleet.CardPayload, _ Deps, now time.Time) ([]event.Event, error) {
			return fleet.DeselectCard(fleet.ViewOf(s), p, now)
		}),
	},
	fleet.CommandTypeCommitFleet: {
		slice:  game.SliceFleet,
		phases: []game.Phase{game.PhaseCardSelection},
		handle: func(s game.State, _ command.Command, _ Deps, now time.Time) ([]event.Event, error) {
			return fleet.CommitFleet(fleet.ViewOf(s), now)
		},
	},
	deployment.CommandTypeSetCardPosition: {
		slice:  game.SliceDeployment,
		phases: []game.Phase{game.PhaseDeployment},
		handle: decoded(func(s game.State, p deployment.SetCardPositionPayload, _ Deps, now time.Time) ([]event.Event, error) {
			return deployment.SetCardPosition(deployment.ViewOf(s), p, now)
		}),
	},
	deployment.CommandTypeLockOrders: {
		slice:  game.SliceDeployment,
		phases: []game.Phase{game.PhaseDeployment},
		handle: decoded(func(s game.State, p deployment.LockOrdersPayload, d Deps, now time.Time) ([]event.Event, error) {
			return deployment.LockOrders(deployment.ViewOf(s), p, deployment.Deps{Opponents: d.Opponents, Seeds: d.Seeds}, now)
		}),
	},
	consequence.CommandTypeAcknowledgeOutcome: {
		slice:  game.SliceConsequence,
		phases: []game.Phase{game.PhaseConsequence},
		handle: func(s game.State, _ command.Command, d Deps, now time.Time) ([]event.Event, error) {
			return consequence.AcknowledgeOutcome(consequence.ViewOf(s), d.Content, now)
		},
	},
	consequence.CommandTypeContinueToNextPhase: {
		slice:  game.SliceConsequence,
		phases: []game.Phase{game.PhaseConsequence, game.PhasePostBattleDilemma},
		handle: func(s game.State, _ command.Command, d Deps, now time.Time) ([]event.Event, error) {
			return consequence.ContinueToNextPhase(consequence.ViewOf(s), d.Content, now)
		},
	},
}

// Definitions lists every command the decider routes.
func Definitions() []command.Definition {
	var defs []command.Definition
	for _, group := range [][]command.Definition{
		campaign.Commands(),
		narrative.Commands(),
		alliance.Commands(),
		mediation.Commands(),
		fleet.Commands(),
		deployment.Commands(),
		consequence.Commands(),
	} {
		defs = append(defs, group...)
	}
	return defs
}

// NewCommandRegistry returns a registry holding every routed command.
func NewCommandRegistry() (*command.Registry, error) {
	registry := command.NewRegistry()
	for _, def := range Definitions() {
		if err := registry.Register(def); err != nil {
			return nil, fmt.Errorf("register %s: %w", def.Type, err)
		}
	}
	return registry, nil
}

// Decider validates commands and dispatches them to slice handlers.
type Decider struct {
	registry *command.Registry
	deps     Deps
}

// New builds a decider over deps. Content is required.
func New(deps Deps) (*Decider, error) {
	if deps.Content == nil {
		return nil, errors.New("decider content is required")
	}
	if deps.Seeds == nil {
		deps.Seeds = random.NewSeed
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	registry, err := NewCommandRegistry()
	if err != nil {
		return nil, err
	}
	return &Decider{registry: registry, deps: deps}, nil
}

// Registry exposes the command registry for callers that validate early.
func (d *Decider) Registry() *command.Registry {
	return d.registry
}

// Decide returns the events cmd produces against state. The events carry the
// command's stream id; sequence numbers are assigned when they are appended.
func (d *Decider) Decide(state game.State, cmd command.Command) ([]event.Event, error) {
	validated, err := d.registry.ValidateForDecision(cmd)
	if err != nil {
		return nil, structural(cmd.Type, structuralCode(err), err)
	}
	r, ok := routes[validated.Type]
	if !ok {
		return nil, structural(validated.Type, apperrors.CodeCommandTypeUnknown, command.ErrTypeUnknown)
	}
	if len(r.phases) > 0 && !slices.Contains(r.phases, state.Phase) {
		return nil, &InvalidCommandError{
			Type: validated.Type,
			Kind: KindValidation,
			Err: game.Reject(r.slice, game.KindPhase, apperrors.CodeCommandPhaseNotAllowed,
				fmt.Sprintf("%s is not allowed in phase %s", validated.Type, state.Phase),
				"type", string(validated.Type), "phase", string(state.Phase)),
		}
	}

	events, err := r.handle(state, validated, d.deps, d.deps.Now())
	if err != nil {
		var rejection *game.Error
		if errors.As(err, &rejection) {
			return nil, &InvalidCommandError{Type: validated.Type, Kind: KindValidation, Err: err}
		}
		return nil, structural(validated.Type, structuralCode(err), err)
	}
	for i := range events {
		events[i].StreamID = validated.StreamID
	}
	return events, nil
}

func structuralCode(err error) apperrors.Code {
	switch {
	case errors.Is(err, command.ErrStreamIDRequired):
		return apperrors.CodeCommandStreamRequired
	case errors.Is(err, command.ErrTypeRequired), errors.Is(err, command.ErrTypeUnknown):
		return apperrors.CodeCommandTypeUnknown
	case errors.Is(err, command.ErrPayloadInvalid):
		return apperrors.CodeCommandPayloadInvalid
	default:
		return apperrors.CodeUnknown
	}
}
