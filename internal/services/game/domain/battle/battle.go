// Package battle resolves a fleet battle round by round.
//
// A battle is exactly game.FleetSize rounds. Round i pairs the player's card in
// slot i with the opponent's card in slot i. Each side rolls a d20 plus its
// attack and hits when the total reaches 10 plus the defender's defense. The
// card with more agility holds initiative; equal agility is simultaneous.
//
// Given the same fleets and a roller with the same seed, Execute returns the
// same trace, so a battle can be replayed from the seed in ORDERS_LOCKED.
package battle

import (
	"errors"
	"fmt"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/core/dice"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// BaseTarget is added to the defender's defense to get the number to hit.
const BaseTarget = 10

// rollSalt separates the dice stream from the opponent shuffle, which is
// drawn from the same recorded seed.
const rollSalt int64 = 0x5f3759df

// NewRoller returns the roller a battle locked with seed uses.
func NewRoller(seed int64) dice.Roller {
	return dice.NewSeeded(seed ^ rollSalt)
}

// ErrRollerRequired indicates Execute was called without a roller.
var ErrRollerRequired = errors.New("battle roller is required")

// Fleet is one side's ships in slot order.
type Fleet [game.FleetSize]game.Combatant

// Context describes the battle being fought.
type Context struct {
	BattleID string
}

// Result is the full event trace and the battle outcome.
type Result struct {
	Events       []event.Event
	Outcome      game.Outcome
	Rounds       []game.RoundOutcome
	PlayerWins   int
	OpponentWins int
	Draws        int
}

// Execute fights every round and emits the trace through emit.
//
// The trace is, per round: ROUND_STARTED, CARDS_REVEALED, INITIATIVE_RESOLVED,
// one ATTACK_ROLLED per side in initiative order, and ROUND_RESOLVED. A single
// BATTLE_RESOLVED follows the last round.
func Execute(ctx Context, player, opponent Fleet, roller dice.Roller, emit *game.Emitter) (Result, error) {
	if roller == nil {
		return Result{}, ErrRollerRequired
	}
	if emit == nil {
		return Result{}, errors.New("battle emitter is required")
	}
	trace := game.NewEmitter(emit.Now())
	result := Result{Rounds: make([]game.RoundOutcome, 0, game.FleetSize)}

	for i := range game.FleetSize {
		round := i + 1
		p, o := player[i], opponent[i]

		trace.Emit(game.EventTypeRoundStarted, game.RoundStartedPayload{BattleID: ctx.BattleID, Round: round})
		trace.Emit(game.EventTypeCardsRevealed, game.CardsRevealedPayload{
			BattleID: ctx.BattleID,
			Round:    round,
			Player:   p,
			Opponent: o,
		})

		initiative := Initiative(p, o)
		trace.Emit(game.EventTypeInitiativeResolved, game.InitiativeResolvedPayload{
			BattleID:        ctx.BattleID,
			Round:           round,
			Initiative:      initiative,
			PlayerAgility:   p.Agility,
			OpponentAgility: o.Agility,
		})

		var playerRoll, opponentRoll game.AttackRoll
		var err error
		for _, side := range attackOrder(initiative) {
			attacker, defender := p, o
			if side == game.SideOpponent {
				attacker, defender = o, p
			}
			roll, rollErr := Attack(roller, attacker, defender)
			if rollErr != nil {
				err = fmt.Errorf("round %d %s attack: %w", round, side, rollErr)
				break
			}
			if side == game.SidePlayer {
				playerRoll = roll
			} else {
				opponentRoll = roll
			}
			trace.Emit(game.EventTypeAttackRolled, game.AttackRolledPayload{
				BattleID: ctx.BattleID,
				Round:    round,
				Attacker: side,
				Roll:     roll,
			})
		}
		if err != nil {
			return Result{}, err
		}

		outcome := RoundResult(initiative, playerRoll.Hit, opponentRoll.Hit)
		switch outcome {
		case game.RoundPlayerWon:
			result.PlayerWins++
		case game.RoundOpponentWon:
			result.OpponentWins++
		default:
			result.Draws++
		}
		result.Rounds = append(result.Rounds, outcome)
		trace.Emit(game.EventTypeRoundResolved, game.RoundResolvedPayload{
			BattleID:     ctx.BattleID,
			Round:        round,
			Player:       p,
			Opponent:     o,
			PlayerRoll:   playerRoll,
			OpponentRoll: opponentRoll,
			Initiative:   initiative,
			Outcome:      outcome,
		})
	}

	result.Outcome = Outcome(result.PlayerWins, result.OpponentWins)
	trace.Emit(game.EventTypeBattleResolved, game.BattleResolvedPayload{
		BattleID:     ctx.BattleID,
		Outcome:      result.Outcome,
		PlayerWins:   result.PlayerWins,
		OpponentWins: result.OpponentWins,
		Draws:        result.Draws,
		Rounds:       result.Rounds,
	})

	events, err := trace.Events()
	if err != nil {
		return Result{}, err
	}
	result.Events = events
	emit.Append(events...)
	return result, nil
}

// Initiative compares agility: higher acts first, a tie is simultaneous.
func Initiative(player, opponent game.Combatant) game.Initiative {
	switch {
	case player.Agility > opponent.Agility:
		return game.InitiativePlayer
	case opponent.Agility > player.Agility:
		return game.InitiativeOpponent
	default:
		return game.InitiativeSimultaneous
	}
}

func attackOrder(initiative game.Initiative) []game.Side {
	if initiative == game.InitiativeOpponent {
		return []game.Side{game.SideOpponent, game.SidePlayer}
	}
	return []game.Side{game.SidePlayer, game.SideOpponent}
}

// Attack rolls one d20 attack of attacker against defender.
func Attack(roller dice.Roller, attacker, defender game.Combatant) (game.AttackRoll, error) {
	base, err := roller.Roll(dice.D20)
	if err != nil {
		return game.AttackRoll{}, err
	}
	total := base + attacker.Attack
	target := BaseTarget + defender.Defense
	return game.AttackRoll{
		Base:     base,
		Modifier: attacker.Attack,
		Total:    total,
		Target:   target,
		Hit:      total >= target,
	}, nil
}

// RoundResult decides a round from both hits.
//
// A lone hit wins the round. When both hit, the initiative holder wins and a
// simultaneous exchange is a draw. When neither hits the round is a draw.
func RoundResult(initiative game.Initiative, playerHit, opponentHit bool) game.RoundOutcome {
	switch {
	case playerHit && !opponentHit:
		return game.RoundPlayerWon
	case opponentHit && !playerHit:
		return game.RoundOpponentWon
	case playerHit && opponentHit:
		switch initiative {
		case game.InitiativePlayer:
			return game.RoundPlayerWon
		case game.InitiativeOpponent:
			return game.RoundOpponentWon
		}
	}
	return game.RoundDraw
}

// Outcome compares rounds won.
func Outcome(playerWins, opponentWins int) game.Outcome {
	switch {
	case playerWins > opponentWins:
		return game.OutcomeVictory
	case playerWins < opponentWins:
		return game.OutcomeDefeat
	default:
		return game.OutcomeDraw
	}
}
