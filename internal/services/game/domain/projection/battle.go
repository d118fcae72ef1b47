package projection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// RoundView is one resolved round of a battle replay.
type RoundView struct {
	Round        int               `json:"round"`
	Player       game.Combatant    `json:"player"`
	Opponent     game.Combatant    `json:"opponent"`
	Initiative   game.Initiative   `json:"initiative"`
	PlayerRoll   game.AttackRoll   `json:"player_roll"`
	OpponentRoll game.AttackRoll   `json:"opponent_roll"`
	Outcome      game.RoundOutcome `json:"outcome"`
	At           time.Time         `json:"at"`
}

// BattleReplayView is one battle rebuilt from the log.
type BattleReplayView struct {
	BattleID     string       `json:"battle_id"`
	Seed         int64        `json:"seed"`
	Rounds       []RoundView  `json:"rounds"`
	Outcome      game.Outcome `json:"outcome,omitempty"`
	PlayerWins   int          `json:"player_wins"`
	OpponentWins int          `json:"opponent_wins"`
	Draws        int          `json:"draws"`
	// Duration runs from the locked orders to the consequence screen.
	Duration time.Duration `json:"duration"`
}

// BattleReplay rebuilds every battle in events, in log order.
func BattleReplay(events []event.Event) ([]BattleReplayView, error) {
	var (
		battles []BattleReplayView
		index   = map[string]int{}
		current = -1
		started time.Time
	)
	for _, evt := range events {
		switch evt.Type {
		case game.EventTypeOrdersLocked:
			var p game.OrdersLockedPayload
			if err := decode(evt, &p); err != nil {
				return nil, err
			}
			index[p.BattleID] = len(battles)
			current = len(battles)
			started = evt.Timestamp
			battles = append(battles, BattleReplayView{BattleID: p.BattleID, Seed: p.Seed})
		case game.EventTypeRoundResolved:
			var p game.RoundResolvedPayload
			if err := decode(evt, &p); err != nil {
				return nil, err
			}
			i, ok := index[p.BattleID]
			if !ok {
				continue
			}
			battles[i].Rounds = append(battles[i].Rounds, RoundView{
				Round:        p.Round,
				Player:       p.Player,
				Opponent:     p.Opponent,
				Initiative:   p.Initiative,
				PlayerRoll:   p.PlayerRoll,
				OpponentRoll: p.OpponentRoll,
				Outcome:      p.Outcome,
				At:           evt.Timestamp,
			})
		case game.EventTypeBattleResolved:
			var p game.BattleResolvedPayload
			if err := decode(evt, &p); err != nil {
				return nil, err
			}
			i, ok := index[p.BattleID]
			if !ok {
				continue
			}
			battles[i].Outcome = p.Outcome
			battles[i].PlayerWins = p.PlayerWins
			battles[i].OpponentWins = p.OpponentWins
			battles[i].Draws = p.Draws
		case game.EventTypePhaseChanged:
			if current < 0 {
				continue
			}
			var p game.PhaseChangedPayload
			if err := decode(evt, &p); err != nil {
				return nil, err
			}
			if p.From == game.PhaseBattle {
				battles[current].Duration = evt.Timestamp.Sub(started)
				current = -1
			}
		}
	}
	return battles, nil
}

func decode(evt event.Event, target any) error {
	if err := json.Unmarshal(evt.PayloadJSON, target); err != nil {
		return fmt.Errorf("decode %s seq %d: %w", evt.Type, evt.Seq, err)
	}
	return nil
}
