package content

import (
	"errors"
	"fmt"
	"math/rand"
)

// OpponentFleetSize is the number of ships an opponent fields.
const OpponentFleetSize = 5

// ErrNoOpponentCards indicates the catalog holds no cards to draw from.
var ErrNoOpponentCards = errors.New("no cards available for opponent fleet")

// OpponentCard is one ship in a generated opponent fleet.
type OpponentCard struct {
	InstanceID string
	Card       Card
}

// Opponents builds opponent fleets from the card tables.
type Opponents struct {
	catalog *Catalog
}

// NewOpponents returns a generator backed by catalog.
func NewOpponents(catalog *Catalog) *Opponents {
	return &Opponents{catalog: catalog}
}

// Generate returns a fleet of OpponentFleetSize ships for spec.
//
// The pool is the battle faction's cards, or every card when the faction has
// none. The pool is shuffled with seed and cycled until the fleet is full;
// attack and defense grow by one per difficulty level above the first.
func (o *Opponents) Generate(spec BattleSpec, seed int64) ([]OpponentCard, error) {
	if o == nil || o.catalog == nil {
		return nil, errors.New("opponent catalog is required")
	}
	pool := o.catalog.CardsByFaction(spec.FactionID)
	if spec.FactionID == "" || len(pool) == 0 {
		pool = o.catalog.AllCards()
	}
	if len(pool) == 0 {
		return nil, ErrNoOpponentCards
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	bonus := max(spec.Difficulty-1, 0)
	fleet := make([]OpponentCard, OpponentFleetSize)
	for i := range fleet {
		card := pool[i%len(pool)]
		card.Attack += bonus
		card.Defense += bonus
		fleet[i] = OpponentCard{
			InstanceID: fmt.Sprintf("opp_%d_%s", i+1, card.ID),
			Card:       card,
		}
	}
	return fleet, nil
}
