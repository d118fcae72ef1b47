package game

import (
	"fmt"
	"sort"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
)

// Ledger tracks reputation while a decision emits several changes, so each
// REPUTATION_CHANGED carries the value left by the one before it.
type Ledger struct {
	values map[string]int
}

// NewLedger starts a ledger from the current reputation.
func NewLedger(reputation map[string]int) *Ledger {
	return &Ledger{values: cloneMap(reputation)}
}

// Change applies delta to factionID and returns the event payload. The new
// value is clamped to the reputation bounds.
func (l *Ledger) Change(factionID string, delta int, reason string) ReputationChangedPayload {
	if l.values == nil {
		l.values = map[string]int{}
	}
	previous := l.values[factionID]
	next := ClampReputation(previous + delta)
	l.values[factionID] = next
	return ReputationChangedPayload{
		FactionID:     factionID,
		Delta:         delta,
		PreviousValue: previous,
		NewValue:      next,
		Reason:        reason,
	}
}

// Value returns the ledger's current reputation for factionID.
func (l *Ledger) Value(factionID string) int {
	return l.values[factionID]
}

// EmitReputation emits one REPUTATION_CHANGED per non-zero effect, ordered by
// faction id, and returns the display summary.
func EmitReputation(emit *Emitter, ledger *Ledger, effects map[string]int, reason string) []ReputationChange {
	var changes []ReputationChange
	for _, factionID := range SortedKeys(effects) {
		delta := effects[factionID]
		if delta == 0 {
			continue
		}
		payload := ledger.Change(factionID, delta, reason)
		emit.Emit(EventTypeReputationChanged, payload)
		changes = append(changes, ReputationChange{FactionID: factionID, Delta: delta, NewValue: payload.NewValue})
	}
	return changes
}

// CardGained builds a CARD_GAINED payload from a content card.
func CardGained(card content.Card, source CardSource) CardGainedPayload {
	return CardGainedPayload{
		CardID:     card.ID,
		Name:       card.Name,
		FactionID:  card.FactionID,
		Attack:     card.Attack,
		Defense:    card.Defense,
		Hull:       card.Hull,
		Agility:    card.Agility,
		EnergyCost: card.EnergyCost,
		Source:     source,
	}
}

// EmitCardGains emits CARD_GAINED for each id that resolves in lookup and is
// not already owned, and returns the ids emitted.
func EmitCardGains(emit *Emitter, lookup content.Lookup, owned func(string) bool, ids []string, source CardSource) []string {
	var gained []string
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] || owned(id) {
			continue
		}
		card, ok := lookup.Card(id)
		if !ok {
			continue
		}
		seen[id] = true
		emit.Emit(EventTypeCardGained, CardGained(card, source))
		gained = append(gained, id)
	}
	return gained
}

// BattleTriggered builds the BATTLE_TRIGGERED payload for the quest's next
// battle. Battle ids are derived from the quest so replays reproduce them.
func BattleTriggered(quest ActiveQuest, spec content.BattleSpec) BattleTriggeredPayload {
	return BattleTriggeredPayload{
		BattleID:     fmt.Sprintf("%s-battle-%d", quest.QuestID, quest.BattlesFought()+1),
		QuestID:      quest.QuestID,
		OpponentType: spec.OpponentType,
		FactionID:    spec.FactionID,
		Difficulty:   spec.Difficulty,
		Context:      spec.Context,
	}
}

// SortedKeys returns the map's keys in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
