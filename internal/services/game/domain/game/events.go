package game

import (
	"fmt"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
)

const (
	EventTypeGameStarted                   event.Type = "GAME_STARTED"
	EventTypeQuestAccepted                 event.Type = "QUEST_ACCEPTED"
	EventTypeDilemmaPresented              event.Type = "DILEMMA_PRESENTED"
	EventTypeChoiceMade                    event.Type = "CHOICE_MADE"
	EventTypeReputationChanged             event.Type = "REPUTATION_CHANGED"
	EventTypeCardGained                    event.Type = "CARD_GAINED"
	EventTypeCardLost                      event.Type = "CARD_LOST"
	EventTypeCardLocked                    event.Type = "CARD_LOCKED"
	EventTypeCardUnlocked                  event.Type = "CARD_UNLOCKED"
	EventTypeBountyModified                event.Type = "BOUNTY_MODIFIED"
	EventTypeFlagSet                       event.Type = "FLAG_SET"
	EventTypeChoiceConsequencePresented    event.Type = "CHOICE_CONSEQUENCE_PRESENTED"
	EventTypeChoiceConsequenceAcknowledged event.Type = "CHOICE_CONSEQUENCE_ACKNOWLEDGED"
	EventTypePhaseChanged                  event.Type = "PHASE_CHANGED"
	EventTypeAllianceFormed                event.Type = "ALLIANCE_FORMED"
	EventTypeAlliancesFinalized            event.Type = "ALLIANCES_FINALIZED"
	EventTypeMediationStarted              event.Type = "MEDIATION_STARTED"
	EventTypeMediationLeaned               event.Type = "MEDIATION_LEANED"
	EventTypeMediationRefused              event.Type = "MEDIATION_REFUSED"
	EventTypeCompromiseAccepted            event.Type = "COMPROMISE_ACCEPTED"
	EventTypeBattleTriggered               event.Type = "BATTLE_TRIGGERED"
	EventTypeCardSelected                  event.Type = "CARD_SELECTED"
	EventTypeCardDeselected                event.Type = "CARD_DESELECTED"
	EventTypeFleetCommitted                event.Type = "FLEET_COMMITTED"
	EventTypeCardPositioned                event.Type = "CARD_POSITIONED"
	EventTypeOrdersLocked                  event.Type = "ORDERS_LOCKED"
	EventTypeRoundStarted                  event.Type = "ROUND_STARTED"
	EventTypeCardsRevealed                 event.Type = "CARDS_REVEALED"
	EventTypeInitiativeResolved            event.Type = "INITIATIVE_RESOLVED"
	EventTypeAttackRolled                  event.Type = "ATTACK_ROLLED"
	EventTypeRoundResolved                 event.Type = "ROUND_RESOLVED"
	EventTypeBattleResolved                event.Type = "BATTLE_RESOLVED"
	EventTypeOutcomeAcknowledged           event.Type = "OUTCOME_ACKNOWLEDGED"
	EventTypeQuestCompleted                event.Type = "QUEST_COMPLETED"
	EventTypeQuestFailed                   event.Type = "QUEST_FAILED"
	EventTypeQuestSummaryPresented         event.Type = "QUEST_SUMMARY_PRESENTED"
	EventTypeQuestSummaryAcknowledged      event.Type = "QUEST_SUMMARY_ACKNOWLEDGED"
	EventTypeGameEnded                     event.Type = "GAME_ENDED"
)

// EventDefinitions lists every game event type with its replay intent.
func EventDefinitions() []event.Definition {
	audit := func(t event.Type) event.Definition {
		return event.Definition{Type: t, Intent: event.IntentAuditOnly}
	}
	replay := func(t event.Type) event.Definition {
		return event.Definition{Type: t, Intent: event.IntentReplay}
	}
	return []event.Definition{
		replay(EventTypeGameStarted),
		replay(EventTypeQuestAccepted),
		replay(EventTypeDilemmaPresented),
		replay(EventTypeChoiceMade),
		replay(EventTypeReputationChanged),
		replay(EventTypeCardGained),
		replay(EventTypeCardLost),
		replay(EventTypeCardLocked),
		replay(EventTypeCardUnlocked),
		replay(EventTypeBountyModified),
		replay(EventTypeFlagSet),
		replay(EventTypeChoiceConsequencePresented),
		replay(EventTypeChoiceConsequenceAcknowledged),
		replay(EventTypePhaseChanged),
		replay(EventTypeAllianceFormed),
		audit(EventTypeAlliancesFinalized),
		replay(EventTypeMediationStarted),
		replay(EventTypeMediationLeaned),
		replay(EventTypeMediationRefused),
		replay(EventTypeCompromiseAccepted),
		replay(EventTypeBattleTriggered),
		replay(EventTypeCardSelected),
		replay(EventTypeCardDeselected),
		replay(EventTypeFleetCommitted),
		replay(EventTypeCardPositioned),
		replay(EventTypeOrdersLocked),
		replay(EventTypeRoundStarted),
		audit(EventTypeCardsRevealed),
		audit(EventTypeInitiativeResolved),
		audit(EventTypeAttackRolled),
		replay(EventTypeRoundResolved),
		replay(EventTypeBattleResolved),
		replay(EventTypeOutcomeAcknowledged),
		replay(EventTypeQuestCompleted),
		replay(EventTypeQuestFailed),
		replay(EventTypeQuestSummaryPresented),
		replay(EventTypeQuestSummaryAcknowledged),
		replay(EventTypeGameEnded),
	}
}

// RegisterEvents adds every game event type to registry.
func RegisterEvents(registry *event.Registry) error {
	for _, def := range EventDefinitions() {
		if err := registry.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.Type, err)
		}
	}
	return nil
}

// NewEventRegistry returns a registry holding every game event type.
func NewEventRegistry() (*event.Registry, error) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
