package game

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
)

// FoldHandledTypes returns the event types that change state when folded.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypeGameStarted,
		EventTypeQuestAccepted,
		EventTypeDilemmaPresented,
		EventTypeChoiceMade,
		EventTypeReputationChanged,
		EventTypeCardGained,
		EventTypeCardLost,
		EventTypeCardLocked,
		EventTypeCardUnlocked,
		EventTypeBountyModified,
		EventTypeFlagSet,
		EventTypeChoiceConsequencePresented,
		EventTypeChoiceConsequenceAcknowledged,
		EventTypePhaseChanged,
		EventTypeAllianceFormed,
		EventTypeMediationStarted,
		EventTypeMediationLeaned,
		EventTypeMediationRefused,
		EventTypeCompromiseAccepted,
		EventTypeBattleTriggered,
		EventTypeCardSelected,
		EventTypeCardDeselected,
		EventTypeFleetCommitted,
		EventTypeCardPositioned,
		EventTypeOrdersLocked,
		EventTypeRoundStarted,
		EventTypeRoundResolved,
		EventTypeBattleResolved,
		EventTypeOutcomeAcknowledged,
		EventTypeQuestCompleted,
		EventTypeQuestFailed,
		EventTypeQuestSummaryPresented,
		EventTypeQuestSummaryAcknowledged,
		EventTypeGameEnded,
	}
}

// Rebuild folds events over the initial state.
func Rebuild(events []event.Event) (State, error) {
	return FoldAll(Initial(), events)
}

// FoldAll folds events over state in order.
func FoldAll(state State, events []event.Event) (State, error) {
	var err error
	for _, evt := range events {
		state, err = Fold(state, evt)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// Fold applies one event to state and returns the next state. The input state
// is not modified. Unknown and informational event types leave state as is.
// A recognized event whose payload cannot be decoded returns an error and the
// unchanged state.
func Fold(state State, evt event.Event) (State, error) {
	next := state.Clone()
	if next.Reputation == nil {
		next.Reputation = map[string]int{}
	}
	var err error
	switch evt.Type {
	case EventTypeGameStarted:
		err = apply(evt, &next, foldGameStarted)
	case EventTypeQuestAccepted:
		err = apply(evt, &next, foldQuestAccepted)
	case EventTypeDilemmaPresented:
		err = apply(evt, &next, foldDilemmaPresented)
	case EventTypeChoiceMade:
		err = apply(evt, &next, func(s *State, p ChoiceMadePayload) {
			s.ChoiceHistory = append(s.ChoiceHistory, ChoiceRecord{
				QuestID:   p.QuestID,
				DilemmaID: p.DilemmaID,
				ChoiceID:  p.ChoiceID,
				Timestamp: evt.Timestamp,
			})
			s.Stats.ChoicesMade++
			if s.ActiveQuest != nil {
				s.ActiveQuest.DilemmasCompleted++
			}
		})
	case EventTypeReputationChanged:
		err = apply(evt, &next, func(s *State, p ReputationChangedPayload) {
			s.Reputation[p.FactionID] = ClampReputation(p.NewValue)
		})
	case EventTypeCardGained:
		err = apply(evt, &next, func(s *State, p CardGainedPayload) {
			foldCardGained(s, p, evt)
		})
	case EventTypeCardLost:
		err = apply(evt, &next, foldCardLost)
	case EventTypeCardLocked:
		err = apply(evt, &next, func(s *State, p CardLockedPayload) {
			setLocked(s, p.CardID, true, p.Reason)
		})
	case EventTypeCardUnlocked:
		err = apply(evt, &next, func(s *State, p CardUnlockedPayload) {
			setLocked(s, p.CardID, false, "")
		})
	case EventTypeBountyModified:
		err = apply(evt, &next, foldBountyModified)
	case EventTypeFlagSet:
		err = apply(evt, &next, func(s *State, p FlagSetPayload) {
			if s.Flags == nil {
				s.Flags = map[string]bool{}
			}
			s.Flags[p.Flag] = p.Value
		})
	case EventTypeChoiceConsequencePresented:
		err = apply(evt, &next, func(s *State, p ChoiceConsequencePresentedPayload) {
			consequence := p.Consequence
			s.PendingChoiceConsequence = &consequence
		})
	case EventTypeChoiceConsequenceAcknowledged:
		next.PendingChoiceConsequence = nil
	case EventTypePhaseChanged:
		err = apply(evt, &next, func(s *State, p PhaseChangedPayload) {
			s.Phase = p.To
		})
	case EventTypeAllianceFormed:
		err = apply(evt, &next, func(s *State, p AllianceFormedPayload) {
			s.Stats.AlliancesFormed++
			if s.ActiveQuest == nil || s.ActiveQuest.AlliedWith(p.FactionID) {
				return
			}
			s.ActiveQuest.Alliances = append(s.ActiveQuest.Alliances, Alliance{
				FactionID:   p.FactionID,
				BountyShare: p.BountyShare,
				IsSecret:    p.IsSecret,
			})
		})
	case EventTypeMediationStarted:
		err = apply(evt, &next, func(s *State, p MediationStartedPayload) {
			s.CurrentMediationID = p.MediationID
			s.Mediation = &MediationState{MediationID: p.MediationID, Parties: slices.Clone(p.Parties)}
		})
	case EventTypeMediationLeaned:
		err = apply(evt, &next, func(s *State, p MediationLeanedPayload) {
			if s.Mediation == nil {
				s.Mediation = &MediationState{MediationID: p.MediationID}
			}
			s.Mediation.LeanedToward = p.TowardFactionID
			s.Mediation.LeanedAway = p.AwayFactionID
		})
	case EventTypeMediationRefused:
		next.Stats.MediationsRefused++
		next.CurrentMediationID = ""
		next.Mediation = nil
	case EventTypeCompromiseAccepted:
		err = apply(evt, &next, func(s *State, p CompromiseAcceptedPayload) {
			s.Stats.MediationsCompromised++
			s.CurrentMediationID = ""
			s.Mediation = nil
			if s.ActiveQuest != nil {
				s.ActiveQuest.Resolution = &Resolution{
					Source:   ResolutionMediation,
					Outcome:  OutcomeCompromise,
					Modifier: p.BountyModifier,
				}
			}
		})
	case EventTypeBattleTriggered:
		err = apply(evt, &next, func(s *State, p BattleTriggeredPayload) {
			s.CurrentBattle = &BattleState{
				BattleID:          p.BattleID,
				Phase:             BattlePhaseSelection,
				OpponentType:      p.OpponentType,
				OpponentFactionID: p.FactionID,
				Difficulty:        p.Difficulty,
				Context:           p.Context,
			}
		})
	case EventTypeCardSelected:
		err = apply(evt, &next, func(s *State, p CardSelectedPayload) {
			if s.CurrentBattle == nil || s.CurrentBattle.IsSelected(p.CardID) {
				return
			}
			s.CurrentBattle.SelectedCardIDs = append(s.CurrentBattle.SelectedCardIDs, p.CardID)
		})
	case EventTypeCardDeselected:
		err = apply(evt, &next, func(s *State, p CardDeselectedPayload) {
			if s.CurrentBattle == nil {
				return
			}
			s.CurrentBattle.SelectedCardIDs = slices.DeleteFunc(s.CurrentBattle.SelectedCardIDs, func(id string) bool {
				return id == p.CardID
			})
		})
	case EventTypeFleetCommitted:
		err = apply(evt, &next, func(s *State, p FleetCommittedPayload) {
			if s.CurrentBattle == nil {
				return
			}
			s.CurrentBattle.SelectedCardIDs = slices.Clone(p.CardIDs)
			s.CurrentBattle.Phase = BattlePhaseDeployment
		})
	case EventTypeCardPositioned:
		err = apply(evt, &next, foldCardPositioned)
	case EventTypeOrdersLocked:
		err = apply(evt, &next, func(s *State, p OrdersLockedPayload) {
			if s.CurrentBattle == nil {
				return
			}
			s.CurrentBattle.Positions = p.Positions
			s.CurrentBattle.Seed = p.Seed
			s.CurrentBattle.Phase = BattlePhaseExecution
		})
	case EventTypeRoundStarted:
		err = apply(evt, &next, func(s *State, p RoundStartedPayload) {
			if s.CurrentBattle != nil {
				s.CurrentBattle.CurrentRound = p.Round
			}
		})
	case EventTypeRoundResolved:
		err = apply(evt, &next, func(s *State, p RoundResolvedPayload) {
			if s.CurrentBattle != nil {
				s.CurrentBattle.Rounds = append(s.CurrentBattle.Rounds, p)
			}
		})
	case EventTypeBattleResolved:
		err = apply(evt, &next, foldBattleResolved)
	case EventTypeOutcomeAcknowledged:
		if next.ActiveQuest != nil && next.ActiveQuest.Resolution != nil {
			next.ActiveQuest.Resolution.Acknowledged = true
		}
	case EventTypeQuestCompleted:
		err = apply(evt, &next, func(s *State, p QuestCompletedPayload) {
			s.Stats.QuestsCompleted++
			finishQuest(s, completedRecord(p.QuestID, p.FactionID, QuestResultCompleted, evt), p.UnlockedQuestIDs)
		})
	case EventTypeQuestFailed:
		err = apply(evt, &next, func(s *State, p QuestFailedPayload) {
			s.Stats.QuestsFailed++
			finishQuest(s, completedRecord(p.QuestID, p.FactionID, QuestResultFailed, evt), p.UnlockedQuestIDs)
		})
	case EventTypeQuestSummaryPresented:
		err = apply(evt, &next, func(s *State, p QuestSummaryPresentedPayload) {
			summary := p.Summary
			s.PendingQuestSummary = &summary
		})
	case EventTypeQuestSummaryAcknowledged:
		next.PendingQuestSummary = nil
	case EventTypeGameEnded:
		err = apply(evt, &next, func(s *State, p GameEndedPayload) {
			s.Status = StatusEnded
			s.EndingID = p.EndingID
		})
	default:
		return state, nil
	}
	if err != nil {
		return state, err
	}
	next.compact()
	return next, nil
}

func apply[P any](evt event.Event, state *State, fn func(*State, P)) error {
	var payload P
	if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
		return fmt.Errorf("game fold %s: %w", evt.Type, err)
	}
	fn(state, payload)
	return nil
}

func foldGameStarted(s *State, p GameStartedPayload) {
	phase := s.Phase
	*s = Initial()
	s.Phase = phase
	s.PlayerID = p.PlayerID
	s.Status = StatusInProgress
	s.Bounty = max(p.StartingBounty, 0)
	s.AvailableQuestIDs = slices.Clone(p.AvailableQuestIDs)
	for _, factionID := range p.FactionIDs {
		s.Reputation[factionID] = 0
	}
}

func foldQuestAccepted(s *State, p QuestAcceptedPayload) {
	s.ActiveQuest = &ActiveQuest{QuestID: p.QuestID, FactionID: p.FactionID}
	s.AvailableQuestIDs = slices.DeleteFunc(s.AvailableQuestIDs, func(id string) bool {
		return id == p.QuestID
	})
	s.CurrentDilemmaID = ""
	s.CurrentBattle = nil
	s.CurrentMediationID = ""
	s.Mediation = nil
}

func foldDilemmaPresented(s *State, p DilemmaPresentedPayload) {
	s.CurrentDilemmaID = p.DilemmaID
	if s.ActiveQuest != nil && !p.PostBattle {
		s.ActiveQuest.CurrentDilemmaIndex = p.DilemmaIndex
	}
}

func foldCardGained(s *State, p CardGainedPayload, evt event.Event) {
	if s.Owns(p.CardID) {
		return
	}
	s.OwnedCards = append(s.OwnedCards, OwnedCard{
		ID:         p.CardID,
		Name:       p.Name,
		FactionID:  p.FactionID,
		Attack:     p.Attack,
		Defense:    p.Defense,
		Hull:       p.Hull,
		Agility:    p.Agility,
		EnergyCost: p.EnergyCost,
		Source:     p.Source,
		AcquiredAt: evt.Timestamp,
	})
	s.Stats.CardsGained++
	if s.ActiveQuest != nil && p.Source != CardSourceStarter {
		s.ActiveQuest.CardsGained = append(s.ActiveQuest.CardsGained, p.CardID)
	}
}

func foldCardLost(s *State, p CardLostPayload) {
	before := len(s.OwnedCards)
	s.OwnedCards = slices.DeleteFunc(s.OwnedCards, func(card OwnedCard) bool {
		return card.ID == p.CardID
	})
	if len(s.OwnedCards) == before {
		return
	}
	s.Stats.CardsLost++
	if battle := s.CurrentBattle; battle != nil {
		battle.SelectedCardIDs = slices.DeleteFunc(battle.SelectedCardIDs, func(id string) bool {
			return id == p.CardID
		})
		if pos := battle.PositionOf(p.CardID); pos > 0 {
			battle.Positions[pos-1] = ""
		}
	}
}

func setLocked(s *State, cardID string, locked bool, reason string) {
	for i := range s.OwnedCards {
		if s.OwnedCards[i].ID == cardID {
			s.OwnedCards[i].IsLocked = locked
			s.OwnedCards[i].LockReason = reason
			return
		}
	}
}

func foldBountyModified(s *State, p BountyModifiedPayload) {
	previous := s.Bounty
	s.Bounty = max(p.NewValue, 0)
	change := s.Bounty - previous
	if change > 0 {
		s.Stats.BountyEarned += change
		if s.ActiveQuest != nil {
			s.ActiveQuest.BountyEarned += change
		}
	} else {
		s.Stats.BountySpent -= change
	}
}

func foldCardPositioned(s *State, p CardPositionedPayload) {
	battle := s.CurrentBattle
	if battle == nil || p.Position < 1 || p.Position > FleetSize {
		return
	}
	if pos := battle.PositionOf(p.CardID); pos > 0 {
		battle.Positions[pos-1] = ""
	}
	battle.Positions[p.Position-1] = p.CardID
}

func foldBattleResolved(s *State, p BattleResolvedPayload) {
	if battle := s.CurrentBattle; battle != nil {
		battle.Phase = BattlePhaseResolved
		battle.Outcome = p.Outcome
		battle.PlayerWins = p.PlayerWins
		battle.OpponentWins = p.OpponentWins
		battle.Draws = p.Draws
	}
	switch p.Outcome {
	case OutcomeVictory:
		s.Stats.BattlesWon++
	case OutcomeDefeat:
		s.Stats.BattlesLost++
	default:
		s.Stats.BattlesDrawn++
	}
	if quest := s.ActiveQuest; quest != nil {
		switch p.Outcome {
		case OutcomeVictory:
			quest.BattlesWon++
		case OutcomeDefeat:
			quest.BattlesLost++
		default:
			quest.BattlesDrawn++
		}
		quest.Resolution = &Resolution{
			Source:   ResolutionBattle,
			Outcome:  p.Outcome,
			Modifier: p.Outcome.Modifier(),
		}
	}
}

// completedRecord builds the history entry for a finished quest.
func completedRecord(questID, factionID string, result QuestResult, evt event.Event) CompletedQuest {
	return CompletedQuest{
		QuestID:    questID,
		FactionID:  factionID,
		Result:     result,
		FinishedAt: evt.Timestamp,
	}
}

func finishQuest(s *State, record CompletedQuest, unlocked []string) {
	if s.ActiveQuest != nil && s.ActiveQuest.QuestID == record.QuestID {
		record.BountyEarned = s.ActiveQuest.BountyEarned
	}
	s.CompletedQuests = append(s.CompletedQuests, record)
	s.AvailableQuestIDs = slices.Clone(unlocked)
	s.ActiveQuest = nil
	s.CurrentDilemmaID = ""
	s.CurrentBattle = nil
	s.CurrentMediationID = ""
	s.Mediation = nil
}
