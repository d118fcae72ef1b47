package content

import (
	"errors"
	"fmt"
)

// MinStarterCards is the smallest starter fleet that can fight a battle.
const MinStarterCards = 5

func (c *Catalog) validate() error {
	var errs []error
	if c.doc.StartingBounty < 0 {
		errs = append(errs, fmt.Errorf("starting bounty must be non-negative"))
	}
	if len(c.factions) == 0 {
		errs = append(errs, fmt.Errorf("at least one faction is required"))
	}
	if len(c.doc.StarterCardIDs) < MinStarterCards {
		errs = append(errs, fmt.Errorf("at least %d starter cards are required, got %d", MinStarterCards, len(c.doc.StarterCardIDs)))
	}
	seenStarter := map[string]bool{}
	for _, id := range c.doc.StarterCardIDs {
		if _, ok := c.cards[id]; !ok {
			errs = append(errs, fmt.Errorf("starter card %q is not defined", id))
		}
		if seenStarter[id] {
			errs = append(errs, fmt.Errorf("starter card %q is listed twice", id))
		}
		seenStarter[id] = true
	}
	for _, card := range c.doc.Cards {
		errs = append(errs, c.validateCard(card)...)
	}
	for _, quest := range c.doc.Quests {
		errs = append(errs, c.validateQuest(quest)...)
	}
	for _, dilemma := range c.doc.Dilemmas {
		errs = append(errs, c.validateDilemma(dilemma)...)
	}
	for _, mediation := range c.doc.Mediations {
		errs = append(errs, c.validateMediation(mediation)...)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}
	return nil
}

func (c *Catalog) validateCard(card Card) []error {
	var errs []error
	if card.FactionID != "" {
		if _, ok := c.factions[card.FactionID]; !ok {
			errs = append(errs, fmt.Errorf("card %q references unknown faction %q", card.ID, card.FactionID))
		}
	}
	if card.Attack < 0 || card.Defense < 0 || card.Agility < 0 || card.EnergyCost < 0 {
		errs = append(errs, fmt.Errorf("card %q has negative stats", card.ID))
	}
	if card.Hull <= 0 {
		errs = append(errs, fmt.Errorf("card %q hull must be positive", card.ID))
	}
	return errs
}

func (c *Catalog) validateQuest(quest Quest) []error {
	var errs []error
	if _, ok := c.factions[quest.FactionID]; !ok {
		errs = append(errs, fmt.Errorf("quest %q references unknown faction %q", quest.ID, quest.FactionID))
	}
	if len(quest.DilemmaIDs) == 0 {
		errs = append(errs, fmt.Errorf("quest %q has no dilemmas", quest.ID))
	}
	if quest.BaseBounty < 0 {
		errs = append(errs, fmt.Errorf("quest %q base bounty must be non-negative", quest.ID))
	}
	for _, id := range quest.DilemmaIDs {
		dilemma, ok := c.dilemmas[id]
		if !ok {
			errs = append(errs, fmt.Errorf("quest %q references unknown dilemma %q", quest.ID, id))
			continue
		}
		if dilemma.QuestID != quest.ID {
			errs = append(errs, fmt.Errorf("dilemma %q belongs to quest %q, not %q", id, dilemma.QuestID, quest.ID))
		}
	}
	if quest.PostBattleDilemmaID != "" {
		if _, ok := c.dilemmas[quest.PostBattleDilemmaID]; !ok {
			errs = append(errs, fmt.Errorf("quest %q references unknown post-battle dilemma %q", quest.ID, quest.PostBattleDilemmaID))
		}
	}
	for _, req := range quest.Requires {
		if _, ok := c.quests[req]; !ok {
			errs = append(errs, fmt.Errorf("quest %q requires unknown quest %q", quest.ID, req))
		}
	}
	if quest.Battle != nil {
		errs = append(errs, c.validateBattle("quest "+quest.ID, *quest.Battle)...)
	}
	totalShare := 0.0
	seen := map[string]bool{}
	for _, option := range quest.Alliances {
		if _, ok := c.factions[option.FactionID]; !ok {
			errs = append(errs, fmt.Errorf("quest %q offers alliance with unknown faction %q", quest.ID, option.FactionID))
		}
		if seen[option.FactionID] {
			errs = append(errs, fmt.Errorf("quest %q offers faction %q twice", quest.ID, option.FactionID))
		}
		seen[option.FactionID] = true
		if option.BountyShare < 0 || option.BountyShare > 1 {
			errs = append(errs, fmt.Errorf("quest %q alliance %q bounty share must be within [0,1]", quest.ID, option.FactionID))
		}
		totalShare += option.BountyShare
		for _, id := range option.CardIDs {
			if _, ok := c.cards[id]; !ok {
				errs = append(errs, fmt.Errorf("quest %q alliance %q references unknown card %q", quest.ID, option.FactionID, id))
			}
		}
		errs = append(errs, c.validateReputation("quest "+quest.ID+" alliance "+option.FactionID, option.Reputation)...)
	}
	if totalShare > 1 {
		errs = append(errs, fmt.Errorf("quest %q alliance bounty shares exceed 1", quest.ID))
	}
	return errs
}

func (c *Catalog) validateDilemma(dilemma Dilemma) []error {
	var errs []error
	quest, ok := c.quests[dilemma.QuestID]
	if !ok {
		return []error{fmt.Errorf("dilemma %q references unknown quest %q", dilemma.ID, dilemma.QuestID)}
	}
	if len(dilemma.Choices) == 0 {
		errs = append(errs, fmt.Errorf("dilemma %q has no choices", dilemma.ID))
	}
	seen := map[string]bool{}
	for _, choice := range dilemma.Choices {
		where := fmt.Sprintf("dilemma %q choice %q", dilemma.ID, choice.ID)
		if choice.ID == "" {
			errs = append(errs, fmt.Errorf("dilemma %q has a choice without id", dilemma.ID))
		}
		if seen[choice.ID] {
			errs = append(errs, fmt.Errorf("%s is duplicated", where))
		}
		seen[choice.ID] = true
		errs = append(errs, c.validateReputation(where, choice.Consequences.Reputation)...)
		triggers := choice.Triggers
		if (triggers.Battle || triggers.Alliance) && quest.Battle == nil {
			errs = append(errs, fmt.Errorf("%s leads to battle but quest %q has none", where, quest.ID))
		}
		if triggers.MediationID != "" {
			if _, ok := c.mediations[triggers.MediationID]; !ok {
				errs = append(errs, fmt.Errorf("%s references unknown mediation %q", where, triggers.MediationID))
			}
		}
		if triggers.NextDilemmaID != "" {
			if _, ok := c.dilemmas[triggers.NextDilemmaID]; !ok {
				errs = append(errs, fmt.Errorf("%s references unknown dilemma %q", where, triggers.NextDilemmaID))
			}
		}
	}
	return errs
}

func (c *Catalog) validateMediation(mediation Mediation) []error {
	var errs []error
	if _, ok := c.quests[mediation.QuestID]; !ok {
		errs = append(errs, fmt.Errorf("mediation %q references unknown quest %q", mediation.ID, mediation.QuestID))
	}
	if len(mediation.Parties) != 2 {
		errs = append(errs, fmt.Errorf("mediation %q must name exactly two parties, got %d", mediation.ID, len(mediation.Parties)))
	} else if mediation.Parties[0] == mediation.Parties[1] {
		errs = append(errs, fmt.Errorf("mediation %q parties must differ", mediation.ID))
	}
	for _, party := range mediation.Parties {
		if _, ok := c.factions[party]; !ok {
			errs = append(errs, fmt.Errorf("mediation %q references unknown faction %q", mediation.ID, party))
		}
	}
	if mediation.LeanEffect < 0 || mediation.RefusePenalty < 0 {
		errs = append(errs, fmt.Errorf("mediation %q effects must be non-negative", mediation.ID))
	}
	if mediation.Battle != nil {
		errs = append(errs, c.validateBattle("mediation "+mediation.ID, *mediation.Battle)...)
	} else if _, ok := c.BattleFor(mediation); !ok {
		errs = append(errs, fmt.Errorf("mediation %q has no battle to fall back to", mediation.ID))
	}
	return errs
}

func (c *Catalog) validateBattle(where string, battle BattleSpec) []error {
	var errs []error
	if battle.FactionID != "" {
		if _, ok := c.factions[battle.FactionID]; !ok {
			errs = append(errs, fmt.Errorf("%s battle references unknown faction %q", where, battle.FactionID))
		}
	}
	if battle.Difficulty < 1 {
		errs = append(errs, fmt.Errorf("%s battle difficulty must be at least 1", where))
	}
	return errs
}

func (c *Catalog) validateReputation(where string, effects map[string]int) []error {
	var errs []error
	for factionID := range effects {
		if _, ok := c.factions[factionID]; !ok {
			errs = append(errs, fmt.Errorf("%s changes reputation of unknown faction %q", where, factionID))
		}
	}
	return errs
}
