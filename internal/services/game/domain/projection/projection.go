// Package projection builds read models from game state and event history.
//
// Every function here is pure: it reads state, content and events and never
// changes them. Screens consume these views instead of raw state.
package projection

import (
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/content"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/game"
)

// Lookup is the content the read models resolve names from.
// *content.Catalog satisfies it.
type Lookup interface {
	content.Lookup
	Factions() []content.Faction
	Quests() []content.Quest
}

var screens = map[game.Phase]string{
	game.PhaseNotStarted:        "home",
	game.PhaseQuestHub:          "quest_hub",
	game.PhaseNarrative:         "dilemma",
	game.PhaseChoiceConsequence: "choice_consequence",
	game.PhaseAlliance:          "alliance",
	game.PhaseMediation:         "mediation",
	game.PhaseCardSelection:     "card_pool",
	game.PhaseDeployment:        "deployment",
	game.PhaseBattle:            "battle",
	game.PhaseConsequence:       "consequence",
	game.PhasePostBattleDilemma: "post_battle_dilemma",
	game.PhaseQuestSummary:      "quest_summary",
	game.PhaseEnding:            "ending",
}

// Screen returns the screen that renders the state's phase.
func Screen(s game.State) string {
	if screen, ok := screens[s.Phase]; ok {
		return screen
	}
	return "home"
}

func factionName(lookup Lookup, id string) string {
	if faction, ok := lookup.Faction(id); ok {
		return faction.Name
	}
	return id
}
