// Package i18n holds localized player-facing labels for game screens.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Screen title keys, one per projection screen name.
const (
	ScreenHomeKey              = "screen.home"
	ScreenQuestHubKey          = "screen.quest_hub"
	ScreenDilemmaKey           = "screen.dilemma"
	ScreenChoiceConsequenceKey = "screen.choice_consequence"
	ScreenAllianceKey          = "screen.alliance"
	ScreenMediationKey         = "screen.mediation"
	ScreenCardPoolKey          = "screen.card_pool"
	ScreenDeploymentKey        = "screen.deployment"
	ScreenBattleKey            = "screen.battle"
	ScreenConsequenceKey       = "screen.consequence"
	ScreenPostBattleKey        = "screen.post_battle_dilemma"
	ScreenQuestSummaryKey      = "screen.quest_summary"
	ScreenEndingKey            = "screen.ending"
)

var (
	supported = []language.Tag{language.English, language.MustParse("pt-BR")}
	matcher   = language.NewMatcher(supported)
)

// ScreenTitle returns the title of screen in the closest supported locale.
// Unknown screens return the screen name.
func ScreenTitle(locale, screen string) string {
	_, index, _ := matcher.Match(language.Make(locale))
	key := "screen." + screen
	title := message.NewPrinter(supported[index]).Sprintf(key)
	if title == key {
		return screen
	}
	return title
}
