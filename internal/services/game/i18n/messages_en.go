package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, ScreenHomeKey, "Space Fortress")
	message.SetString(lang, ScreenQuestHubKey, "Quest Hub")
	message.SetString(lang, ScreenDilemmaKey, "Dilemma")
	message.SetString(lang, ScreenChoiceConsequenceKey, "Consequences")
	message.SetString(lang, ScreenAllianceKey, "Alliances")
	message.SetString(lang, ScreenMediationKey, "Mediation")
	message.SetString(lang, ScreenCardPoolKey, "Card Pool")
	message.SetString(lang, ScreenDeploymentKey, "Deployment")
	message.SetString(lang, ScreenBattleKey, "Battle")
	message.SetString(lang, ScreenConsequenceKey, "Outcome")
	message.SetString(lang, ScreenPostBattleKey, "Aftermath")
	message.SetString(lang, ScreenQuestSummaryKey, "Quest Summary")
	message.SetString(lang, ScreenEndingKey, "Ending")
}
