package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, ScreenHomeKey, "Fortaleza Espacial")
	message.SetString(lang, ScreenQuestHubKey, "Central de Missões")
	message.SetString(lang, ScreenDilemmaKey, "Dilema")
	message.SetString(lang, ScreenChoiceConsequenceKey, "Consequências")
	message.SetString(lang, ScreenAllianceKey, "Alianças")
	message.SetString(lang, ScreenMediationKey, "Mediação")
	message.SetString(lang, ScreenCardPoolKey, "Cartas")
	message.SetString(lang, ScreenDeploymentKey, "Posicionamento")
	message.SetString(lang, ScreenBattleKey, "Batalha")
	message.SetString(lang, ScreenConsequenceKey, "Resultado")
	message.SetString(lang, ScreenPostBattleKey, "Rescaldo")
	message.SetString(lang, ScreenQuestSummaryKey, "Resumo da Missão")
	message.SetString(lang, ScreenEndingKey, "Desfecho")
}
