package i18n

import "testing"

func TestScreenTitle(t *testing.T) {
	tests := []struct {
		locale, screen, want string
	}{
		{"en-US", "quest_hub", "Quest Hub"},
		{"pt-BR", "quest_hub", "Central de Missões"},
		{"pt", "battle", "Batalha"},
		{"fr-FR", "battle", "Battle"},
		{"", "ending", "Ending"},
		{"en-US", "warp_gate", "warp_gate"},
	}
	for _, tt := range tests {
		if got := ScreenTitle(tt.locale, tt.screen); got != tt.want {
			t.Fatalf("ScreenTitle(%q, %q) = %q, want %q", tt.locale, tt.screen, got, tt.want)
		}
	}
}
