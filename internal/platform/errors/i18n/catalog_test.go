package i18n

import (
	"fmt"
	"testing"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
)

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	fallback := GetCatalog("fr-FR")
	if fallback.Locale() != "en-US" {
		t.Fatalf("fallback locale = %q, want en-US", fallback.Locale())
	}
}

func TestGetCatalogMatchesRegionlessLocale(t *testing.T) {
	if got := GetCatalog("pt").Locale(); got != "pt-BR" {
		t.Fatalf("locale = %q, want pt-BR", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("en-US", map[string]string{
		"code": "hello {{.name}}",
	})

	if got := cat.Format("unknown", nil); got != "unknown" {
		t.Fatalf("Format(unknown) = %q, want code fallback", got)
	}
	if got := cat.Format("code", nil); got != "hello " {
		t.Fatalf("Format(code) = %q, want empty placeholder", got)
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("en-US", map[string]string{
		"code": "{{ if .name }}",
	})
	if got := cat.Format("code", map[string]string{"name": "X"}); got != "{{ if .name }}" {
		t.Fatalf("Format = %q, want raw template", got)
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[string]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}

func TestLocalizeUsesMetadata(t *testing.T) {
	err := apperrors.WithMetadata(apperrors.CodePositionOutOfRange, "position out of range", map[string]string{"position": "7"})
	wrapped := fmt.Errorf("deploy: %w", err)

	if got := Localize("en-US", wrapped); got != "Position 7 must be between 1 and 5." {
		t.Fatalf("Localize en-US = %q", got)
	}
	if got := Localize("pt-BR", wrapped); got != "A posição 7 deve estar entre 1 e 5." {
		t.Fatalf("Localize pt-BR = %q", got)
	}
}

func TestLocalizePartialLocaleFallsBackToBase(t *testing.T) {
	err := apperrors.New(apperrors.CodeFleetFull, "fleet full")
	if got := Localize("pt-BR", err); got != "Your fleet already has  cards." {
		t.Fatalf("Localize = %q", got)
	}
}

func TestLocalizePlainError(t *testing.T) {
	if got := Localize("en-US", fmt.Errorf("boom")); got != "Something went wrong." {
		t.Fatalf("Localize = %q", got)
	}
}
