// Package i18n renders localized messages for domain error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
	i18ncatalog "github.com/shawndeggans/space-fortress/internal/platform/i18n/catalog"
)

const errorsNamespace = "errors"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// NewCatalog creates a catalog from a locale and message templates.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	return &Catalog{locale: locale, messages: messages}
}

// RegisterCatalog installs or replaces the catalog for a locale.
func RegisterCatalog(locale string, catalog *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = catalog
}

// GetCatalog returns the catalog closest to the given locale.
// Falls back to en-US if nothing matches.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, errorsNamespace)
	if c, ok := lookupCatalog(resolved); ok {
		return c
	}

	built := NewCatalog(resolved, messages)
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[resolved]; ok {
		return existing
	}
	catalogs[resolved] = built
	return built
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	c, ok := catalogs[locale]
	return c, ok
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the base locale, then to the code itself.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok && c.locale != i18ncatalog.BaseLocale {
		return GetCatalog(i18ncatalog.BaseLocale).Format(code, metadata)
	}
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// Localize renders err for a player. Errors without a domain code render
// the generic unknown message.
func Localize(locale string, err error) string {
	if err == nil {
		return ""
	}
	code := apperrors.GetCode(err)
	return GetCatalog(locale).Format(string(code), apperrors.GetMetadata(err))
}
