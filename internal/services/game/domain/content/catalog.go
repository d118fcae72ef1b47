// Package content provides the read-only game tables: factions, cards, quests,
// dilemmas, and mediations.
//
// Tables are loaded once from YAML, validated as a whole, and then shared by
// every save slot without synchronization. Lookups never mutate the catalog.
package content

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embeddedFS embed.FS

const embeddedPath = "data/space_fortress.yaml"

// Lookup is the read-only content contract used by command handlers.
type Lookup interface {
	Card(id string) (Card, bool)
	Faction(id string) (Faction, bool)
	Quest(id string) (Quest, bool)
	Dilemma(id string) (Dilemma, bool)
	Mediation(id string) (Mediation, bool)
}

// Catalog is an indexed, validated content document.
type Catalog struct {
	doc        Document
	factions   map[string]Faction
	cards      map[string]Card
	quests     map[string]Quest
	dilemmas   map[string]Dilemma
	mediations map[string]Mediation
}

var _ Lookup = (*Catalog)(nil)

// LoadEmbedded loads the content tables shipped with the binary.
func LoadEmbedded() (*Catalog, error) {
	data, err := embeddedFS.ReadFile(embeddedPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded content: %w", err)
	}
	return Parse(data)
}

// LoadFile loads content tables from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML content document.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	return New(doc)
}

// New indexes and validates a content document.
func New(doc Document) (*Catalog, error) {
	c := &Catalog{
		doc:        doc,
		factions:   make(map[string]Faction, len(doc.Factions)),
		cards:      make(map[string]Card, len(doc.Cards)),
		quests:     make(map[string]Quest, len(doc.Quests)),
		dilemmas:   make(map[string]Dilemma, len(doc.Dilemmas)),
		mediations: make(map[string]Mediation, len(doc.Mediations)),
	}
	if err := indexUnique(c.factions, doc.Factions, func(f Faction) string { return f.ID }, "faction"); err != nil {
		return nil, err
	}
	if err := indexUnique(c.cards, doc.Cards, func(card Card) string { return card.ID }, "card"); err != nil {
		return nil, err
	}
	if err := indexUnique(c.quests, doc.Quests, func(q Quest) string { return q.ID }, "quest"); err != nil {
		return nil, err
	}
	if err := indexUnique(c.dilemmas, doc.Dilemmas, func(d Dilemma) string { return d.ID }, "dilemma"); err != nil {
		return nil, err
	}
	if err := indexUnique(c.mediations, doc.Mediations, func(m Mediation) string { return m.ID }, "mediation"); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func indexUnique[T any](index map[string]T, items []T, key func(T) string, kind string) error {
	for _, item := range items {
		id := strings.TrimSpace(key(item))
		if id == "" {
			return fmt.Errorf("%s id is required", kind)
		}
		if _, exists := index[id]; exists {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		index[id] = item
	}
	return nil
}

// Card returns the card template with the given id.
func (c *Catalog) Card(id string) (Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// Faction returns the faction with the given id.
func (c *Catalog) Faction(id string) (Faction, bool) {
	faction, ok := c.factions[id]
	return faction, ok
}

// Quest returns the quest with the given id.
func (c *Catalog) Quest(id string) (Quest, bool) {
	quest, ok := c.quests[id]
	return quest, ok
}

// Dilemma returns the dilemma with the given id.
func (c *Catalog) Dilemma(id string) (Dilemma, bool) {
	dilemma, ok := c.dilemmas[id]
	return dilemma, ok
}

// Mediation returns the mediation with the given id.
func (c *Catalog) Mediation(id string) (Mediation, bool) {
	mediation, ok := c.mediations[id]
	return mediation, ok
}

// Factions returns factions in document order.
func (c *Catalog) Factions() []Faction {
	return append([]Faction(nil), c.doc.Factions...)
}

// FactionIDs returns faction ids in document order.
func (c *Catalog) FactionIDs() []string {
	ids := make([]string, len(c.doc.Factions))
	for i, faction := range c.doc.Factions {
		ids[i] = faction.ID
	}
	return ids
}

// Quests returns quests in document order.
func (c *Catalog) Quests() []Quest {
	return append([]Quest(nil), c.doc.Quests...)
}

// StarterCardIDs returns the cards every new game begins with.
func (c *Catalog) StarterCardIDs() []string {
	return append([]string(nil), c.doc.StarterCardIDs...)
}

// StartingBounty returns the bounty every new game begins with.
func (c *Catalog) StartingBounty() int {
	return c.doc.StartingBounty
}

// CardsByFaction returns the faction's cards sorted by id.
func (c *Catalog) CardsByFaction(factionID string) []Card {
	var cards []Card
	for _, card := range c.cards {
		if card.FactionID == factionID {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards
}

// AllCards returns every card sorted by id.
func (c *Catalog) AllCards() []Card {
	cards := make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards
}

// UnlockedQuestIDs returns quests whose prerequisites are all in completed
// and which are not themselves completed, in document order.
func (c *Catalog) UnlockedQuestIDs(completed []string) []string {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	var ids []string
	for _, quest := range c.doc.Quests {
		if done[quest.ID] {
			continue
		}
		ready := true
		for _, req := range quest.Requires {
			if !done[req] {
				ready = false
				break
			}
		}
		if ready {
			ids = append(ids, quest.ID)
		}
	}
	return ids
}

// BattleFor returns the battle a mediation falls back to, preferring the
// mediation's own battle over its quest's.
func (c *Catalog) BattleFor(mediation Mediation) (BattleSpec, bool) {
	if mediation.Battle != nil {
		return *mediation.Battle, true
	}
	quest, ok := c.quests[mediation.QuestID]
	if !ok || quest.Battle == nil {
		return BattleSpec{}, false
	}
	return *quest.Battle, true
}
