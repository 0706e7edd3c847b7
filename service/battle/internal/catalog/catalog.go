package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"MonsterTCG/service/battle/internal/card"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultDeckSize e' il numero di carte date a ciascun giocatore nella modalita' casuale.
const DefaultDeckSize = 10

//go:embed catalog.yaml
var defaultCatalog []byte

// File rappresenta la struttura YAML del catalogo.
type File struct {
	Cards []Entry `yaml:"cards"`
}

// Entry e' una carta del catalogo; Count zero vale uno.
type Entry struct {
	Name   string  `yaml:"name"`
	Damage float64 `yaml:"damage"`
	Count  int     `yaml:"count"`
}

// Catalog fornisce mazzi casuali pescati dalle carte predefinite.
type Catalog struct {
	entries []Entry
	pick    func(n int) int
}

// Load carica il catalogo incluso nel binario.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile carica un catalogo alternativo da disco.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse legge il YAML ed espande le voci con Count > 1.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	var entries []Entry
	for _, e := range f.Cards {
		if e.Name == "" {
			return nil, errors.New("catalog entry without name")
		}
		if e.Damage < 0 {
			return nil, fmt.Errorf("catalog entry %q has negative damage", e.Name)
		}
		count := e.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			entries = append(entries, Entry{Name: e.Name, Damage: e.Damage, Count: 1})
		}
	}
	if len(entries) == 0 {
		return nil, errors.New("catalog is empty")
	}

	return &Catalog{entries: entries, pick: rand.IntN}, nil
}

// FromCards costruisce il catalogo dalle carte salvate (tabella random_cards).
func FromCards(cards []*card.Card) (*Catalog, error) {
	entries := make([]Entry, 0, len(cards))
	for _, c := range cards {
		if c.Name == "" {
			return nil, errors.New("catalog entry without name")
		}
		if c.Damage < 0 {
			return nil, fmt.Errorf("catalog entry %q has negative damage", c.Name)
		}
		entries = append(entries, Entry{Name: c.Name, Damage: c.Damage, Count: 1})
	}
	if len(entries) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return &Catalog{entries: entries, pick: rand.IntN}, nil
}

// Len ritorna il numero di carte del catalogo, duplicati inclusi.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries ritorna una copia delle voci espanse.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Sample pesca n carte con ripetizione; ogni carta ha un id nuovo.
func (c *Catalog) Sample(n int) []*card.Card {
	cards := make([]*card.Card, 0, n)
	for i := 0; i < n; i++ {
		e := c.entries[c.pick(len(c.entries))]
		cards = append(cards, card.New(uuid.New(), e.Name, e.Damage))
	}
	return cards
}

// Cards ritorna tutte le carte del catalogo con id nuovi (seed della tabella random_cards).
func (c *Catalog) Cards() []*card.Card {
	cards := make([]*card.Card, 0, len(c.entries))
	for _, e := range c.entries {
		cards = append(cards, card.New(uuid.New(), e.Name, e.Damage))
	}
	return cards
}
