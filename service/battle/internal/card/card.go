package card

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Type e' la classificazione di una carta ricavata dal nome.
type Type int

const (
	TypeUninitialized Type = iota
	TypeSpell
	TypeGoblin
	TypeWizard
	TypeOrk
	TypeKnight
	TypeKraken
	TypeElf
	TypeDragon
	TypeOther
)

var typeNames = [...]string{
	TypeUninitialized: "uninitialized",
	TypeSpell:         "spell",
	TypeGoblin:        "goblin",
	TypeWizard:        "wizard",
	TypeOrk:           "ork",
	TypeKnight:        "knight",
	TypeKraken:        "kraken",
	TypeElf:           "elf",
	TypeDragon:        "dragon",
	TypeOther:         "other",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// Element determina l'efficacia negli scontri con almeno uno spell.
type Element int

const (
	ElementFire Element = iota
	ElementWater
	ElementNormal
)

var elementNames = [...]string{
	ElementFire:   "fire",
	ElementWater:  "water",
	ElementNormal: "normal",
}

func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return fmt.Sprintf("element(%d)", int(e))
	}
	return elementNames[e]
}

// Beats ritorna true se e e' efficace contro other.
// Il ciclo e' water -> fire -> normal -> water.
func (e Element) Beats(other Element) bool {
	return e == (other+1)%Element(len(elementNames))
}

// Card e' una carta in battaglia.
// Type ed Element vengono calcolati una sola volta in New e non cambiano piu'.
type Card struct {
	ID     uuid.UUID
	Name   string
	Damage float64

	typ     Type
	element Element
}

// New crea la carta e la classifica dal nome.
func New(id uuid.UUID, name string, damage float64) *Card {
	return &Card{
		ID:      id,
		Name:    name,
		Damage:  damage,
		typ:     classifyType(name),
		element: classifyElement(name),
	}
}

func (c *Card) Type() Type {
	return c.typ
}

func (c *Card) Element() Element {
	return c.element
}

// IsMonster e' false solo per spell e carte non inizializzate.
func (c *Card) IsMonster() bool {
	return c.typ != TypeSpell && c.typ != TypeUninitialized
}

// NameContains confronta case-insensitive.
func (c *Card) NameContains(keyword string) bool {
	return containsFold(c.Name, keyword)
}

func (c *Card) String() string {
	return fmt.Sprintf("%s (%s, %s, %g)", c.Name, c.typ, c.element, c.Damage)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
