package battle

import (
	"fmt"

	"MonsterTCG/service/battle/internal/card"
)

// Outcome e' il risultato di un singolo scontro carta contro carta.
// Loser nil significa pareggio.
type Outcome struct {
	Loser *card.Card
	Text  string
}

// Resolve decide quale delle due carte perde lo scontro.
// Non ha effetti collaterali: le carte non vengono modificate.
func Resolve(c1, c2 *card.Card) Outcome {
	if c1.IsMonster() && c2.IsMonster() {
		return resolveMonsters(c1, c2)
	}
	return resolveMixed(c1, c2)
}

func resolveMonsters(c1, c2 *card.Card) Outcome {
	if goblin, dragon, ok := match(c1, c2, isType(card.TypeGoblin), isType(card.TypeDragon)); ok {
		return Outcome{Loser: goblin, Text: fmt.Sprintf("%s (goblin) is too afraid to attack %s (dragon).", goblin.Name, dragon.Name)}
	}
	if ork, wizard, ok := match(c1, c2, isType(card.TypeOrk), isType(card.TypeWizard)); ok {
		return Outcome{Loser: ork, Text: fmt.Sprintf("%s (ork) is not able to attack %s (wizard).", ork.Name, wizard.Name)}
	}
	if dragon, elf, ok := match(c1, c2, isType(card.TypeDragon), isFireElf); ok {
		return Outcome{Loser: dragon, Text: fmt.Sprintf("%s (fire elf) can evade the attacks of %s (dragon).", elf.Name, dragon.Name)}
	}

	switch {
	case c1.Damage > c2.Damage:
		return Outcome{Loser: c2, Text: fmt.Sprintf("Monster %s (%g) has slain %s (%g).", c1.Name, c1.Damage, c2.Name, c2.Damage)}
	case c1.Damage < c2.Damage:
		return Outcome{Loser: c1, Text: fmt.Sprintf("Monster %s (%g) has slain %s (%g).", c2.Name, c2.Damage, c1.Name, c1.Damage)}
	default:
		return drawOutcome(c1, c2)
	}
}

func resolveMixed(c1, c2 *card.Card) Outcome {
	if knight, _, ok := match(c1, c2, isType(card.TypeKnight), isWaterSpell); ok {
		return Outcome{Loser: knight, Text: fmt.Sprintf("%s has drowned in a water spell.", knight.Name)}
	}
	if spell, kraken, ok := match(c1, c2, isType(card.TypeSpell), isType(card.TypeKraken)); ok {
		return Outcome{Loser: spell, Text: fmt.Sprintf("%s is immune to spells.", kraken.Name)}
	}

	eff1, eff2 := EffectiveDamage(c1, c2)
	switch {
	case eff1 < eff2:
		return Outcome{Loser: c1, Text: fmt.Sprintf("%s (%g) has slain %s (%g).", c2.Name, c2.Damage, c1.Name, c1.Damage)}
	case eff1 > eff2:
		return Outcome{Loser: c2, Text: fmt.Sprintf("%s (%g) has slain %s (%g).", c1.Name, c1.Damage, c2.Name, c2.Damage)}
	default:
		return drawOutcome(c1, c2)
	}
}

// EffectiveDamage applica l'efficacia degli elementi.
// Con elementi uguali il danno resta invariato.
func EffectiveDamage(c1, c2 *card.Card) (float64, float64) {
	eff1, eff2 := c1.Damage, c2.Damage
	switch {
	case c1.Element() == c2.Element():
	case c2.Element().Beats(c1.Element()):
		eff1 /= 2
		eff2 *= 2
	default:
		eff1 *= 2
		eff2 /= 2
	}
	return eff1, eff2
}

func drawOutcome(c1, c2 *card.Card) Outcome {
	return Outcome{Text: fmt.Sprintf("%s (%g) drew with %s (%g).", c1.Name, c1.Damage, c2.Name, c2.Damage)}
}

type predicate func(*card.Card) bool

func isType(t card.Type) predicate {
	return func(c *card.Card) bool { return c.Type() == t }
}

func isFireElf(c *card.Card) bool {
	return c.Type() == card.TypeElf && c.NameContains("fire")
}

func isWaterSpell(c *card.Card) bool {
	return c.Type() == card.TypeSpell && c.NameContains("water")
}

// match prova entrambe le assegnazioni e ritorna le carte nell'ordine dei predicati.
func match(c1, c2 *card.Card, first, second predicate) (*card.Card, *card.Card, bool) {
	if first(c1) && second(c2) {
		return c1, c2, true
	}
	if first(c2) && second(c1) {
		return c2, c1, true
	}
	return nil, nil, false
}
