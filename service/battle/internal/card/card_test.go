package card

import (
	"testing"

	"github.com/google/uuid"
)

// Verifica tipo ed elemento ricavati dal nome.
func TestNewClassifies(t *testing.T) {
	cases := []struct {
		name    string
		typ     Type
		element Element
	}{
		{"FireGoblin", TypeGoblin, ElementFire},
		{"WaterDragon", TypeDragon, ElementWater},
		{"Knight", TypeKnight, ElementNormal},
		{"RegularSpell", TypeSpell, ElementNormal},
		{"Summon Tsunami (WaterSpell)", TypeSpell, ElementWater},
		{"FireElves", TypeElf, ElementFire},
		{"WaterWizzard", TypeWizard, ElementWater},
		{"Alatreon", TypeOther, ElementNormal},
		{"Fatalis (Fire)", TypeOther, ElementFire},
		{"FIREORK", TypeOrk, ElementFire},
	}

	for _, tc := range cases {
		c := New(uuid.New(), tc.name, 10)
		if c.Type() != tc.typ {
			t.Fatalf("%s: expected type %s, got %s", tc.name, tc.typ, c.Type())
		}
		if c.Element() != tc.element {
			t.Fatalf("%s: expected element %s, got %s", tc.name, tc.element, c.Element())
		}
	}
}

// Con piu' keyword vince l'ultima nell'ordine della scansione.
func TestClassifyLastMatchWins(t *testing.T) {
	c := New(uuid.New(), "Dragon Goblin", 10)
	if c.Type() != TypeDragon {
		t.Fatalf("expected dragon, got %s", c.Type())
	}

	c = New(uuid.New(), "Goblin Spell", 10)
	if c.Type() != TypeGoblin {
		t.Fatalf("expected goblin, got %s", c.Type())
	}
}

// I fallback non toccano nomi gia' classificati.
func TestFallbackOnlyWhenOther(t *testing.T) {
	c := New(uuid.New(), "Wizzard Knight", 10)
	if c.Type() != TypeKnight {
		t.Fatalf("expected knight, got %s", c.Type())
	}

	c = New(uuid.New(), "Elves and Wizzards", 10)
	if c.Type() != TypeElf {
		t.Fatalf("expected elf, got %s", c.Type())
	}
}

func TestFireWinsOverWater(t *testing.T) {
	c := New(uuid.New(), "FireWater", 1)
	if c.Element() != ElementFire {
		t.Fatalf("expected fire, got %s", c.Element())
	}
}

func TestIsMonster(t *testing.T) {
	if New(uuid.New(), "WaterSpell", 1).IsMonster() {
		t.Fatalf("spell must not be a monster")
	}
	if !New(uuid.New(), "Alatreon", 1).IsMonster() {
		t.Fatalf("other must be a monster")
	}
	if (&Card{}).IsMonster() {
		t.Fatalf("uninitialized card must not be a monster")
	}
}

func TestElementCycle(t *testing.T) {
	if !ElementWater.Beats(ElementFire) {
		t.Fatalf("water must beat fire")
	}
	if !ElementFire.Beats(ElementNormal) {
		t.Fatalf("fire must beat normal")
	}
	if !ElementNormal.Beats(ElementWater) {
		t.Fatalf("normal must beat water")
	}
	if ElementFire.Beats(ElementWater) || ElementFire.Beats(ElementFire) {
		t.Fatalf("fire must not beat water or itself")
	}
}
