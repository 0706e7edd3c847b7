package card

// Regole di classificazione in ordine di scansione.
// Ogni keyword trovata sovrascrive la precedente: vince l'ultima.
type rule struct {
	keyword string
	typ     Type
}

var typeRules = []rule{
	{"spell", TypeSpell},
	{"goblin", TypeGoblin},
	{"wizard", TypeWizard},
	{"ork", TypeOrk},
	{"knight", TypeKnight},
	{"kraken", TypeKraken},
	{"elf", TypeElf},
	{"dragon", TypeDragon},
	{"other", TypeOther},
}

// Fallback applicati solo se il tipo e' ancora "other".
// "wizzard" e' scritto cosi' nei nomi delle carte esistenti: non correggere.
var fallbackRules = []rule{
	{"elves", TypeElf},
	{"wizzard", TypeWizard},
}

func classifyType(name string) Type {
	typ := TypeOther
	for _, r := range typeRules {
		if containsFold(name, r.keyword) {
			typ = r.typ
		}
	}
	if typ != TypeOther {
		return typ
	}
	for _, r := range fallbackRules {
		if containsFold(name, r.keyword) {
			return r.typ
		}
	}
	return typ
}

func classifyElement(name string) Element {
	switch {
	case containsFold(name, "fire"):
		return ElementFire
	case containsFold(name, "water"):
		return ElementWater
	default:
		return ElementNormal
	}
}
