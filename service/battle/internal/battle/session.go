package battle

import (
	"fmt"
	"math/rand/v2"

	"MonsterTCG/service/battle/internal/card"
)

// MaxRounds e' il numero massimo di scontri per battaglia.
const MaxRounds = 99

// DrawLine chiude il log quando nessuno vince entro MaxRounds.
var DrawLine = fmt.Sprintf("There was no clear winner after %d rounds, the result is therefore a draw!", MaxRounds)

// Picker sceglie un indice in [0, n).
type Picker func(n int) int

type config struct {
	pick Picker
}

// Option configura una battaglia.
type Option func(*config)

// WithPicker sostituisce la scelta casuale delle carte (usato nei test).
func WithPicker(pick Picker) Option {
	return func(c *config) {
		c.pick = pick
	}
}

// Run esegue una battaglia completa tra p1 e p2.
// I deck vengono modificati spostando le carte perse; non fa I/O.
func Run(p1, p2 *Player, opts ...Option) *Ledger {
	cfg := config{pick: rand.IntN}
	for _, opt := range opts {
		opt(&cfg)
	}

	ledger := NewLedger()
	ledger.Append(fmt.Sprintf("Battle between %s and %s starting shortly.", p1.Name, p2.Name))

	for round := 0; round < MaxRounds; round++ {
		if len(p1.Deck) == 0 || len(p2.Deck) == 0 {
			break
		}

		c1 := p1.Deck[cfg.pick(len(p1.Deck))]
		c2 := p2.Deck[cfg.pick(len(p2.Deck))]
		ledger.Append(fmt.Sprintf("Player1 %s drew %s (%g)", p1.Name, c1.Name, c1.Damage))
		ledger.Append(fmt.Sprintf("Player2 %s drew %s (%g)", p2.Name, c2.Name, c2.Damage))

		outcome := Resolve(c1, c2)
		ledger.Rounds++
		switch outcome.Loser {
		case nil:
		case c1:
			ledger.RecordTransfer(c1, p2.Participant)
			moveCard(p1, p2, c1)
		case c2:
			ledger.RecordTransfer(c2, p1.Participant)
			moveCard(p2, p1, c2)
		}
		ledger.Append(outcome.Text)
	}

	switch {
	case len(p1.Deck) == 0:
		ledger.Winner, ledger.Loser = p2.Participant, p1.Participant
		ledger.Append(fmt.Sprintf("Player %s has won, because they won all cards from player %s.", p2.Name, p1.Name))
	case len(p2.Deck) == 0:
		ledger.Winner, ledger.Loser = p1.Participant, p2.Participant
		ledger.Append(fmt.Sprintf("Player %s has won, because they won all cards from player %s.", p1.Name, p2.Name))
	default:
		ledger.Draw = true
		ledger.Winner, ledger.Loser = p1.Participant, p2.Participant
		ledger.Append(DrawLine)
	}
	return ledger
}

// moveCard sposta c dal deck di from in coda al deck di to.
func moveCard(from, to *Player, c *card.Card) {
	for i, candidate := range from.Deck {
		if candidate == c {
			from.Deck = append(from.Deck[:i], from.Deck[i+1:]...)
			break
		}
	}
	to.Deck = append(to.Deck, c)
}
