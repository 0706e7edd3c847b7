package lobby

import (
	"fmt"

	"MonsterTCG/service/battle/internal/battle"
)

// NewRandomized crea la lobby della modalita' casuale.
// Stesso accoppiamento della lobby classica, ma un pareggio viene deciso dalle carte catturate.
func NewRandomized(run Runner, opts ...Option) *Lobby {
	if run == nil {
		run = func(p1, p2 *battle.Player) *battle.Ledger { return battle.Run(p1, p2) }
	}
	return New(CaptureTiebreak(run), opts...)
}

// CaptureTiebreak avvolge run e ricalcola il vincitore quando la battaglia finisce pari.
// Il ledger viene modificato prima di essere consegnato all'altro giocatore.
func CaptureTiebreak(run Runner) Runner {
	return func(p1, p2 *battle.Player) *battle.Ledger {
		ledger := run(p1, p2)
		if !ledger.Draw {
			return ledger
		}

		captured1, captured2 := ledger.CaptureCounts(p1.Participant, p2.Participant)
		switch {
		case captured1 > captured2:
			ledger.Winner, ledger.Loser, ledger.Draw = p1.Participant, p2.Participant, false
		case captured2 > captured1:
			ledger.Winner, ledger.Loser, ledger.Draw = p2.Participant, p1.Participant, false
		default:
			return ledger
		}

		ledger.ReplaceLastLine(fmt.Sprintf(
			"Player %s won due to winning %d cards from player %s, whereas %s only won %d.",
			ledger.Winner.Name, max(captured1, captured2), ledger.Loser.Name, ledger.Loser.Name, min(captured1, captured2),
		))
		return ledger
	}
}
