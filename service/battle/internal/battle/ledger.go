package battle

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"MonsterTCG/service/battle/internal/card"
	"github.com/google/uuid"
)

// Participant identifica un giocatore in battaglia.
type Participant struct {
	Name string
}

// Player unisce il partecipante al deck caricato dall'esterno.
// Il deck viene modificato durante la battaglia ma non salvato.
type Player struct {
	Participant
	Deck []*card.Card
}

// Transfer e' una carta passata definitivamente a Recipient.
type Transfer struct {
	Card      *card.Card
	Recipient Participant
}

// Ledger raccoglie il log testuale e l'esito di una battaglia.
// Con Draw true, Winner e Loser sono solo segnaposto: chi legge deve controllare Draw.
type Ledger struct {
	Winner Participant
	Loser  Participant
	Draw   bool
	Rounds int

	mu        sync.Mutex
	log       strings.Builder
	transfers map[uuid.UUID]Transfer
}

// NewLedger crea un ledger vuoto per una nuova battaglia.
func NewLedger() *Ledger {
	return &Ledger{transfers: make(map[uuid.UUID]Transfer)}
}

// Append aggiunge una riga al log.
func (l *Ledger) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.WriteString(line)
	l.log.WriteByte('\n')
}

// Log ritorna il log completo.
func (l *Ledger) Log() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.log.String()
}

// ReplaceLastLine sostituisce l'ultima riga del log.
func (l *Ledger) ReplaceLastLine(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	current := strings.TrimSuffix(l.log.String(), "\n")
	if idx := strings.LastIndexByte(current, '\n'); idx >= 0 {
		current = current[:idx+1]
	} else {
		current = ""
	}
	l.log.Reset()
	l.log.WriteString(current)
	l.log.WriteString(line)
	l.log.WriteByte('\n')
}

// RecordTransfer registra la carta vinta da recipient.
// Se la carta e' gia' presente la voce viene rimossa: la carta e' tornata al proprietario.
func (l *Ledger) RecordTransfer(c *card.Card, recipient Participant) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.transfers[c.ID]; ok {
		delete(l.transfers, c.ID)
		return
	}
	l.transfers[c.ID] = Transfer{Card: c, Recipient: recipient}
}

// Transfers ritorna i trasferimenti netti ordinati per id carta.
func (l *Ledger) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transfer, 0, len(l.transfers))
	for _, t := range l.transfers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Card.ID[:], out[j].Card.ID[:]) < 0
	})
	return out
}

// HasTransfer indica se la carta risulta trasferita.
func (l *Ledger) HasTransfer(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.transfers[id]
	return ok
}

// CaptureCounts conta le carte vinte da ciascun lato confrontando i nomi.
func (l *Ledger) CaptureCounts(a, b Participant) (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var countA, countB int
	for _, t := range l.transfers {
		switch t.Recipient.Name {
		case a.Name:
			countA++
		case b.Name:
			countB++
		}
	}
	return countA, countB
}
