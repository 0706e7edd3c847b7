package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"MonsterTCG/service/battle/internal/battle"
)

// SubjectBattleFinished e' il subject su cui viene annunciato ogni esito.
const SubjectBattleFinished = "mtcg.battle.finished"

// Modalita' di battaglia riportate negli eventi e nelle metriche.
const (
	ModeClassic = "classic"
	ModeRandom  = "random"
)

// Publisher annuncia l'esito di una battaglia conclusa.
type Publisher interface {
	BattleFinished(ctx context.Context, mode string, ledger *battle.Ledger) error
}

// Finished e' il payload JSON pubblicato.
type Finished struct {
	Mode      string     `json:"mode"`
	Winner    string     `json:"winner"`
	Loser     string     `json:"loser"`
	Draw      bool       `json:"draw"`
	Rounds    int        `json:"rounds"`
	Transfers []Transfer `json:"transfers,omitempty"`
}

type Transfer struct {
	CardID    uuid.UUID `json:"card_id"`
	Card      string    `json:"card"`
	Recipient string    `json:"recipient"`
}

// NewFinished traduce il ledger nel payload.
func NewFinished(mode string, ledger *battle.Ledger) Finished {
	ev := Finished{
		Mode:   mode,
		Winner: ledger.Winner.Name,
		Loser:  ledger.Loser.Name,
		Draw:   ledger.Draw,
		Rounds: ledger.Rounds,
	}
	for _, t := range ledger.Transfers() {
		ev.Transfers = append(ev.Transfers, Transfer{
			CardID:    t.Card.ID,
			Card:      t.Card.Name,
			Recipient: t.Recipient.Name,
		})
	}
	return ev
}

// NATSPublisher pubblica gli eventi su NATS core.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) BattleFinished(_ context.Context, mode string, ledger *battle.Ledger) error {
	if p.conn == nil {
		return nil
	}
	data, err := json.Marshal(NewFinished(mode, ledger))
	if err != nil {
		return fmt.Errorf("marshal battle event: %w", err)
	}
	return p.conn.Publish(SubjectBattleFinished, data)
}

// Nop scarta gli eventi (NATS non configurato).
type Nop struct{}

func (Nop) BattleFinished(context.Context, string, *battle.Ledger) error { return nil }
