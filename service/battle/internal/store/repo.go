package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/card"
	"github.com/google/uuid"
)

// Politica elo applicata dopo ogni battaglia non pari.
const (
	winElo  = 3
	lossElo = 5
)

// Accesso dati di battle-svc su Postgres (persistence layer).
// Qui restano le query SQL e la traduzione in tipi di dominio.
type Score struct {
	User   string
	Wins   int
	Losses int
	Draws  int
	Elo    int
}

// Repo implementa l'accesso al DB per battaglie, deck e punteggi.
type Repo struct {
	db *sql.DB
}

// NewRepo collega il repository a una connessione SQL.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// UserByToken risolve il token di sessione nel partecipante.
func (r *Repo) UserByToken(ctx context.Context, token string) (battle.Participant, error) {
	const query = `
SELECT name
FROM users
WHERE token = $1`

	var p battle.Participant
	err := r.db.QueryRowContext(ctx, query, token).Scan(&p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return battle.Participant{}, ErrUserNotFound
	}
	if err != nil {
		slog.Error("errore lettura utente da token", "error", err)
		return battle.Participant{}, err
	}
	return p, nil
}

// Deck carica le carte che l'utente ha messo nel deck.
func (r *Repo) Deck(ctx context.Context, user string) ([]*card.Card, error) {
	const query = `
SELECT id, name, damage
FROM cards
WHERE owner = $1 AND in_deck = true
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, user)
	if err != nil {
		slog.Error("errore lettura deck", "error", err, "user", user)
		return nil, err
	}
	return scanCards(rows)
}

// RandomCards legge le carte predefinite della modalita' casuale.
func (r *Repo) RandomCards(ctx context.Context) ([]*card.Card, error) {
	const query = `
SELECT id, name, damage
FROM random_cards
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("errore lettura random_cards", "error", err)
		return nil, err
	}
	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]*card.Card, error) {
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		var (
			id     uuid.UUID
			name   string
			damage float64
		)
		if err := rows.Scan(&id, &name, &damage); err != nil {
			return nil, err
		}
		cards = append(cards, card.New(id, name, damage))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// ApplyLedger sposta le carte vinte e aggiorna i punteggi in una sola transazione.
// Le carte trasferite escono dal deck del nuovo proprietario.
func (r *Repo) ApplyLedger(ctx context.Context, ledger *battle.Ledger) error {
	const moveCard = `
UPDATE cards
SET owner = $1, in_deck = false
WHERE id = $2`

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range ledger.Transfers() {
			if _, err := tx.ExecContext(ctx, moveCard, t.Recipient.Name, t.Card.ID); err != nil {
				slog.Error("errore spostamento carta", "error", err, "card_id", t.Card.ID, "recipient", t.Recipient.Name)
				return fmt.Errorf("move card %s: %w", t.Card.ID, err)
			}
		}
		return updateScore(ctx, tx, ledger)
	})
}

// RecordScore aggiorna solo i punteggi (modalita' casuale, nessuna carta posseduta).
func (r *Repo) RecordScore(ctx context.Context, ledger *battle.Ledger) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return updateScore(ctx, tx, ledger)
	})
}

// updateScore accredita vincitore e sconfitto solo se la battaglia non e' pari.
func updateScore(ctx context.Context, tx *sql.Tx, ledger *battle.Ledger) error {
	if ledger.Draw {
		const draw = `
UPDATE scores
SET draws = draws + 1
WHERE gamer = $1 OR gamer = $2`
		if _, err := tx.ExecContext(ctx, draw, ledger.Winner.Name, ledger.Loser.Name); err != nil {
			return fmt.Errorf("update draws: %w", err)
		}
		return nil
	}

	const win = `
UPDATE scores
SET wins = wins + 1, elo = elo + $2
WHERE gamer = $1`
	const loss = `
UPDATE scores
SET losses = losses + 1, elo = elo - $2
WHERE gamer = $1`

	if _, err := tx.ExecContext(ctx, win, ledger.Winner.Name, winElo); err != nil {
		return fmt.Errorf("update winner: %w", err)
	}
	if _, err := tx.ExecContext(ctx, loss, ledger.Loser.Name, lossElo); err != nil {
		return fmt.Errorf("update loser: %w", err)
	}
	return nil
}

// Score ritorna il punteggio del singolo utente.
func (r *Repo) Score(ctx context.Context, user string) (Score, error) {
	const query = `
SELECT gamer, wins, losses, draws, elo
FROM scores
WHERE gamer = $1`

	var s Score
	err := r.db.QueryRowContext(ctx, query, user).Scan(&s.User, &s.Wins, &s.Losses, &s.Draws, &s.Elo)
	if errors.Is(err, sql.ErrNoRows) {
		return Score{}, ErrScoreNotFound
	}
	if err != nil {
		slog.Error("errore lettura score", "error", err, "user", user)
		return Score{}, err
	}
	return s, nil
}

// Scoreboard ritorna la classifica per elo, esclusi gli utenti senza partite.
func (r *Repo) Scoreboard(ctx context.Context) ([]Score, error) {
	const query = `
SELECT gamer, wins, losses, draws, elo
FROM scores
WHERE wins != 0 OR losses != 0 OR draws != 0
ORDER BY elo DESC, gamer ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Error("errore lettura scoreboard", "error", err)
		return nil, err
	}
	defer rows.Close()

	var board []Score
	for rows.Next() {
		var s Score
		if err := rows.Scan(&s.User, &s.Wins, &s.Losses, &s.Draws, &s.Elo); err != nil {
			return nil, err
		}
		board = append(board, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return board, nil
}

// SeedRandomCards sostituisce le carte predefinite della modalita' casuale.
func (r *Repo) SeedRandomCards(ctx context.Context, cards []*card.Card) error {
	const insert = `
INSERT INTO random_cards (id, name, damage)
VALUES ($1, $2, $3)`

	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE random_cards`); err != nil {
			return fmt.Errorf("truncate random_cards: %w", err)
		}
		for _, c := range cards {
			if _, err := tx.ExecContext(ctx, insert, c.ID, c.Name, c.Damage); err != nil {
				return fmt.Errorf("insert random card %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
