package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"sort"
	"strings"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"MonsterTCG/service/battle/internal/arena"
	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/battlegrpc"
	"MonsterTCG/service/battle/internal/card"
	"MonsterTCG/service/battle/internal/catalog"
	"MonsterTCG/service/battle/internal/store"
)

const tokenSuffix = "-mtcgToken"

// memStore e' un mock in memoria di Postgres per provare il BattleService in locale.
// Ogni utente riceve un deck casuale alla prima battaglia; il token e' "<nome>-mtcgToken".
type memStore struct {
	logger *slog.Logger
	cards  *catalog.Catalog

	mu     sync.Mutex
	decks  map[string][]*card.Card
	scores map[string]*store.Score
}

func (m *memStore) UserByToken(_ context.Context, token string) (battle.Participant, error) {
	name, ok := strings.CutSuffix(token, tokenSuffix)
	if !ok || name == "" {
		return battle.Participant{}, store.ErrUserNotFound
	}
	return battle.Participant{Name: name}, nil
}

func (m *memStore) Deck(_ context.Context, user string) ([]*card.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deck, ok := m.decks[user]
	if !ok {
		deck = m.cards.Sample(4)
		m.decks[user] = deck
	}
	out := make([]*card.Card, len(deck))
	copy(out, deck)
	return out, nil
}

// ApplyLedger sposta le carte vinte: escono dal deck di chi le ha perse.
func (m *memStore) ApplyLedger(ctx context.Context, ledger *battle.Ledger) error {
	m.mu.Lock()
	for _, t := range ledger.Transfers() {
		for user, deck := range m.decks {
			m.decks[user] = removeCard(deck, t.Card)
		}
	}
	m.mu.Unlock()
	m.logger.Info("mock apply ledger", "transfers", len(ledger.Transfers()))
	return m.RecordScore(ctx, ledger)
}

func (m *memStore) RecordScore(_ context.Context, ledger *battle.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	winner, loser := m.score(ledger.Winner.Name), m.score(ledger.Loser.Name)
	if ledger.Draw {
		winner.Draws++
		loser.Draws++
		return nil
	}
	winner.Wins++
	winner.Elo += 3
	loser.Losses++
	loser.Elo -= 5
	return nil
}

func (m *memStore) Score(_ context.Context, user string) (store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scores[user]
	if !ok {
		return store.Score{}, store.ErrScoreNotFound
	}
	return *s, nil
}

func (m *memStore) Scoreboard(context.Context) ([]store.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	board := make([]store.Score, 0, len(m.scores))
	for _, s := range m.scores {
		board = append(board, *s)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Elo != board[j].Elo {
			return board[i].Elo > board[j].Elo
		}
		return board[i].User < board[j].User
	})
	return board, nil
}

// score va chiamato con il lock preso.
func (m *memStore) score(user string) *store.Score {
	s, ok := m.scores[user]
	if !ok {
		s = &store.Score{User: user, Elo: 100}
		m.scores[user] = s
	}
	return s
}

func removeCard(deck []*card.Card, c *card.Card) []*card.Card {
	out := deck[:0]
	for _, d := range deck {
		if d.ID != c.ID {
			out = append(out, d)
		}
	}
	return out
}

func main() {
	// Avvio server gRPC mock su GRPC_ADDR (default :50062).
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	addr := os.Getenv("GRPC_ADDR")
	if addr == "" {
		addr = ":50062"
	}

	cards, err := catalog.Load()
	if err != nil {
		logger.Error("catalogo non valido", "error", err)
		os.Exit(1)
	}
	mock := &memStore{
		logger: logger,
		cards:  cards,
		decks:  make(map[string][]*card.Card),
		scores: make(map[string]*store.Score),
	}
	service := arena.NewService(logger, mock, cards)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("listen failed", "error", err, "addr", addr)
		os.Exit(1)
	}

	server := grpc.NewServer()
	battlegrpc.RegisterBattleServiceServer(server, battlegrpc.NewServer(logger, service, mock))
	reflection.Register(server)

	logger.Info("mock battle-svc listening", "addr", addr)
	if err := server.Serve(lis); err != nil {
		logger.Error("serve failed", "error", err)
		os.Exit(1)
	}
}
