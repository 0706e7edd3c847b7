package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/card"
	"MonsterTCG/service/battle/internal/catalog"
	"MonsterTCG/service/battle/internal/events"
	"MonsterTCG/service/battle/internal/lobby"
	"MonsterTCG/service/battle/internal/lock"
	"MonsterTCG/service/battle/internal/metrics"
	"MonsterTCG/service/battle/internal/store"
)

// Store e' l'interfaccia di persistenza minima usata dall'arena.
type Store interface {
	Deck(ctx context.Context, user string) ([]*card.Card, error)
	ApplyLedger(ctx context.Context, ledger *battle.Ledger) error
	RecordScore(ctx context.Context, ledger *battle.Ledger) error
	Score(ctx context.Context, user string) (store.Score, error)
	Scoreboard(ctx context.Context) ([]store.Score, error)
}

// DeckSource fornisce i mazzi della modalita' casuale.
type DeckSource interface {
	Sample(n int) []*card.Card
}

// Service collega deck, lobby, persistenza, eventi e metriche.
type Service struct {
	logger    *slog.Logger
	store     Store
	decks     DeckSource
	deckSize  int
	locker    lock.Manager
	refresh   time.Duration
	publisher events.Publisher
	metrics   *metrics.Battle
	runner    lobby.Runner

	classic *lobby.Lobby
	random  *lobby.Lobby
}

type Option func(*Service)

// WithLocker attiva il guard distribuito per utente.
func WithLocker(locker lock.Manager) Option {
	return func(s *Service) { s.locker = locker }
}

// WithLockRefresh rinnova il lock a intervalli finche' il giocatore e' in coda.
func WithLockRefresh(every time.Duration) Option {
	return func(s *Service) { s.refresh = every }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Battle) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDeckSize imposta le carte pescate per la modalita' casuale.
func WithDeckSize(n int) Option {
	return func(s *Service) { s.deckSize = n }
}

// WithRunner sostituisce battle.Run (test con battaglie deterministiche).
func WithRunner(run lobby.Runner) Option {
	return func(s *Service) { s.runner = run }
}

// NewService costruisce l'arena con una lobby per modalita'.
func NewService(logger *slog.Logger, st Store, decks DeckSource, opts ...Option) *Service {
	s := &Service{
		logger:    logger,
		store:     st,
		decks:     decks,
		deckSize:  catalog.DefaultDeckSize,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	// Il salvataggio avviene dentro la lobby: entrambi i giocatori riprendono solo a esito scritto.
	s.classic = lobby.New(s.runner,
		lobby.WithQueueObserver(s.metrics.QueueObserver(events.ModeClassic)),
		lobby.WithSettler(st.ApplyLedger),
	)
	s.random = lobby.NewRandomized(s.runner,
		lobby.WithQueueObserver(s.metrics.QueueObserver(events.ModeRandom)),
		lobby.WithSettler(st.RecordScore),
	)
	return s
}

// Battle fa combattere l'utente con il proprio deck.
// Le carte vinte cambiano proprietario; un deck vuoto perde subito.
func (s *Service) Battle(ctx context.Context, p battle.Participant) (*battle.Ledger, error) {
	deck, err := s.store.Deck(ctx, p.Name)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	return s.play(ctx, events.ModeClassic, s.classic, &battle.Player{Participant: p, Deck: deck})
}

// RandomBattle usa un mazzo pescato dal catalogo: aggiorna solo i punteggi.
func (s *Service) RandomBattle(ctx context.Context, p battle.Participant) (*battle.Ledger, error) {
	deck := s.decks.Sample(s.deckSize)
	return s.play(ctx, events.ModeRandom, s.random, &battle.Player{Participant: p, Deck: deck})
}

func (s *Service) Score(ctx context.Context, user string) (store.Score, error) {
	return s.store.Score(ctx, user)
}

func (s *Service) Scoreboard(ctx context.Context) ([]store.Score, error) {
	return s.store.Scoreboard(ctx)
}

// Waiting ritorna i giocatori in coda per modalita'.
func (s *Service) Waiting() map[string]int {
	return map[string]int{
		events.ModeClassic: s.classic.Waiting(),
		events.ModeRandom:  s.random.Waiting(),
	}
}

func (s *Service) play(ctx context.Context, mode string, lb *lobby.Lobby, player *battle.Player) (*battle.Ledger, error) {
	release, err := s.guard(ctx, mode, player.Name)
	if err != nil {
		return nil, err
	}
	defer release()

	match, err := lb.Join(ctx, player)
	if errors.Is(err, lobby.ErrSettleFailed) {
		if match.Driver {
			s.logger.Error("errore salvataggio esito battaglia", "error", err, "mode", mode, "winner", match.Ledger.Winner.Name, "loser", match.Ledger.Loser.Name)
		}
		return nil, fmt.Errorf("persist ledger: %w", err)
	}
	if err != nil {
		s.metrics.Reject(mode, rejectReason(err))
		return nil, err
	}
	if !match.Driver {
		return match.Ledger, nil
	}

	ledger := match.Ledger
	s.metrics.ObserveLedger(mode, ledger)
	if err := s.publisher.BattleFinished(ctx, mode, ledger); err != nil {
		s.logger.Warn("errore pubblicazione evento battaglia", "error", err, "mode", mode)
	}
	s.logger.Info("battaglia conclusa",
		"mode", mode,
		"winner", ledger.Winner.Name,
		"loser", ledger.Loser.Name,
		"draw", ledger.Draw,
		"rounds", ledger.Rounds,
		"transfers", len(ledger.Transfers()),
	)
	return ledger, nil
}

// guard acquisisce il lock per utente; senza locker non fa nulla.
func (s *Service) guard(ctx context.Context, mode, user string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := lock.BattleKey(user)
	token, ok, err := s.locker.Acquire(ctx, key)
	if err != nil {
		s.logger.Error("errore acquisizione lock redis", "error", err, "user", user)
		return nil, fmt.Errorf("acquire battle lock: %w", err)
	}
	if !ok {
		s.metrics.Reject(mode, metrics.ReasonInProgress)
		return nil, ErrBattleInProgress
	}
	stop := s.keepAlive(key, token, user)
	return func() {
		stop()
		if err := s.locker.Release(context.Background(), key, token); err != nil {
			s.logger.Warn("errore rilascio lock redis", "error", err, "user", user)
		}
	}, nil
}

// keepAlive rinnova il TTL del lock finche' non viene chiamato stop.
func (s *Service) keepAlive(key, token, user string) (stop func()) {
	if s.refresh <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(s.refresh)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.locker.Refresh(context.Background(), key, token); err != nil {
					s.logger.Warn("errore rinnovo lock redis", "error", err, "user", user)
					if errors.Is(err, lock.ErrLockLost) {
						return
					}
				}
			}
		}
	}()
	return func() {
		close(done)
		<-exited
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, lobby.ErrAlreadyQueued):
		return metrics.ReasonQueued
	case errors.Is(err, lobby.ErrMalformedEntry):
		return metrics.ReasonMalformed
	default:
		return metrics.ReasonCancelled
	}
}
