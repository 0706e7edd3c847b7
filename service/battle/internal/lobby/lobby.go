package lobby

import (
	"context"
	"fmt"
	"sync"

	"MonsterTCG/service/battle/internal/battle"
)

// Runner esegue la battaglia tra i due giocatori accoppiati.
type Runner func(p1, p2 *battle.Player) *battle.Ledger

// Settler salva l'esito della battaglia prima che venga consegnato ai giocatori.
type Settler func(ctx context.Context, ledger *battle.Ledger) error

// Match e' quello che riceve ciascuno dei due giocatori accoppiati.
// Driver e' true solo per chi ha eseguito la battaglia; Players e' valorizzato solo per lui.
type Match struct {
	Ledger  *battle.Ledger
	Players []*battle.Player
	Driver  bool
}

// Lobby accoppia esattamente due giocatori in attesa per battaglia.
// Chi toglie i due giocatori dalla coda esegue la battaglia; l'altro riceve lo stesso ledger.
type Lobby struct {
	mu       sync.Mutex
	queue    []*waiter
	run      Runner
	settle   Settler
	observer func(waiting int)
}

type waiter struct {
	player *battle.Player
	result chan outcome
}

type outcome struct {
	match Match
	err   error
}

// Option configura la lobby.
type Option func(*Lobby)

// WithQueueObserver riceve la lunghezza della coda a ogni modifica.
func WithQueueObserver(observer func(waiting int)) Option {
	return func(l *Lobby) {
		l.observer = observer
	}
}

// WithSettler esegue settle dopo ogni battaglia, prima della consegna ai due giocatori.
// Se fallisce, entrambi ricevono l'errore (avvolto in ErrSettleFailed) insieme al ledger.
func WithSettler(settle Settler) Option {
	return func(l *Lobby) {
		l.settle = settle
	}
}

// New crea una lobby; run nil usa battle.Run.
func New(run Runner, opts ...Option) *Lobby {
	if run == nil {
		run = func(p1, p2 *battle.Player) *battle.Ledger { return battle.Run(p1, p2) }
	}
	l := &Lobby{run: run}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Join mette il giocatore in coda e attende un avversario.
// Senza avversario blocca finche' ctx non viene cancellato.
// Un errore di salvataggio arriva a entrambi i giocatori insieme al ledger.
func (l *Lobby) Join(ctx context.Context, player *battle.Player) (Match, error) {
	if player == nil || player.Name == "" {
		return Match{}, ErrMalformedEntry
	}

	l.mu.Lock()
	for _, w := range l.queue {
		if w == nil || w.player == nil || w.player.Name == "" {
			l.mu.Unlock()
			return Match{}, ErrMalformedEntry
		}
		if w.player.Name == player.Name {
			l.mu.Unlock()
			return Match{}, ErrAlreadyQueued
		}
	}

	self := &waiter{player: player, result: make(chan outcome, 1)}
	l.queue = append(l.queue, self)

	if len(l.queue) < 2 {
		l.notify()
		l.mu.Unlock()
		return l.wait(ctx, self)
	}

	first, second := l.queue[0], l.queue[1]
	l.queue = l.queue[2:]
	l.notify()
	l.mu.Unlock()

	res := l.drive(ctx, self, first, second)
	return res.match, res.err
}

// Waiting ritorna il numero di giocatori in attesa.
func (l *Lobby) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// drive esegue battaglia e salvataggio fuori dal lock, poi consegna l'esito all'altro waiter.
// L'avversario riprende solo dopo il salvataggio.
func (l *Lobby) drive(ctx context.Context, self, first, second *waiter) outcome {
	ledger := l.run(first.player, second.player)

	var err error
	if l.settle != nil {
		// La battaglia e' gia' avvenuta: il salvataggio non segue la cancellazione del driver.
		if settleErr := l.settle(context.WithoutCancel(ctx), ledger); settleErr != nil {
			err = fmt.Errorf("%w: %w", ErrSettleFailed, settleErr)
		}
	}

	for _, w := range []*waiter{first, second} {
		if w != self {
			w.result <- outcome{match: Match{Ledger: ledger}, err: err}
		}
	}
	return outcome{
		match: Match{
			Ledger:  ledger,
			Players: []*battle.Player{first.player, second.player},
			Driver:  true,
		},
		err: err,
	}
}

func (l *Lobby) wait(ctx context.Context, self *waiter) (Match, error) {
	select {
	case res := <-self.result:
		return res.match, res.err
	case <-ctx.Done():
	}

	l.mu.Lock()
	for i, w := range l.queue {
		if w == self {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			l.notify()
			l.mu.Unlock()
			return Match{}, ctx.Err()
		}
	}
	l.mu.Unlock()

	// Gia' accoppiato: la battaglia e' in corso, il risultato arriva comunque.
	res := <-self.result
	return res.match, res.err
}

// notify va chiamato con il lock preso.
func (l *Lobby) notify() {
	if l.observer != nil {
		l.observer(len(l.queue))
	}
}
