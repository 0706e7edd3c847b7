package lobby

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/card"
	"github.com/google/uuid"
)

type joinResult struct {
	match Match
	err   error
}

func player(name string) *battle.Player {
	return &battle.Player{
		Participant: battle.Participant{Name: name},
		Deck:        []*card.Card{card.New(uuid.New(), "FireOrk", 10)},
	}
}

// countingRunner conta le battaglie eseguite.
func countingRunner(calls *int32) Runner {
	return func(p1, p2 *battle.Player) *battle.Ledger {
		atomic.AddInt32(calls, 1)
		ledger := battle.NewLedger()
		ledger.Winner, ledger.Loser = p1.Participant, p2.Participant
		return ledger
	}
}

func waitForQueue(t *testing.T, l *Lobby, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for l.Waiting() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d waiting, got %d", n, l.Waiting())
		}
		time.Sleep(time.Millisecond)
	}
}

// Il primo giocatore si blocca, il secondo esegue la battaglia: un solo driver, stesso ledger.
func TestJoinPairsTwoPlayers(t *testing.T) {
	var calls int32
	l := New(countingRunner(&calls))

	firstCh := make(chan joinResult, 1)
	go func() {
		m, err := l.Join(context.Background(), player("alice"))
		firstCh <- joinResult{m, err}
	}()
	waitForQueue(t, l, 1)

	second, err := l.Join(context.Background(), player("bob"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := <-firstCh
	if first.err != nil {
		t.Fatalf("unexpected error for first: %v", first.err)
	}

	if !second.Driver || first.match.Driver {
		t.Fatalf("expected second caller to drive, got first=%v second=%v", first.match.Driver, second.Driver)
	}
	if len(second.Players) != 2 || len(first.match.Players) != 0 {
		t.Fatalf("only the driver receives the pair")
	}
	if second.Players[0].Name != "alice" || second.Players[1].Name != "bob" {
		t.Fatalf("expected FIFO order, got %s/%s", second.Players[0].Name, second.Players[1].Name)
	}
	if first.match.Ledger != second.Ledger {
		t.Fatalf("expected both callers to share the same ledger")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected runner called once, got %d", calls)
	}
	if l.Waiting() != 0 {
		t.Fatalf("expected empty queue")
	}
}

func TestJoinRejectsDuplicateName(t *testing.T) {
	var calls int32
	l := New(countingRunner(&calls))

	ctx, cancel := context.WithCancel(context.Background())
	firstCh := make(chan joinResult, 1)
	go func() {
		m, err := l.Join(ctx, player("alice"))
		firstCh <- joinResult{m, err}
	}()
	waitForQueue(t, l, 1)

	_, err := l.Join(context.Background(), player("alice"))
	if !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}
	if l.Waiting() != 1 {
		t.Fatalf("rejected caller must not be queued")
	}

	cancel()
	first := <-firstCh
	if !errors.Is(first.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", first.err)
	}
	if l.Waiting() != 0 {
		t.Fatalf("cancelled caller must leave the queue")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("no battle expected")
	}
}

func TestJoinRejectsMalformedEntries(t *testing.T) {
	l := New(nil)

	if _, err := l.Join(context.Background(), nil); !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("expected ErrMalformedEntry for nil, got %v", err)
	}
	if _, err := l.Join(context.Background(), player("")); !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("expected ErrMalformedEntry for empty name, got %v", err)
	}

	// Una voce corrotta in coda blocca ogni nuovo ingresso.
	l.queue = append(l.queue, nil)
	if _, err := l.Join(context.Background(), player("bob")); !errors.Is(err, ErrMalformedEntry) {
		t.Fatalf("expected ErrMalformedEntry for corrupted queue, got %v", err)
	}
}

// Con molti giocatori concorrenti ogni coppia esegue una sola battaglia.
func TestJoinConcurrentPairs(t *testing.T) {
	var calls int32
	l := New(countingRunner(&calls))

	const players = 20
	results := make(chan joinResult, players)
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := l.Join(context.Background(), player(fmt.Sprintf("p%d", i)))
			results <- joinResult{m, err}
		}(i)
	}
	wg.Wait()
	close(results)

	drivers := 0
	ledgers := map[*battle.Ledger]int{}
	for r := range results {
		if r.err != nil {
			t.Fatalf("unexpected error: %v", r.err)
		}
		if r.match.Driver {
			drivers++
		}
		ledgers[r.match.Ledger]++
	}

	if drivers != players/2 {
		t.Fatalf("expected %d drivers, got %d", players/2, drivers)
	}
	if int(atomic.LoadInt32(&calls)) != players/2 {
		t.Fatalf("expected %d battles, got %d", players/2, calls)
	}
	for _, n := range ledgers {
		if n != 2 {
			t.Fatalf("each ledger must be shared by exactly two callers, got %d", n)
		}
	}
}

func TestQueueObserver(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	l := New(nil, WithQueueObserver(func(waiting int) {
		mu.Lock()
		seen = append(seen, waiting)
		mu.Unlock()
	}))

	done := make(chan struct{})
	go func() {
		_, _ = l.Join(context.Background(), player("alice"))
		close(done)
	}()
	waitForQueue(t, l, 1)
	if _, err := l.Join(context.Background(), player("bob")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 0 {
		t.Fatalf("unexpected observed lengths %v", seen)
	}
}

// L'avversario riprende solo dopo il salvataggio e riceve lo stesso errore del driver.
func TestJoinWaitsForSettleAndSharesError(t *testing.T) {
	var settled atomic.Bool
	l := New(nil, WithSettler(func(ctx context.Context, _ *battle.Ledger) error {
		time.Sleep(100 * time.Millisecond)
		settled.Store(true)
		return errors.New("db down")
	}))

	type result struct {
		joinResult
		settledOnReturn bool
	}
	firstCh := make(chan result, 1)
	go func() {
		m, err := l.Join(context.Background(), player("alice"))
		firstCh <- result{joinResult{m, err}, settled.Load()}
	}()
	waitForQueue(t, l, 1)

	second, err := l.Join(context.Background(), player("bob"))
	if !errors.Is(err, ErrSettleFailed) {
		t.Fatalf("expected ErrSettleFailed for driver, got %v", err)
	}
	if !second.Driver || second.Ledger == nil {
		t.Fatalf("driver must still receive the ledger")
	}

	first := <-firstCh
	if !errors.Is(first.err, ErrSettleFailed) {
		t.Fatalf("expected ErrSettleFailed for follower, got %v", first.err)
	}
	if !first.settledOnReturn {
		t.Fatalf("follower returned before the result was settled")
	}
	if first.match.Ledger != second.Ledger {
		t.Fatalf("expected both callers to share the same ledger")
	}
}

func TestJoinSettlesOncePerPair(t *testing.T) {
	var settles int32
	l := New(nil, WithSettler(func(context.Context, *battle.Ledger) error {
		atomic.AddInt32(&settles, 1)
		return nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := l.Join(context.Background(), player("alice"))
		done <- err
	}()
	waitForQueue(t, l, 1)
	if _, err := l.Join(context.Background(), player("bob")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("unexpected error for follower: %v", err)
	}
	if n := atomic.LoadInt32(&settles); n != 1 {
		t.Fatalf("expected one settle, got %d", n)
	}
}
