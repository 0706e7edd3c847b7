package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/catalog"
	"MonsterTCG/service/battle/internal/lobby"
)

// Simula in locale una battaglia casuale tra due giocatori, senza DB ne' rete.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	names := []string{"alice", "bob"}
	if len(os.Args) == 3 {
		names = os.Args[1:]
	}

	cards, err := catalog.Load()
	if err != nil {
		logger.Error("catalogo non valido", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lb := lobby.NewRandomized(nil)
	results := make([]lobby.Match, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			player := &battle.Player{
				Participant: battle.Participant{Name: name},
				Deck:        cards.Sample(catalog.DefaultDeckSize),
			}
			results[i], errs[i] = lb.Join(ctx, player)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			logger.Error("battaglia non avviata", "user", names[i], "error", err)
			os.Exit(1)
		}
	}

	ledger := results[0].Ledger
	fmt.Print(ledger.Log())
	if ledger.Draw {
		fmt.Printf("draw after %d rounds\n", ledger.Rounds)
		return
	}
	fmt.Printf("winner=%s loser=%s rounds=%d transfers=%d\n", ledger.Winner.Name, ledger.Loser.Name, ledger.Rounds, len(ledger.Transfers()))
}
