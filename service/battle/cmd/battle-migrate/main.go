package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"MonsterTCG/service/battle/internal/catalog"
	"MonsterTCG/service/battle/internal/config"
	"MonsterTCG/service/battle/internal/db"
	"MonsterTCG/service/battle/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 1) Carica env per connessione DB.
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = "service/battle/.env"
	}
	if err := godotenv.Overload(envPath); err != nil {
		logger.Warn("impossibile caricare .env", "path", envPath, "error", err)
	} else {
		logger.Info(".env caricato", "path", envPath)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config non valida", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// 2) Legge i file SQL da CLI ed esegue in transazione.
	files := os.Args[1:]
	if len(files) == 0 {
		logger.Error("nessun file sql passato", "usage", "go run ./service/battle/cmd/battle-migrate <file.sql> [file2.sql]")
		os.Exit(1)
	}
	for _, file := range files {
		if err := execSQLFile(ctx, database, file); err != nil {
			logger.Error("esecuzione sql fallita", "file", file, "error", err)
			os.Exit(1)
		}
		logger.Info("sql eseguito", "file", file)
	}

	// 3) Ricarica le carte della modalita' casuale dal catalogo.
	var cards *catalog.Catalog
	if cfg.CatalogPath != "" {
		cards, err = catalog.LoadFile(cfg.CatalogPath)
	} else {
		cards, err = catalog.Load()
	}
	if err != nil {
		logger.Error("catalogo non valido", "error", err)
		os.Exit(1)
	}
	if err := store.NewRepo(database).SeedRandomCards(ctx, cards.Cards()); err != nil {
		logger.Error("seed random_cards fallito", "error", err)
		os.Exit(1)
	}
	logger.Info("random_cards caricate", "cards", cards.Len())
}

func execSQLFile(ctx context.Context, database *sql.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
