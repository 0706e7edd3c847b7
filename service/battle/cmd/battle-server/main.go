package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"MonsterTCG/service/battle/internal/arena"
	"MonsterTCG/service/battle/internal/battlegrpc"
	"MonsterTCG/service/battle/internal/catalog"
	"MonsterTCG/service/battle/internal/config"
	"MonsterTCG/service/battle/internal/db"
	"MonsterTCG/service/battle/internal/events"
	"MonsterTCG/service/battle/internal/lock"
	"MonsterTCG/service/battle/internal/metrics"
	"MonsterTCG/service/battle/internal/store"
)

func main() {
	// Bootstrap di logging e config.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Carica le variabili da .env se presente (solo per dev).
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = ".env"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB richiesto per deck, trasferimenti e punteggi.
	database, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	repo := store.NewRepo(database)

	cards, err := randomDecks(ctx, logger, repo, cfg.CatalogPath)
	if err != nil {
		logger.Error("catalogo non valido", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := []arena.Option{
		arena.WithMetrics(metrics.New(registry)),
		arena.WithDeckSize(cfg.RandomDeckSize),
	}

	// Redis opzionale: senza, lo stesso utente e' fermato solo dalla lobby locale.
	if cfg.RedisAddr != "" {
		client, err := lock.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		locker := lock.NewRedisLock(client, cfg.BattleLockTTL, 0, 0)
		// Il rinnovo tiene il lock anche per chi resta in coda oltre il TTL.
		opts = append(opts, arena.WithLocker(locker), arena.WithLockRefresh(locker.TTL()/3))
	} else {
		logger.Warn("REDIS_ADDR vuoto, lock distribuito disattivato")
	}

	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("battle-svc"), nats.MaxReconnects(-1))
		if err != nil {
			logger.Error("nats connection failed", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		opts = append(opts, arena.WithPublisher(events.NewNATSPublisher(nc)))
	}

	service := arena.NewService(logger, repo, cards, opts...)

	// Registra BattleService, health e reflection.
	server := grpc.NewServer()
	battlegrpc.RegisterBattleServiceServer(server, battlegrpc.NewServer(logger, service, repo))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(battlegrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(server)

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics serve failed", "error", err)
		}
	}()

	// Avvia il listener gRPC.
	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("grpc listen failed", "error", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown in corso")
		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)

		// I giocatori ancora in coda non terminano da soli: dopo il timeout si chiude tutto.
		stopped := make(chan struct{})
		go func() {
			server.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			server.Stop()
		}
	}()

	logger.Info("battle grpc listening", "addr", cfg.GRPCAddr)
	if err := server.Serve(listener); err != nil {
		logger.Error("grpc serve failed", "error", err)
		os.Exit(1)
	}
}

// randomDecks preferisce le carte di random_cards; a tabella vuota usa il catalogo YAML.
func randomDecks(ctx context.Context, logger *slog.Logger, repo *store.Repo, path string) (*catalog.Catalog, error) {
	seeded, err := repo.RandomCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("load random_cards: %w", err)
	}
	if len(seeded) > 0 {
		logger.Info("mazzi casuali da random_cards", "cards", len(seeded))
		return catalog.FromCards(seeded)
	}
	logger.Warn("random_cards vuota, uso il catalogo YAML (eseguire battle-migrate)")
	return loadCatalog(path)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(path)
}
