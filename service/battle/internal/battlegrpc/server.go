package battlegrpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"MonsterTCG/pkg/grpcx"
	"MonsterTCG/service/battle/internal/arena"
	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/lobby"
	"MonsterTCG/service/battle/internal/store"
)

// Arena e' il layer dominio usato dal server.
type Arena interface {
	Battle(ctx context.Context, p battle.Participant) (*battle.Ledger, error)
	RandomBattle(ctx context.Context, p battle.Participant) (*battle.Ledger, error)
	Score(ctx context.Context, user string) (store.Score, error)
	Scoreboard(ctx context.Context) ([]store.Score, error)
}

// Identity risolve il token di sessione nel giocatore.
type Identity interface {
	UserByToken(ctx context.Context, token string) (battle.Participant, error)
}

// Server espone il BattleService.
// Qui si leggono le metadata gRPC e si mappano gli errori in codici gRPC.
type Server struct {
	logger   *slog.Logger
	arena    Arena
	identity Identity
}

// NewServer collega logger, arena e risoluzione dell'identita'.
func NewServer(logger *slog.Logger, arena Arena, identity Identity) *Server {
	return &Server{logger: logger, arena: arena, identity: identity}
}

// JoinBattle mette il chiamante in coda con il proprio deck e ritorna il log della battaglia.
func (s *Server) JoinBattle(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := s.participant(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := s.arena.Battle(ctx, p)
	if err != nil {
		return nil, s.toStatus(err, "failed to run battle", "user", p.Name)
	}
	return ledgerStruct(ledger)
}

// JoinRandomBattle come JoinBattle, ma con un mazzo casuale dal catalogo.
func (s *Server) JoinRandomBattle(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := s.participant(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := s.arena.RandomBattle(ctx, p)
	if err != nil {
		return nil, s.toStatus(err, "failed to run random battle", "user", p.Name)
	}
	return ledgerStruct(ledger)
}

func (s *Server) GetScore(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := s.participant(ctx)
	if err != nil {
		return nil, err
	}
	score, err := s.arena.Score(ctx, p.Name)
	if err != nil {
		return nil, s.toStatus(err, "failed to load score", "user", p.Name)
	}
	return structpb.NewStruct(scoreMap(score))
}

func (s *Server) GetScoreboard(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if _, err := s.participant(ctx); err != nil {
		return nil, err
	}
	board, err := s.arena.Scoreboard(ctx)
	if err != nil {
		return nil, s.toStatus(err, "failed to load scoreboard")
	}
	scores := make([]any, 0, len(board))
	for _, score := range board {
		scores = append(scores, scoreMap(score))
	}
	return structpb.NewStruct(map[string]any{"scores": scores})
}

// participant prova prima il token nelle metadata gRPC, poi il context locale.
func (s *Server) participant(ctx context.Context) (battle.Participant, error) {
	if token, ok := grpcx.BearerToken(ctx); ok && s.identity != nil {
		p, err := s.identity.UserByToken(ctx, token)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, store.ErrUserNotFound) {
			return battle.Participant{}, status.Error(codes.Unauthenticated, "invalid token")
		}
		s.logger.Error("errore risoluzione token", "error", err)
		return battle.Participant{}, status.Error(codes.Internal, "failed to resolve user")
	}

	name, ok := ctx.Value(grpcx.ContextUserKey).(string)
	if !ok || strings.TrimSpace(name) == "" {
		return battle.Participant{}, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return battle.Participant{Name: strings.TrimSpace(name)}, nil
}

func (s *Server) toStatus(err error, internalMsg string, attrs ...any) error {
	switch {
	case errors.Is(err, lobby.ErrAlreadyQueued):
		return status.Error(codes.AlreadyExists, "you can not start a battle with yourself")
	case errors.Is(err, arena.ErrBattleInProgress):
		return status.Error(codes.FailedPrecondition, "battle already in progress")
	case errors.Is(err, store.ErrUserNotFound):
		return status.Error(codes.NotFound, "user not found")
	case errors.Is(err, store.ErrScoreNotFound):
		return status.Error(codes.NotFound, "score not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "battle request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "no opponent found in time")
	case errors.Is(err, lobby.ErrMalformedEntry):
		s.logger.Error("voce malformata in lobby", append([]any{"error", err}, attrs...)...)
		return status.Error(codes.Internal, internalMsg)
	default:
		s.logger.Error(internalMsg, append([]any{"error", err}, attrs...)...)
		return status.Error(codes.Internal, internalMsg)
	}
}

func ledgerStruct(ledger *battle.Ledger) (*structpb.Struct, error) {
	transfers := make([]any, 0)
	for _, t := range ledger.Transfers() {
		transfers = append(transfers, map[string]any{
			"card_id":   t.Card.ID.String(),
			"card":      t.Card.Name,
			"recipient": t.Recipient.Name,
		})
	}
	return structpb.NewStruct(map[string]any{
		"log":       ledger.Log(),
		"winner":    ledger.Winner.Name,
		"loser":     ledger.Loser.Name,
		"draw":      ledger.Draw,
		"rounds":    ledger.Rounds,
		"transfers": transfers,
	})
}

func scoreMap(s store.Score) map[string]any {
	return map[string]any{
		"user":   s.User,
		"wins":   s.Wins,
		"losses": s.Losses,
		"draws":  s.Draws,
		"elo":    s.Elo,
	}
}
