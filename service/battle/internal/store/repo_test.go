package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MonsterTCG/service/battle/internal/battle"
	"MonsterTCG/service/battle/internal/card"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db), mock
}

func TestRepoUserByToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	t.Run("utente trovato", func(t *testing.T) {
		mock.ExpectQuery("FROM users").
			WithArgs("alice-mtcgToken").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("alice"))

		p, err := repo.UserByToken(ctx, "alice-mtcgToken")
		require.NoError(t, err)
		assert.Equal(t, "alice", p.Name)
	})

	t.Run("token sconosciuto", func(t *testing.T) {
		mock.ExpectQuery("FROM users").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"name"}))

		_, err := repo.UserByToken(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoDeck(t *testing.T) {
	repo, mock := newMockRepo(t)

	id1, id2 := uuid.New(), uuid.New()
	mock.ExpectQuery("FROM cards").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "damage"}).
			AddRow(id1.String(), "FireGoblin", 10.0).
			AddRow(id2.String(), "WaterSpell", 20.0))

	deck, err := repo.Deck(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, deck, 2)
	assert.Equal(t, id1, deck[0].ID)
	assert.Equal(t, card.TypeGoblin, deck[0].Type())
	assert.Equal(t, card.ElementWater, deck[1].Element())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoRandomCards(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectQuery("FROM random_cards").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "damage"}).
			AddRow(id.String(), "Kraken", 40.0))

	cards, err := repo.RandomCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, id, cards[0].ID)
	assert.Equal(t, card.TypeKraken, cards[0].Type())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ApplyLedger sposta le carte nette e accredita vincitore/sconfitto.
func TestRepoApplyLedgerDecisive(t *testing.T) {
	repo, mock := newMockRepo(t)

	ledger := battle.NewLedger()
	moved := card.New(uuid.New(), "FireGoblin", 10)
	ledger.RecordTransfer(moved, battle.Participant{Name: "bob"})
	ledger.Winner = battle.Participant{Name: "bob"}
	ledger.Loser = battle.Participant{Name: "alice"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cards").
		WithArgs("bob", moved.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET wins = wins \\+ 1").
		WithArgs("bob", winElo).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET losses = losses \\+ 1").
		WithArgs("alice", lossElo).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyLedger(context.Background(), ledger))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// In caso di pareggio i segnaposto winner/loser ricevono solo un draw.
func TestRepoApplyLedgerDraw(t *testing.T) {
	repo, mock := newMockRepo(t)

	ledger := battle.NewLedger()
	ledger.Draw = true
	ledger.Winner = battle.Participant{Name: "alice"}
	ledger.Loser = battle.Participant{Name: "bob"}

	mock.ExpectBegin()
	mock.ExpectExec("SET draws = draws \\+ 1").
		WithArgs("alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyLedger(context.Background(), ledger))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoApplyLedgerRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	ledger := battle.NewLedger()
	ledger.RecordTransfer(card.New(uuid.New(), "FireGoblin", 10), battle.Participant{Name: "bob"})
	ledger.Winner = battle.Participant{Name: "bob"}
	ledger.Loser = battle.Participant{Name: "alice"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE cards").WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	err := repo.ApplyLedger(context.Background(), ledger)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoRecordScoreSkipsCards(t *testing.T) {
	repo, mock := newMockRepo(t)

	ledger := battle.NewLedger()
	ledger.RecordTransfer(card.New(uuid.New(), "FireGoblin", 10), battle.Participant{Name: "bob"})
	ledger.Winner = battle.Participant{Name: "bob"}
	ledger.Loser = battle.Participant{Name: "alice"}

	mock.ExpectBegin()
	mock.ExpectExec("SET wins = wins \\+ 1").WithArgs("bob", winElo).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET losses = losses \\+ 1").WithArgs("alice", lossElo).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.RecordScore(context.Background(), ledger))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoScore(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectQuery("FROM scores").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"gamer", "wins", "losses", "draws", "elo"}).
			AddRow("alice", 3, 1, 2, 104))

	s, err := repo.Score(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Score{User: "alice", Wins: 3, Losses: 1, Draws: 2, Elo: 104}, s)

	mock.ExpectQuery("FROM scores").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"gamer", "wins", "losses", "draws", "elo"}))

	_, err = repo.Score(ctx, "ghost")
	assert.ErrorIs(t, err, ErrScoreNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoScoreboard(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("ORDER BY elo DESC").
		WillReturnRows(sqlmock.NewRows([]string{"gamer", "wins", "losses", "draws", "elo"}).
			AddRow("bob", 5, 0, 0, 115).
			AddRow("alice", 0, 5, 0, 75))

	board, err := repo.Scoreboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].User)
	assert.Equal(t, 75, board[1].Elo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoSeedRandomCards(t *testing.T) {
	repo, mock := newMockRepo(t)

	cards := []*card.Card{
		card.New(uuid.New(), "FireGoblin", 15),
		card.New(uuid.New(), "Alatreon", 50),
	}

	mock.ExpectBegin()
	mock.ExpectExec("TRUNCATE TABLE random_cards").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, c := range cards {
		mock.ExpectExec("INSERT INTO random_cards").
			WithArgs(c.ID, c.Name, c.Damage).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.SeedRandomCards(context.Background(), cards))
	assert.NoError(t, mock.ExpectationsWereMet())
}
