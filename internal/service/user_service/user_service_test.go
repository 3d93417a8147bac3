package user_service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/repository"
	"github.com/tcp_snm/arena/internal/service"
)

func TestRecordBattleResults(t *testing.T) {
	store := repository.NewMemoryStore()
	winner := models.User{ID: uuid.New(), UserName: "alice", Stats: models.UserStats{TotalBattles: 1, TotalWins: 0, AverageScore: 20}}
	loser := models.User{ID: uuid.New(), UserName: "bob"}
	store.AddUser(winner)
	store.AddUser(loser)

	us := &UserService{Users: store}
	us.Start()

	err := us.RecordBattleResults(context.Background(), []models.ScoreEntry{
		{UserID: winner.ID, Score: 10},
		{UserID: loser.ID, Score: 4},
		{UserID: uuid.New(), Score: 1}, // unknown users are skipped
	})
	if err != nil {
		t.Fatal(err)
	}

	users, _ := us.GetUsersByIDs(context.Background(), []uuid.UUID{winner.ID, loser.ID})
	if got := users[winner.ID].Stats; got != (models.UserStats{TotalBattles: 2, TotalWins: 1, AverageScore: 15}) {
		t.Errorf("unexpected winner stats %+v", got)
	}
	if got := users[loser.ID].Stats; got != (models.UserStats{TotalBattles: 1, TotalWins: 0, AverageScore: 4}) {
		t.Errorf("unexpected loser stats %+v", got)
	}
}

func TestGetUserNamesFallsBackToID(t *testing.T) {
	store := repository.NewMemoryStore()
	known := models.User{ID: uuid.New(), UserName: "carol"}
	store.AddUser(known)
	us := &UserService{Users: store}
	us.Start()

	stranger := uuid.New()
	names, err := us.GetUserNames(context.Background(), []uuid.UUID{known.ID, stranger})
	if err != nil {
		t.Fatal(err)
	}
	if names[known.ID] != "carol" || names[stranger] != stranger.String() {
		t.Errorf("unexpected names %v", names)
	}
}

func TestAuthorizeCreatorAccess(t *testing.T) {
	us := &UserService{}
	creator := uuid.New()
	if err := us.AuthorizeCreatorAccess(creator, creator, ""); err != nil {
		t.Errorf("creator rejected, %v", err)
	}
	if err := us.AuthorizeCreatorAccess(creator, uuid.New(), "someone tried"); !errors.Is(err, arena_errors.ErrNotCreator) {
		t.Errorf("expected ErrNotCreator, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	store := repository.NewMemoryStore()
	dave := models.User{ID: uuid.New(), UserName: "dave", Stats: models.UserStats{TotalBattles: 3, TotalWins: 2, AverageScore: 21}}
	store.AddUser(dave)
	us := &UserService{Users: store}
	us.Start()

	as := func(id uuid.UUID) context.Context {
		return service.WithClaims(context.Background(), service.UserCredentialClaims{UserId: id})
	}
	got, err := us.GetStats(as(dave.ID))
	if err != nil {
		t.Fatal(err)
	}
	if got.UserName != "dave" || got.Stats != dave.Stats {
		t.Errorf("unexpected stats %+v", got)
	}
	if _, err = us.GetStats(as(uuid.New())); !errors.Is(err, arena_errors.ErrNotFound) {
		t.Errorf("unknown user: expected ErrNotFound, got %v", err)
	}
	if _, err = us.GetStats(context.Background()); err == nil {
		t.Error("expected an error without claims")
	}
}
