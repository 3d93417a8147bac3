package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
)

func newRoom(t *testing.T, m *MemoryStore, capacity int32) models.Room {
	t.Helper()
	room, err := m.CreateRoom(context.Background(), models.Room{
		ID:              uuid.New(),
		Name:            "duel",
		CreatedBy:       uuid.New(),
		MaxParticipants: capacity,
		TimeLimit:       30,
		Problems:        []uuid.UUID{uuid.New()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return room
}

func TestParticipantGuards(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	room := newRoom(t, m, 2)
	bob, carol := uuid.New(), uuid.New()

	if room.Status != models.RoomWaiting || len(room.Participants) != 1 {
		t.Fatalf("unexpected new room %+v", room)
	}
	if _, err := m.AddParticipant(ctx, room.ID, bob); err != nil {
		t.Fatal(err)
	}
	for name, id := range map[string]uuid.UUID{"duplicate": bob, "over capacity": carol} {
		if _, err := m.AddParticipant(ctx, room.ID, id); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
			t.Errorf("%s: expected ErrRoomStateChanged, got %v", name, err)
		}
	}
	if _, err := m.RemoveParticipant(ctx, room.ID, room.CreatedBy); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("creator removal: expected ErrRoomStateChanged, got %v", err)
	}
	got, err := m.RemoveParticipant(ctx, room.ID, bob)
	if err != nil || len(got.Participants) != 1 {
		t.Errorf("remove bob: %v %v", got.Participants, err)
	}
}

func TestLifecycleGuards(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	room := newRoom(t, m, 2)
	creator := room.CreatedBy

	if _, err := m.AddCompletedParticipant(ctx, room.ID, creator); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("completion before start: expected ErrRoomStateChanged, got %v", err)
	}
	if _, err := m.CompleteRoom(ctx, room.ID, time.Now(), nil); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("complete before start: expected ErrRoomStateChanged, got %v", err)
	}

	started, err := m.StartRoom(ctx, room.ID, time.Now())
	if err != nil || started.Status != models.RoomActive || started.StartedAt == nil {
		t.Fatalf("start: %+v %v", started, err)
	}
	if _, err = m.StartRoom(ctx, room.ID, time.Now()); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("second start: expected ErrRoomStateChanged, got %v", err)
	}
	if _, err = m.AddParticipant(ctx, room.ID, uuid.New()); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("join active room: expected ErrRoomStateChanged, got %v", err)
	}

	if _, err = m.AddCompletedParticipant(ctx, room.ID, uuid.New()); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("outsider completion: expected ErrRoomStateChanged, got %v", err)
	}
	if _, err = m.AddCompletedParticipant(ctx, room.ID, creator); err != nil {
		t.Fatal(err)
	}
	if _, err = m.AddCompletedParticipant(ctx, room.ID, creator); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("double completion: expected ErrRoomStateChanged, got %v", err)
	}

	board := []models.ScoreEntry{{UserID: creator, Score: 10}}
	done, err := m.CompleteRoom(ctx, room.ID, time.Now(), board)
	if err != nil || done.Status != models.RoomCompleted || len(done.Scoreboard) != 1 {
		t.Fatalf("complete: %+v %v", done, err)
	}
	if _, err = m.CompleteRoom(ctx, room.ID, time.Now(), nil); !errors.Is(err, arena_errors.ErrRoomStateChanged) {
		t.Errorf("second completion: expected ErrRoomStateChanged, got %v", err)
	}
	// stored copy is not shared with the caller
	board[0].Score = 99
	again, _ := m.GetRoom(ctx, room.ID)
	if again.Scoreboard[0].Score != 10 {
		t.Error("scoreboard aliased with caller slice")
	}
}

func TestSubmissionQueries(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	room := newRoom(t, m, 2)
	user, p1, p2 := room.CreatedBy, uuid.New(), uuid.New()
	start := time.Now()

	for i, sub := range []models.Submission{
		{ProblemID: p1, Status: models.StatusFailed, SubmittedAt: start.Add(3 * time.Second)},
		{ProblemID: p1, Status: models.StatusSolved, SubmittedAt: start.Add(2 * time.Second)},
		{ProblemID: p1, Status: models.StatusSolved, SubmittedAt: start.Add(4 * time.Second)},
		{ProblemID: p2, Status: models.StatusError, SubmittedAt: start.Add(1 * time.Second)},
	} {
		sub.ID = uuid.New()
		sub.RoomID = room.ID
		sub.UserID = user
		if _, err := m.InsertSubmission(ctx, sub); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if _, err := m.InsertSubmission(ctx, models.Submission{ID: uuid.New(), RoomID: uuid.New()}); !errors.Is(err, arena_errors.ErrInvalidRequest) {
		t.Errorf("unknown room: expected ErrInvalidRequest, got %v", err)
	}

	subs, _ := m.GetSubmissionsByRoom(ctx, room.ID)
	for i := 1; i < len(subs); i++ {
		if subs[i].SubmittedAt.Before(subs[i-1].SubmittedAt) {
			t.Fatalf("submissions out of order at %d", i)
		}
	}
	if n, _ := m.CountSolvedProblems(ctx, room.ID, user); n != 1 {
		t.Errorf("expected 1 distinct solved problem, got %d", n)
	}
	if solved, _ := m.HasSolved(ctx, room.ID, user, p2); solved {
		t.Error("errored submission counted as solved")
	}

	if err := m.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatal(err)
	}
	if subs, _ = m.GetSubmissionsByRoom(ctx, room.ID); len(subs) != 0 {
		t.Errorf("submissions survived room deletion, %d left", len(subs))
	}
}

func TestListRoomsByParticipant(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	bob := uuid.New()
	now := time.Now()

	var ended []models.Room
	for i := 0; i < 3; i++ {
		room := newRoom(t, m, 2)
		if _, err := m.AddParticipant(ctx, room.ID, bob); err != nil {
			t.Fatal(err)
		}
		if _, err := m.StartRoom(ctx, room.ID, now); err != nil {
			t.Fatal(err)
		}
		if i == 2 {
			// still running
			continue
		}
		done, err := m.CompleteRoom(ctx, room.ID, now.Add(time.Duration(i+1)*time.Minute), nil)
		if err != nil {
			t.Fatal(err)
		}
		ended = append(ended, done)
	}
	newRoom(t, m, 2) // bob never joined

	got, err := m.ListRoomsByParticipant(ctx, bob, models.RoomCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != ended[1].ID || got[1].ID != ended[0].ID {
		t.Errorf("expected the two finished battles latest first, got %+v", got)
	}
	if got, _ := m.ListRoomsByParticipant(ctx, uuid.New(), models.RoomCompleted); len(got) != 0 {
		t.Errorf("stranger has history %+v", got)
	}
}
