package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
)

// MemoryStore keeps everything in process. It honours the same guards as the
// postgres queries and is used by tests and single node development runs.
type MemoryStore struct {
	mu          sync.RWMutex
	rooms       map[uuid.UUID]models.Room
	submissions []models.Submission
	problems    map[uuid.UUID]models.Problem
	users       map[uuid.UUID]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[uuid.UUID]models.Room),
		problems: make(map[uuid.UUID]models.Problem),
		users:    make(map[uuid.UUID]models.User),
	}
}

func (m *MemoryStore) AddProblem(problem models.Problem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems[problem.ID] = problem
}

func (m *MemoryStore) AddUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MemoryStore) CreateRoom(_ context.Context, room models.Room) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[room.ID]; ok {
		return models.Room{}, fmt.Errorf("%w, room already exists", arena_errors.ErrInvalidRequest)
	}
	room.Status = models.RoomWaiting
	room.Participants = []uuid.UUID{room.CreatedBy}
	room.CompletedParticipants = []uuid.UUID{}
	room.Problems = slices.Clone(room.Problems)
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	m.rooms[room.ID] = room
	return cloneRoom(room), nil
}

func (m *MemoryStore) GetRoom(_ context.Context, roomID uuid.UUID) (models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return models.Room{}, fmt.Errorf("%w, room with id %v", arena_errors.ErrNotFound, roomID)
	}
	return cloneRoom(room), nil
}

func (m *MemoryStore) ListRoomsByStatus(_ context.Context, status models.RoomStatus) ([]models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]models.Room, 0)
	for _, room := range m.rooms {
		if room.Status == status {
			rooms = append(rooms, cloneRoom(room))
		}
	}
	slices.SortFunc(rooms, func(a, b models.Room) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rooms, nil
}

func (m *MemoryStore) ListRoomsByParticipant(
	_ context.Context,
	userID uuid.UUID,
	status models.RoomStatus,
) ([]models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]models.Room, 0)
	for _, room := range m.rooms {
		if room.Status == status && room.HasParticipant(userID) {
			rooms = append(rooms, cloneRoom(room))
		}
	}
	slices.SortFunc(rooms, func(a, b models.Room) int {
		switch {
		case a.EndedAt != nil && b.EndedAt != nil:
			if c := b.EndedAt.Compare(*a.EndedAt); c != 0 {
				return c
			}
		case a.EndedAt != nil:
			return -1
		case b.EndedAt != nil:
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rooms, nil
}

func (m *MemoryStore) AddParticipant(_ context.Context, roomID, userID uuid.UUID) (models.Room, error) {
	return m.update(roomID, func(room *models.Room) bool {
		if room.Status != models.RoomWaiting || room.IsFull() || room.HasParticipant(userID) {
			return false
		}
		room.Participants = append(room.Participants, userID)
		return true
	})
}

func (m *MemoryStore) RemoveParticipant(_ context.Context, roomID, userID uuid.UUID) (models.Room, error) {
	return m.update(roomID, func(room *models.Room) bool {
		if room.Status != models.RoomWaiting || room.CreatedBy == userID {
			return false
		}
		room.Participants = slices.DeleteFunc(room.Participants, func(id uuid.UUID) bool {
			return id == userID
		})
		return true
	})
}

func (m *MemoryStore) DeleteRoom(_ context.Context, roomID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[roomID]; !ok {
		return fmt.Errorf("%w, room with id %v", arena_errors.ErrNotFound, roomID)
	}
	delete(m.rooms, roomID)
	// submissions cascade
	m.submissions = slices.DeleteFunc(m.submissions, func(s models.Submission) bool {
		return s.RoomID == roomID
	})
	return nil
}

func (m *MemoryStore) StartRoom(_ context.Context, roomID uuid.UUID, startedAt time.Time) (models.Room, error) {
	return m.update(roomID, func(room *models.Room) bool {
		if room.Status != models.RoomWaiting {
			return false
		}
		room.Status = models.RoomActive
		room.StartedAt = &startedAt
		return true
	})
}

func (m *MemoryStore) AddCompletedParticipant(_ context.Context, roomID, userID uuid.UUID) (models.Room, error) {
	return m.update(roomID, func(room *models.Room) bool {
		if room.Status != models.RoomActive || !room.HasParticipant(userID) || room.HasCompleted(userID) {
			return false
		}
		room.CompletedParticipants = append(room.CompletedParticipants, userID)
		return true
	})
}

func (m *MemoryStore) CompleteRoom(
	_ context.Context,
	roomID uuid.UUID,
	endedAt time.Time,
	scoreboard []models.ScoreEntry,
) (models.Room, error) {
	return m.update(roomID, func(room *models.Room) bool {
		if room.Status != models.RoomActive {
			return false
		}
		room.Status = models.RoomCompleted
		room.EndedAt = &endedAt
		room.Scoreboard = slices.Clone(scoreboard)
		return true
	})
}

func (m *MemoryStore) update(roomID uuid.UUID, apply func(room *models.Room) bool) (models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return models.Room{}, fmt.Errorf("%w, room with id %v", arena_errors.ErrRoomStateChanged, roomID)
	}
	room = cloneRoom(room)
	if !apply(&room) {
		return models.Room{}, fmt.Errorf("%w, guarded update rejected for room %v", arena_errors.ErrRoomStateChanged, roomID)
	}
	m.rooms[roomID] = room
	return cloneRoom(room), nil
}

func (m *MemoryStore) InsertSubmission(_ context.Context, sub models.Submission) (models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[sub.RoomID]; !ok {
		return models.Submission{}, fmt.Errorf("%w, room does not exist", arena_errors.ErrInvalidRequest)
	}
	for _, s := range m.submissions {
		if s.ID == sub.ID {
			return models.Submission{}, fmt.Errorf("%w, submission already exists", arena_errors.ErrInvalidRequest)
		}
	}
	sub.Results = slices.Clone(sub.Results)
	m.submissions = append(m.submissions, sub)
	return sub, nil
}

func (m *MemoryStore) GetSubmissionsByRoom(_ context.Context, roomID uuid.UUID) ([]models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]models.Submission, 0)
	for _, s := range m.submissions {
		if s.RoomID == roomID {
			subs = append(subs, s)
		}
	}
	slices.SortStableFunc(subs, func(a, b models.Submission) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})
	return subs, nil
}

func (m *MemoryStore) HasSolved(_ context.Context, roomID, userID, problemID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.submissions {
		if s.RoomID == roomID && s.UserID == userID && s.ProblemID == problemID && s.Status == models.StatusSolved {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CountSolvedProblems(_ context.Context, roomID, userID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	solved := make(map[uuid.UUID]struct{})
	for _, s := range m.submissions {
		if s.RoomID == roomID && s.UserID == userID && s.Status == models.StatusSolved {
			solved[s.ProblemID] = struct{}{}
		}
	}
	return len(solved), nil
}

func (m *MemoryStore) GetProblemsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	problems := make([]models.Problem, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.problems[id]; ok {
			problems = append(problems, p)
		}
	}
	return problems, nil
}

func (m *MemoryStore) GetUsersByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *MemoryStore) UpdateUserStats(_ context.Context, userID uuid.UUID, stats models.UserStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w, user with id %v", arena_errors.ErrNotFound, userID)
	}
	u.Stats = stats
	m.users[userID] = u
	return nil
}

func cloneRoom(room models.Room) models.Room {
	room.Problems = slices.Clone(room.Problems)
	room.Participants = slices.Clone(room.Participants)
	room.CompletedParticipants = slices.Clone(room.CompletedParticipants)
	room.Scoreboard = slices.Clone(room.Scoreboard)
	return room
}
