package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/models"
)

// RoomStore persists rooms. Every mutating call is a guarded update: it only
// applies when the room is still in the state the caller expects and returns
// arena_errors.ErrRoomStateChanged otherwise.
type RoomStore interface {
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (models.Room, error)
	ListRoomsByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error)
	// ListRoomsByParticipant lists the rooms in status that userID took part
	// in, most recently ended first.
	ListRoomsByParticipant(ctx context.Context, userID uuid.UUID, status models.RoomStatus) ([]models.Room, error)
	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (models.Room, error)
	RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (models.Room, error)
	DeleteRoom(ctx context.Context, roomID uuid.UUID) error
	StartRoom(ctx context.Context, roomID uuid.UUID, startedAt time.Time) (models.Room, error)
	AddCompletedParticipant(ctx context.Context, roomID, userID uuid.UUID) (models.Room, error)
	CompleteRoom(ctx context.Context, roomID uuid.UUID, endedAt time.Time, scoreboard []models.ScoreEntry) (models.Room, error)
}

// SubmissionStore is append only.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, sub models.Submission) (models.Submission, error)
	GetSubmissionsByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Submission, error)
	HasSolved(ctx context.Context, roomID, userID, problemID uuid.UUID) (bool, error)
	CountSolvedProblems(ctx context.Context, roomID, userID uuid.UUID) (int, error)
}

type ProblemStore interface {
	GetProblemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Problem, error)
}

type UserStore interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	UpdateUserStats(ctx context.Context, userID uuid.UUID, stats models.UserStats) error
}
