package database

import (
	"time"

	"github.com/google/uuid"
)

type Problem struct {
	ID          uuid.UUID
	Title       string
	Description string
	Difficulty  string
	TestCases   []byte
	Tags        []string
	CreatedAt   time.Time
}

type Room struct {
	ID                    uuid.UUID
	Name                  string
	Slug                  string
	SecretHash            *string
	CreatedBy             uuid.UUID
	MaxParticipants       int32
	TimeLimitMinutes      int32
	Status                string
	Problems              []uuid.UUID
	Participants          []uuid.UUID
	CompletedParticipants []uuid.UUID
	Scoreboard            []byte
	CreatedAt             time.Time
	StartedAt             *time.Time
	EndedAt               *time.Time
}

type Submission struct {
	ID            uuid.UUID
	RoomID        uuid.UUID
	UserID        uuid.UUID
	ProblemID     uuid.UUID
	Code          string
	Language      string
	Status        string
	Results       []byte
	ExecutionTime float64
	SubmittedAt   time.Time
}

type User struct {
	ID           uuid.UUID
	UserName     string
	Email        string
	TotalBattles int32
	TotalWins    int32
	AverageScore float64
	CreatedAt    time.Time
}
