package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomWaiting   RoomStatus = "waiting"
	RoomActive    RoomStatus = "active"
	RoomCompleted RoomStatus = "completed"
)

type Room struct {
	ID                    uuid.UUID    `json:"room_id"`
	Name                  string       `json:"name"`
	Slug                  string       `json:"slug"`
	SecretHash            string       `json:"-"`
	CreatedBy             uuid.UUID    `json:"created_by"`
	MaxParticipants       int32        `json:"max_participants"`
	TimeLimit             int32        `json:"time_limit"` // minutes
	Status                RoomStatus   `json:"status"`
	Problems              []uuid.UUID  `json:"problems"`
	Participants          []uuid.UUID  `json:"participants"`
	CompletedParticipants []uuid.UUID  `json:"completed_participants"`
	Scoreboard            []ScoreEntry `json:"scoreboard,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	StartedAt             *time.Time   `json:"started_at,omitempty"`
	EndedAt               *time.Time   `json:"ended_at,omitempty"`
}

func (r Room) HasSecret() bool {
	return r.SecretHash != ""
}

func (r Room) HasParticipant(userID uuid.UUID) bool {
	return slices.Contains(r.Participants, userID)
}

func (r Room) HasCompleted(userID uuid.UUID) bool {
	return slices.Contains(r.CompletedParticipants, userID)
}

func (r Room) HasProblem(problemID uuid.UUID) bool {
	return slices.Contains(r.Problems, problemID)
}

func (r Room) IsFull() bool {
	return len(r.Participants) >= int(r.MaxParticipants)
}

// AllCompleted reports whether every participant finished every problem.
func (r Room) AllCompleted() bool {
	for _, p := range r.Participants {
		if !r.HasCompleted(p) {
			return false
		}
	}
	return len(r.Participants) > 0
}

// Deadline is the instant the battle timer fires. Zero for rooms that never started.
func (r Room) Deadline() time.Time {
	if r.StartedAt == nil {
		return time.Time{}
	}
	return r.StartedAt.Add(time.Duration(r.TimeLimit) * time.Minute)
}
