package scoring_service

import (
	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/models"
)

const (
	baseScoreEasy   = 10
	baseScoreMedium = 20
	baseScoreHard   = 30
	minProblemScore = 1
)

type Participant struct {
	UserID   uuid.UUID
	UserName string
}

// ProblemInfo carries the problem metadata the scoreboard needs.
type ProblemInfo struct {
	Title      string
	Difficulty models.Difficulty
}
