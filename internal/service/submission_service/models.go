package submission_service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/repository"
	"github.com/tcp_snm/arena/internal/service/judge_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/room_service"
)

const (
	defaultEvaluationTimeout = 2 * time.Minute
	persistTimeout           = 10 * time.Second
)

type SubmissionService struct {
	Submissions       repository.SubmissionStore
	RoomService       *room_service.RoomService
	ProblemService    *problem_service.ProblemService
	Evaluator         *judge_service.Evaluator
	Publisher         events.Publisher
	EvaluationTimeout time.Duration
	logger            *logrus.Entry
}

type SubmissionRequest struct {
	ProblemID uuid.UUID `json:"problem_id" validate:"required"`
	Code      string    `json:"code" validate:"required"`
	Language  string    `json:"language" validate:"required"`
}

type SubmissionResponse struct {
	SubmissionID  uuid.UUID               `json:"submission_id"`
	ProblemID     uuid.UUID               `json:"problem_id"`
	Status        models.SubmissionStatus `json:"status"`
	Message       string                  `json:"message"`
	Details       []models.TestResult     `json:"details"`
	TestCount     int                     `json:"test_count"`
	PassedCount   int                     `json:"passed_count"`
	ExecutionTime float64                 `json:"execution_time"`
}
