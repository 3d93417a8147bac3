package models

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionSummary struct {
	ProblemID         uuid.UUID        `json:"problem_id"`
	ProblemTitle      string           `json:"problem_title"`
	ProblemDifficulty Difficulty       `json:"problem_difficulty"`
	Status            SubmissionStatus `json:"status"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	ExecutionTime     float64          `json:"execution_time"`
	TestCasesPassed   int              `json:"test_cases_passed"`
	TotalTestCases    int              `json:"total_test_cases"`
}

type ScoreEntry struct {
	UserID         uuid.UUID           `json:"user_id"`
	UserName       string              `json:"user_name"`
	SolvedProblems int                 `json:"solved_problems"`
	TimeTaken      int64               `json:"time_taken"` // seconds
	Score          int                 `json:"score"`
	Submissions    []SubmissionSummary `json:"submissions"`
}
