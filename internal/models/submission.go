package models

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	StatusSubmitted SubmissionStatus = "Submitted"
	StatusSolved    SubmissionStatus = "Solved"
	StatusFailed    SubmissionStatus = "Failed"
	StatusError     SubmissionStatus = "Error"
)

// TestResult is the verdict of a single test case.
type TestResult struct {
	TestCase       int     `json:"test_case"`
	Passed         bool    `json:"passed"`
	ActualOutput   string  `json:"actual_output"`
	ExpectedOutput string  `json:"expected_output"`
	Status         string  `json:"status"`
	Time           float64 `json:"time"`   // seconds
	Memory         int64   `json:"memory"` // KB
	Error          string  `json:"error,omitempty"`
}

type Submission struct {
	ID            uuid.UUID        `json:"submission_id"`
	RoomID        uuid.UUID        `json:"room_id"`
	UserID        uuid.UUID        `json:"user_id"`
	ProblemID     uuid.UUID        `json:"problem_id"`
	Code          string           `json:"code"`
	Language      string           `json:"language"`
	Status        SubmissionStatus `json:"status"`
	Results       []TestResult     `json:"results"`
	ExecutionTime float64          `json:"execution_time"`
	SubmittedAt   time.Time        `json:"submitted_at"`
}

func (s Submission) PassedCount() int {
	n := 0
	for _, r := range s.Results {
		if r.Passed {
			n++
		}
	}
	return n
}
