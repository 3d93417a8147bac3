package judge_service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/models"
)

const (
	statusIDInQueue    = 1
	statusIDProcessing = 2
	statusIDAccepted   = 3

	msgAllPassed      = "All test cases passed!"
	msgSomeFailed     = "Some test cases failed."
	msgEvaluationFail = "Error evaluating code"

	defaultPollInterval    = time.Second
	defaultMaxPollAttempts = 10
	defaultCPUTimeLimit    = 5
	defaultMemoryLimitKB   = 128000
)

// Judge is the contract of an external code execution service.
type Judge interface {
	Dispatch(ctx context.Context, req DispatchRequest) (token string, err error)
	Poll(ctx context.Context, token string) (Verdict, error)
}

type DispatchRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output"`
	CPUTimeLimit   float64 `json:"cpu_time_limit"`
	MemoryLimit    int     `json:"memory_limit"`
}

type VerdictStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Verdict mirrors the judge's submission resource. Absent fields come back as null.
type Verdict struct {
	Token         string        `json:"token"`
	Status        VerdictStatus `json:"status"`
	Stdout        *string       `json:"stdout"`
	Stderr        *string       `json:"stderr"`
	CompileOutput *string       `json:"compile_output"`
	Time          *string       `json:"time"`
	Memory        *int64        `json:"memory"`
}

func (v Verdict) Pending() bool {
	return v.Status.ID == statusIDInQueue || v.Status.ID == statusIDProcessing
}

func (v Verdict) Accepted() bool {
	return v.Status.ID == statusIDAccepted
}

func (v Verdict) seconds() float64 {
	if v.Time == nil {
		return 0
	}
	t, err := strconv.ParseFloat(*v.Time, 64)
	if err != nil {
		logrus.Warnf("judge returned unparsable time %q for token %s", *v.Time, v.Token)
		return 0
	}
	return t
}

func (v Verdict) toTestResult(number int, testCase models.TestCase) models.TestResult {
	result := models.TestResult{
		TestCase:       number,
		Passed:         v.Accepted(),
		ActualOutput:   strings.TrimSpace(deref(v.Stdout)),
		ExpectedOutput: strings.TrimSpace(testCase.Output),
		Status:         v.Status.Description,
		Time:           v.seconds(),
	}
	if v.Memory != nil {
		result.Memory = *v.Memory
	}
	// compiler diagnostics take precedence over runtime ones
	if out := deref(v.CompileOutput); out != "" {
		result.Error = out
	} else {
		result.Error = deref(v.Stderr)
	}
	return result
}

// Evaluation is the aggregate verdict of one code submission.
type Evaluation struct {
	Status        models.SubmissionStatus `json:"status"`
	Message       string                  `json:"message"`
	Details       []models.TestResult     `json:"details"`
	TestCount     int                     `json:"test_count"`
	PassedCount   int                     `json:"passed_count"`
	ExecutionTime float64                 `json:"execution_time"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
