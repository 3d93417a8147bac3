package judge_service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
	"golang.org/x/sync/errgroup"
)

// Evaluator runs a piece of code against every test case of a problem,
// one dispatch and poll loop per case.
type Evaluator struct {
	Judge           Judge
	PollInterval    time.Duration
	MaxPollAttempts int
	CPUTimeLimit    float64 // seconds
	MemoryLimitKB   int
	logger          *logrus.Entry
}

func (e *Evaluator) Start() {
	if e.Judge == nil {
		panic("evaluator expects non-nil judge")
	}
	if e.PollInterval <= 0 {
		e.PollInterval = defaultPollInterval
	}
	if e.MaxPollAttempts <= 0 {
		e.MaxPollAttempts = defaultMaxPollAttempts
	}
	if e.CPUTimeLimit <= 0 {
		e.CPUTimeLimit = defaultCPUTimeLimit
	}
	if e.MemoryLimitKB <= 0 {
		e.MemoryLimitKB = defaultMemoryLimitKB
	}
	e.logger = logrus.WithField("from", "evaluator")
	e.logger.Infof(
		"evaluator started, poll interval %v, max attempts %d",
		e.PollInterval,
		e.MaxPollAttempts,
	)
}

// Evaluate returns an error only when the input itself is invalid
// (unsupported language or malformed test cases). Failures of the judge are
// reported as an Evaluation with status Error.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	code string,
	language string,
	testCases []models.TestCase,
) (Evaluation, error) {
	// validate before talking to the judge
	languageID, err := LanguageID(language)
	if err != nil {
		return Evaluation{}, err
	}
	if err := validateTestCases(testCases); err != nil {
		return Evaluation{}, err
	}

	results := make([]models.TestResult, len(testCases))
	g, gctx := errgroup.WithContext(ctx)
	for i, testCase := range testCases {
		i, testCase := i, testCase
		g.Go(func() error {
			result, err := e.runTestCase(gctx, i+1, code, languageID, testCase)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error(err)
		return Evaluation{
			Status:    models.StatusError,
			Message:   fmt.Sprintf("%s: %s", msgEvaluationFail, userFacingCause(err)),
			Details:   []models.TestResult{},
			TestCount: len(testCases),
		}, nil
	}

	return aggregate(results), nil
}

func (e *Evaluator) runTestCase(
	ctx context.Context,
	number int,
	code string,
	languageID int,
	testCase models.TestCase,
) (models.TestResult, error) {
	token, err := e.Judge.Dispatch(ctx, DispatchRequest{
		SourceCode:     code,
		LanguageID:     languageID,
		Stdin:          testCase.Input,
		ExpectedOutput: strings.TrimSpace(testCase.Output),
		CPUTimeLimit:   e.CPUTimeLimit,
		MemoryLimit:    e.MemoryLimitKB,
	})
	if err != nil {
		return models.TestResult{}, fmt.Errorf(
			"%w, test case %d, %w",
			arena_errors.ErrJudgeDispatchFailed,
			number,
			err,
		)
	}

	verdict, err := e.awaitVerdict(ctx, token)
	if err != nil {
		return models.TestResult{}, fmt.Errorf("test case %d, %w", number, err)
	}
	return verdict.toTestResult(number, testCase), nil
}

// awaitVerdict polls at most MaxPollAttempts times, waiting PollInterval
// between attempts. Transport errors use up attempts like pending verdicts.
func (e *Evaluator) awaitVerdict(ctx context.Context, token string) (Verdict, error) {
	var lastErr error
	for attempt := 1; attempt <= e.MaxPollAttempts; attempt++ {
		verdict, err := e.Judge.Poll(ctx, token)
		if err != nil {
			if ctx.Err() != nil {
				return Verdict{}, ctx.Err()
			}
			e.logger.Warnf("poll %d/%d for token %s failed, %v", attempt, e.MaxPollAttempts, token, err)
			lastErr = err
		} else if !verdict.Pending() {
			return verdict, nil
		} else {
			lastErr = nil
		}

		if attempt == e.MaxPollAttempts {
			break
		}
		timer := time.NewTimer(e.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Verdict{}, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr != nil {
		return Verdict{}, fmt.Errorf("%w, token %s, %w", arena_errors.ErrJudgePollFailed, token, lastErr)
	}
	return Verdict{}, fmt.Errorf(
		"%w, token %s still pending after %d attempts",
		arena_errors.ErrJudgeTimeout,
		token,
		e.MaxPollAttempts,
	)
}

func validateTestCases(testCases []models.TestCase) error {
	if len(testCases) == 0 {
		return fmt.Errorf("%w, problem has no test cases", arena_errors.ErrMalformedTestCase)
	}
	for i, tc := range testCases {
		if strings.TrimSpace(tc.Output) == "" {
			return fmt.Errorf(
				"%w, test case %d has no expected output",
				arena_errors.ErrMalformedTestCase,
				i+1,
			)
		}
	}
	return nil
}

func aggregate(results []models.TestResult) Evaluation {
	eval := Evaluation{
		Details:   results,
		TestCount: len(results),
	}
	for _, r := range results {
		if r.Passed {
			eval.PassedCount++
		}
		eval.ExecutionTime += r.Time
	}
	if eval.PassedCount == eval.TestCount {
		eval.Status = models.StatusSolved
		eval.Message = msgAllPassed
	} else {
		eval.Status = models.StatusFailed
		eval.Message = msgSomeFailed
	}
	return eval
}

func userFacingCause(err error) string {
	switch {
	case errors.Is(err, arena_errors.ErrJudgeTimeout):
		return arena_errors.ErrJudgeTimeout.Error()
	case errors.Is(err, arena_errors.ErrJudgeDispatchFailed):
		return arena_errors.ErrJudgeDispatchFailed.Error()
	case errors.Is(err, arena_errors.ErrJudgePollFailed):
		return arena_errors.ErrJudgePollFailed.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "evaluation was cancelled"
	default:
		return err.Error()
	}
}
