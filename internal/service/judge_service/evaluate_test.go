package judge_service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
)

// fakeJudge answers every token with the verdict returned by verdictFor after
// pendingPolls pending answers.
type fakeJudge struct {
	pendingPolls int
	pollErrors   int
	dispatchErr  error
	verdictFor   func(req DispatchRequest) Verdict

	dispatches atomic.Int32
	polls      atomic.Int32
	mu         sync.Mutex
	requests   map[string]DispatchRequest
	seen       map[string]int
}

func (f *fakeJudge) Dispatch(_ context.Context, req DispatchRequest) (string, error) {
	n := f.dispatches.Add(1)
	if f.dispatchErr != nil {
		return "", f.dispatchErr
	}
	token := "token-" + string(rune('a'+n))
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requests == nil {
		f.requests = make(map[string]DispatchRequest)
		f.seen = make(map[string]int)
	}
	f.requests[token] = req
	return token, nil
}

func (f *fakeJudge) Poll(_ context.Context, token string) (Verdict, error) {
	f.polls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[token]++
	n := f.seen[token]
	if n <= f.pollErrors {
		return Verdict{}, errors.New("connection reset by peer")
	}
	if n <= f.pollErrors+f.pendingPolls {
		return Verdict{Token: token, Status: VerdictStatus{ID: statusIDProcessing, Description: "Processing"}}, nil
	}
	return f.verdictFor(f.requests[token]), nil
}

func strPtr(s string) *string { return &s }

// echoes the expected output, so every case is accepted
func acceptAll(req DispatchRequest) Verdict {
	return Verdict{
		Status: VerdictStatus{ID: statusIDAccepted, Description: "Accepted"},
		Stdout: strPtr(req.ExpectedOutput + "\n"),
		Time:   strPtr("0.25"),
	}
}

func newEvaluator(judge Judge, attempts int) *Evaluator {
	e := &Evaluator{
		Judge:           judge,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: attempts,
	}
	e.Start()
	return e
}

var twoCases = []models.TestCase{
	{Input: "1 2", Output: "3"},
	{Input: "5 5", Output: "10\n"},
}

func TestUnsupportedLanguageNeverCallsJudge(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll}
	_, err := newEvaluator(judge, 3).Evaluate(context.Background(), "++[>+<-]", "brainfuck", twoCases)
	if !errors.Is(err, arena_errors.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if judge.dispatches.Load() != 0 {
		t.Errorf("judge was called %d times", judge.dispatches.Load())
	}
}

func TestMalformedTestCases(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll}
	e := newEvaluator(judge, 3)
	for name, cases := range map[string][]models.TestCase{
		"empty":              {},
		"no expected output": {{Input: "1", Output: "  "}},
	} {
		_, err := e.Evaluate(context.Background(), "print(1)", "python", cases)
		if !errors.Is(err, arena_errors.ErrMalformedTestCase) {
			t.Errorf("%s: expected ErrMalformedTestCase, got %v", name, err)
		}
	}
	if judge.dispatches.Load() != 0 {
		t.Errorf("judge was called %d times", judge.dispatches.Load())
	}
}

func TestAllCasesAccepted(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll, pendingPolls: 2}
	eval, err := newEvaluator(judge, 5).Evaluate(context.Background(), "code", "Python", twoCases)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Status != models.StatusSolved || eval.Message != msgAllPassed {
		t.Errorf("expected solved, got %s: %s", eval.Status, eval.Message)
	}
	if eval.TestCount != 2 || eval.PassedCount != 2 {
		t.Errorf("unexpected counts %d/%d", eval.PassedCount, eval.TestCount)
	}
	if eval.ExecutionTime != 0.5 {
		t.Errorf("expected execution time 0.5, got %v", eval.ExecutionTime)
	}
	for i, d := range eval.Details {
		if d.TestCase != i+1 {
			t.Errorf("details out of order: %d at index %d", d.TestCase, i)
		}
		if d.ActualOutput != d.ExpectedOutput {
			t.Errorf("case %d: actual %q expected %q", d.TestCase, d.ActualOutput, d.ExpectedOutput)
		}
	}
	// 2 cases, each 2 pending polls and 1 final
	if judge.polls.Load() != 6 {
		t.Errorf("expected 6 polls, got %d", judge.polls.Load())
	}
}

func TestWrongAnswerFailsSubmission(t *testing.T) {
	judge := &fakeJudge{verdictFor: func(req DispatchRequest) Verdict {
		if req.Stdin == "5 5" {
			return Verdict{
				Status: VerdictStatus{ID: 4, Description: "Wrong Answer"},
				Stdout: strPtr("11"),
				Stderr: strPtr(""),
			}
		}
		return acceptAll(req)
	}}
	eval, err := newEvaluator(judge, 3).Evaluate(context.Background(), "code", "cpp", twoCases)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Status != models.StatusFailed || eval.Message != msgSomeFailed {
		t.Errorf("expected failed, got %s: %s", eval.Status, eval.Message)
	}
	if eval.PassedCount != 1 || eval.Details[1].Passed || eval.Details[1].Status != "Wrong Answer" {
		t.Errorf("unexpected details %+v", eval.Details)
	}
}

func TestPollingStopsAfterMaxAttempts(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll, pendingPolls: 1000}
	cases := []models.TestCase{{Input: "", Output: "ok"}}
	eval, err := newEvaluator(judge, 4).Evaluate(context.Background(), "code", "java", cases)
	if err != nil {
		t.Fatal(err)
	}
	if judge.polls.Load() != 4 {
		t.Errorf("expected exactly 4 polls, got %d", judge.polls.Load())
	}
	if eval.Status != models.StatusError {
		t.Errorf("expected status Error, got %s", eval.Status)
	}
	if !strings.Contains(eval.Message, arena_errors.ErrJudgeTimeout.Error()) {
		t.Errorf("message should mention the timeout, got %q", eval.Message)
	}
}

func TestDispatchFailureIsReportedAsError(t *testing.T) {
	judge := &fakeJudge{dispatchErr: errors.New("dial tcp: connection refused")}
	eval, err := newEvaluator(judge, 3).Evaluate(context.Background(), "code", "c", twoCases)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Status != models.StatusError || eval.PassedCount != 0 {
		t.Errorf("expected status Error, got %+v", eval)
	}
	if !strings.HasPrefix(eval.Message, msgEvaluationFail) {
		t.Errorf("unexpected message %q", eval.Message)
	}
	if judge.polls.Load() != 0 {
		t.Errorf("expected no polls after dispatch failure, got %d", judge.polls.Load())
	}
}

func TestTransientPollErrorsAreRetried(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll, pollErrors: 2}
	cases := []models.TestCase{{Input: "x", Output: "y"}}
	eval, err := newEvaluator(judge, 3).Evaluate(context.Background(), "code", "javascript", cases)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Status != models.StatusSolved {
		t.Errorf("expected solved after retries, got %s: %s", eval.Status, eval.Message)
	}
}

func TestPollErrorsExhaustAttempts(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll, pollErrors: 10}
	cases := []models.TestCase{{Input: "x", Output: "y"}}
	eval, err := newEvaluator(judge, 3).Evaluate(context.Background(), "code", "javascript", cases)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Status != models.StatusError || judge.polls.Load() != 3 {
		t.Errorf("expected Error after 3 polls, got %s after %d", eval.Status, judge.polls.Load())
	}
}

func TestCancelledContextStopsPolling(t *testing.T) {
	judge := &fakeJudge{verdictFor: acceptAll, pendingPolls: 1000}
	e := &Evaluator{Judge: judge, PollInterval: time.Hour, MaxPollAttempts: 10}
	e.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	done := make(chan Evaluation)
	go func() {
		eval, _ := e.Evaluate(ctx, "code", "python", []models.TestCase{{Output: "1"}})
		done <- eval
	}()

	select {
	case eval := <-done:
		if eval.Status != models.StatusError {
			t.Errorf("expected Error on cancellation, got %s", eval.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation did not stop after cancellation")
	}
}
