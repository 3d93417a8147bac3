package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
	"gopkg.in/gomail.v2"
)

func TestBattleResultsAreMailed(t *testing.T) {
	var mu sync.Mutex
	var sent []*gomail.Message
	svc := &EmailService{
		Sender:  "arena@example.com",
		Workers: 2,
		Send: func(m *gomail.Message) error {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, m)
			return nil
		},
	}
	svc.Start()

	err := svc.SendBattleResults(context.Background(), "friday duel", []models.ScoreEntry{
		{UserID: uuid.New(), UserName: "alice", SolvedProblems: 2, Score: 30, TimeTaken: 300},
		{UserID: uuid.New(), UserName: "bob", SolvedProblems: 1, Score: 9, TimeTaken: 90},
	}, []string{"alice@example.com", "bob@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	svc.Stop()

	if len(sent) != 2 {
		t.Fatalf("expected one mail per recipient, got %d", len(sent))
	}
	seen := make(map[string]bool)
	for _, m := range sent {
		to := m.GetHeader(KeyEmailTo)
		if len(to) != 1 {
			t.Errorf("recipients leaked, %v", to)
			continue
		}
		seen[to[0]] = true
		if subject := m.GetHeader(KeyEmailSubject); len(subject) != 1 || !strings.Contains(subject[0], "friday duel") {
			t.Errorf("unexpected subject %v", subject)
		}
	}
	if !seen["alice@example.com"] || !seen["bob@example.com"] {
		t.Errorf("unexpected recipients %v", seen)
	}
}

func TestDisabledWithoutSender(t *testing.T) {
	svc := &EmailService{}
	svc.Start()
	if svc.Enabled() {
		t.Fatal("service should be disabled")
	}
	err := svc.NewMail(context.Background(), EmailRequest{To: []string{"x@example.com"}})
	if !errors.Is(err, arena_errors.ErrEmailServiceStopped) {
		t.Errorf("expected ErrEmailServiceStopped, got %v", err)
	}
}

func TestBodyListsStandingsInOrder(t *testing.T) {
	body := battleResultsBody("duel", []models.ScoreEntry{
		{UserName: "alice", SolvedProblems: 1, Score: 10, TimeTaken: 30},
		{UserName: "bob", SolvedProblems: 1, Score: 9, TimeTaken: 90},
	})
	if strings.Index(body, "1. alice") > strings.Index(body, "2. bob") {
		t.Errorf("standings out of order:\n%s", body)
	}
}
