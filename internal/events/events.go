package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/models"
)

// TopicGlobal addresses every connected client.
const TopicGlobal = ""

const (
	EventRoomCreated         = "roomCreated"
	EventRoomUpdated         = "roomUpdated"
	EventRoomDeleted         = "roomDeleted"
	EventBattleStarted       = "battleStarted"
	EventSubmissionUpdate    = "submissionUpdate"
	EventUserCompletedBattle = "userCompletedBattle"
	EventScoreboardUpdate    = "scoreboardUpdate"
	EventBattleCompleted     = "battleCompleted"
)

// Publisher fans an event out to the subscribers of a topic. A room topic is
// the room id, TopicGlobal reaches everyone. Publish must not block on slow
// subscribers.
type Publisher interface {
	Publish(topic string, event string, payload any)
}

func RoomTopic(roomID uuid.UUID) string {
	return roomID.String()
}

type RoomUpdated struct {
	RoomID uuid.UUID         `json:"room_id"`
	Status models.RoomStatus `json:"status"`
	Room   *models.Room      `json:"room,omitempty"`
}

type RoomDeleted struct {
	RoomID uuid.UUID `json:"room_id"`
}

type ProblemSummary struct {
	ID         uuid.UUID         `json:"problem_id"`
	Title      string            `json:"title"`
	Difficulty models.Difficulty `json:"difficulty"`
}

type BattleStarted struct {
	RoomID       uuid.UUID         `json:"room_id"`
	Status       models.RoomStatus `json:"status"`
	StartedAt    time.Time         `json:"started_at"`
	TimeLimit    int32             `json:"time_limit"`
	Problems     []ProblemSummary  `json:"problems"`
	Participants []uuid.UUID       `json:"participants"`
}

type SubmissionUpdate struct {
	UserID        uuid.UUID               `json:"user_id"`
	ProblemID     uuid.UUID               `json:"problem_id"`
	ProblemTitle  string                  `json:"problem_title"`
	SubmissionID  uuid.UUID               `json:"submission_id"`
	Status        models.SubmissionStatus `json:"status"`
	Message       string                  `json:"message"`
	Details       []models.TestResult     `json:"details"`
	ExecutionTime float64                 `json:"execution_time"`
}

type UserCompletedBattle struct {
	UserID         uuid.UUID `json:"user_id"`
	UserName       string    `json:"user_name"`
	SolvedCount    int       `json:"solved_count"`
	CompletionTime int64     `json:"completion_time"`
	Score          int       `json:"score"`
}

type ScoreboardUpdate struct {
	RoomID     uuid.UUID           `json:"room_id"`
	Scoreboard []models.ScoreEntry `json:"scoreboard"`
}

type BattleCompleted struct {
	RoomID       uuid.UUID           `json:"room_id"`
	Scoreboard   []models.ScoreEntry `json:"scoreboard"`
	FinalResults bool                `json:"final_results"`
}

// Recorded is an event captured by a Recorder.
type Recorded struct {
	Topic   string
	Event   string
	Payload any
}

// Recorder is a Publisher that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Publish(topic string, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, Event: event, Payload: payload})
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the recorded events with the given name, in publish order.
func (r *Recorder) Named(event string) []Recorded {
	out := make([]Recorded, 0)
	for _, e := range r.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// Fanout publishes to several publishers.
type Fanout []Publisher

func (f Fanout) Publish(topic string, event string, payload any) {
	for _, p := range f {
		p.Publish(topic, event, payload)
	}
}

// LogPublisher writes every event to the debug log.
type LogPublisher struct{}

func (LogPublisher) Publish(topic string, event string, _ any) {
	if topic == TopicGlobal {
		topic = "global"
	}
	logrus.WithFields(logrus.Fields{
		"from":  "events",
		"topic": topic,
	}).Debugf("published %s", event)
}
