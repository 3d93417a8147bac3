package room_service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/email"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/repository"
	"github.com/tcp_snm/arena/internal/service/lock_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/scheduler_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

const (
	defaultMaxParticipants = 2
	defaultTimeLimit       = 30 // minutes
	minParticipantsToStart = 2
	timerTaskName          = "battle timer"
	timerEndTimeout        = 30 * time.Second
	mailTimeout            = 2 * time.Second
)

type RoomService struct {
	Rooms          repository.RoomStore
	Submissions    repository.SubmissionStore
	ProblemService *problem_service.ProblemService
	UserService    *user_service.UserService
	Locker         lock_service.RoomLocker
	Scheduler      *scheduler_service.Scheduler
	Publisher      events.Publisher
	EmailService   *email.EmailService // optional
	logger         *logrus.Entry
}

type CreateRoomRequest struct {
	Name            string      `json:"name" validate:"required,min=3,max=50"`
	Secret          string      `json:"secret" validate:"max=20"`
	MaxParticipants int32       `json:"max_participants" validate:"omitempty,min=2,max=6"`
	TimeLimit       int32       `json:"time_limit" validate:"omitempty,min=15,max=120"`
	Problems        []uuid.UUID `json:"problems" validate:"required,min=1,unique"`
}

type JoinRoomRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
	Secret string    `json:"secret"`
}

type RoomRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
}

type LeaveRoomResponse struct {
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}

// RoomView is a room as seen by the requesting user.
type RoomView struct {
	models.Room
	Protected bool `json:"has_secret"`
	IsCreator bool `json:"is_creator"`
}

func newRoomView(room models.Room, userID uuid.UUID) RoomView {
	return RoomView{
		Room:      room,
		Protected: room.HasSecret(),
		IsCreator: room.CreatedBy == userID,
	}
}
