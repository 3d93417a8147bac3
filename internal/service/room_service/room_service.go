package room_service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service/scheduler_service"
)

func (r *RoomService) Start() {
	// validate fields
	for name, missing := range map[string]bool{
		"room store":       r.Rooms == nil,
		"submission store": r.Submissions == nil,
		"problem service":  r.ProblemService == nil,
		"user service":     r.UserService == nil,
		"room locker":      r.Locker == nil,
		"scheduler":        r.Scheduler == nil,
		"publisher":        r.Publisher == nil,
	} {
		if missing {
			panic(fmt.Sprintf("room service expects non-nil %v", name))
		}
	}

	r.logger = logrus.WithFields(logrus.Fields{
		"from": "room service",
	})
}

// RecoverTimers re-arms the battle timer of every active room, e.g. after a
// restart. Rooms past their deadline end right away.
func (r *RoomService) RecoverTimers(ctx context.Context) error {
	rooms, err := r.Rooms.ListRoomsByStatus(ctx, models.RoomActive)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		if err := r.armTimer(room); err != nil {
			return err
		}
	}
	r.logger.Infof("recovered timers of %d active rooms", len(rooms))
	return nil
}

func (r *RoomService) armTimer(room models.Room) error {
	roomID := room.ID
	return r.Scheduler.Schedule(scheduler_service.Task{
		Key:      roomID,
		Name:     timerTaskName,
		Deadline: room.Deadline(),
		Run: func() {
			ctx, cancel := context.WithTimeout(context.Background(), timerEndTimeout)
			defer cancel()
			if err := r.ForceEnd(ctx, roomID); err != nil {
				r.logger.Errorf("battle timer of room %v cannot end the battle, %v", roomID, err)
			}
		},
	})
}
