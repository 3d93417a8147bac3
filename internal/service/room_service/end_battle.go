package room_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
)

// EndRoom is the creator's explicit termination of a battle.
func (r *RoomService) EndRoom(ctx context.Context, roomID uuid.UUID) (RoomView, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return RoomView{}, err
	}

	room, release, err := r.lockRoom(ctx, roomID)
	if err != nil {
		return RoomView{}, err
	}
	defer release()

	// authorize
	err = r.UserService.AuthorizeCreatorAccess(
		room.CreatedBy,
		claims.UserId,
		fmt.Sprintf("user %s tried to end room %v", claims.UserName, room.ID),
	)
	if err != nil {
		return RoomView{}, err
	}

	room, err = r.endAndRelease(ctx, room, release)
	if err != nil {
		return RoomView{}, err
	}
	return newRoomView(room, claims.UserId), nil
}

// ForceEnd ends the battle regardless of progress. It is what the battle
// timer calls. Ending a completed or deleted room does nothing.
func (r *RoomService) ForceEnd(ctx context.Context, roomID uuid.UUID) error {
	room, release, err := r.lockRoom(ctx, roomID)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil
		}
		return err
	}
	defer release()

	_, err = r.endAndRelease(ctx, room, release)
	return err
}

// endAndRelease ends the battle, leaves the critical section and then runs
// the post battle bookkeeping if this call was the one that ended it.
func (r *RoomService) endAndRelease(ctx context.Context, room models.Room, release func()) (models.Room, error) {
	room, ended, err := r.endLocked(ctx, room)
	if err != nil {
		return models.Room{}, err
	}
	release()
	if ended {
		r.afterBattle(ctx, room)
	}
	return room, nil
}

// endLocked moves an active room to completed and announces the final
// scoreboard. The caller must hold the room's critical section. A room that
// is already completed is returned as is without any event. The flag reports
// whether this call completed the room; the caller then runs afterBattle
// once it has left the critical section.
func (r *RoomService) endLocked(ctx context.Context, room models.Room) (models.Room, bool, error) {
	switch room.Status {
	case models.RoomCompleted:
		r.logger.Debugf("room %v already completed", room.ID)
		return room, false, nil
	case models.RoomWaiting:
		return models.Room{}, false, fmt.Errorf("%w, battle has not started", arena_errors.ErrBattleNotActive)
	}

	scoreboard, err := r.computeScoreboard(ctx, room)
	if err != nil {
		return models.Room{}, false, err
	}

	completed, err := r.Rooms.CompleteRoom(ctx, room.ID, time.Now(), scoreboard)
	if err != nil {
		if errors.Is(err, arena_errors.ErrRoomStateChanged) {
			// ended elsewhere between our read and write
			current, err := r.Rooms.GetRoom(ctx, room.ID)
			return current, false, err
		}
		return models.Room{}, false, err
	}
	r.Scheduler.Cancel(room.ID)
	r.logger.Infof("battle in room %v completed", room.ID)

	r.Publisher.Publish(events.RoomTopic(room.ID), events.EventBattleCompleted, events.BattleCompleted{
		RoomID:       room.ID,
		Scoreboard:   scoreboard,
		FinalResults: true,
	})
	r.Publisher.Publish(events.TopicGlobal, events.EventRoomUpdated, events.RoomUpdated{
		RoomID: room.ID,
		Status: completed.Status,
	})

	return completed, true, nil
}

// afterBattle is best effort bookkeeping that must not undo a finished battle.
// It runs outside the room's critical section.
func (r *RoomService) afterBattle(ctx context.Context, room models.Room) {
	if err := r.UserService.RecordBattleResults(ctx, room.Scoreboard); err != nil {
		r.logger.Errorf("cannot record battle stats of room %v, %v", room.ID, err)
	}

	if r.EmailService == nil || !r.EmailService.Enabled() {
		return
	}
	users, err := r.UserService.GetUsersByIDs(ctx, room.Participants)
	if err != nil {
		r.logger.Errorf("cannot fetch participants of room %v for result mails, %v", room.ID, err)
		return
	}
	recipients := make([]string, 0, len(users))
	for _, user := range users {
		if user.Email != "" {
			recipients = append(recipients, user.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := r.EmailService.SendBattleResults(mailCtx, room.Name, room.Scoreboard, recipients); err != nil {
		r.logger.Errorf("cannot queue result mails of room %v, %v", room.ID, err)
	}
}
