package room_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
)

// LeaveRoom removes the user from a waiting room. When the creator leaves the
// room is deleted. Leaving a room that does not exist, or one the user is not
// part of, is a no-op.
func (r *RoomService) LeaveRoom(ctx context.Context, roomID uuid.UUID) (LeaveRoomResponse, error) {
	// get claims
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	room, release, err := r.lockRoom(ctx, roomID)
	if err != nil {
		if errorsIsNotFound(err) {
			return LeaveRoomResponse{Message: "room no longer exists"}, nil
		}
		return LeaveRoomResponse{}, err
	}
	defer release()

	if !room.HasParticipant(claims.UserId) {
		return LeaveRoomResponse{Message: "user is not in the room"}, nil
	}
	if room.Status != models.RoomWaiting {
		log.Warnf("user %s tried to leave room %v in state %s", claims.UserName, room.ID, room.Status)
		return LeaveRoomResponse{}, fmt.Errorf(
			"%w, cannot leave once the battle has started",
			arena_errors.ErrRoomNotJoinable,
		)
	}

	// the room cannot continue without its owner
	if room.CreatedBy == claims.UserId {
		if err = r.Rooms.DeleteRoom(ctx, room.ID); err != nil {
			return LeaveRoomResponse{}, err
		}
		r.Scheduler.Cancel(room.ID)
		r.logger.Infof("creator %s left, room %v deleted", claims.UserName, room.ID)

		payload := events.RoomDeleted{RoomID: room.ID}
		r.Publisher.Publish(events.RoomTopic(room.ID), events.EventRoomDeleted, payload)
		r.Publisher.Publish(events.TopicGlobal, events.EventRoomDeleted, payload)
		return LeaveRoomResponse{Message: "room deleted", Deleted: true}, nil
	}

	room, err = r.Rooms.RemoveParticipant(ctx, room.ID, claims.UserId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}
	r.logger.Infof("user %s left room %v", claims.UserName, room.ID)

	r.publishRoomUpdate(room)
	return LeaveRoomResponse{Message: "left room"}, nil
}
