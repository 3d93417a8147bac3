package room_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
)

func (r *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (RoomView, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return RoomView{}, err
	}

	room, err := r.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return RoomView{}, err
	}
	return newRoomView(room, claims.UserId), nil
}

// ListAvailableRooms lists rooms still accepting participants, newest first.
func (r *RoomService) ListAvailableRooms(ctx context.Context) ([]RoomView, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rooms, err := r.Rooms.ListRoomsByStatus(ctx, models.RoomWaiting)
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, newRoomView(room, claims.UserId))
	}
	return views, nil
}

// CanSubmit checks that userID may submit problemID to the room right now
// and returns the room.
func (r *RoomService) CanSubmit(
	ctx context.Context,
	roomID uuid.UUID,
	userID uuid.UUID,
	problemID uuid.UUID,
) (models.Room, error) {
	room, err := r.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return models.Room{}, err
	}

	// battle must be ongoing
	if room.Status != models.RoomActive {
		log.Warnf("user %v tried to submit to room %v in state %s", userID, roomID, room.Status)
		return models.Room{}, fmt.Errorf("%w, battle is %s", arena_errors.ErrBattleNotActive, room.Status)
	}
	if time.Now().After(room.Deadline()) {
		return models.Room{}, fmt.Errorf("%w, time is up", arena_errors.ErrBattleNotActive)
	}

	if !room.HasParticipant(userID) {
		log.Warnf("user %v tried to submit to room %v without joining", userID, roomID)
		return models.Room{}, arena_errors.ErrNotParticipant
	}
	if room.HasCompleted(userID) {
		return models.Room{}, arena_errors.ErrAlreadyCompleted
	}
	if !room.HasProblem(problemID) {
		log.Warnf("user %v tried to submit problem %v that is not in room %v", userID, problemID, roomID)
		return models.Room{}, arena_errors.ErrProblemNotInBattle
	}

	return room, nil
}

// GetBattleHistory lists the finished battles of the caller with their final
// scoreboards, latest first.
func (r *RoomService) GetBattleHistory(ctx context.Context) ([]RoomView, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rooms, err := r.Rooms.ListRoomsByParticipant(ctx, claims.UserId, models.RoomCompleted)
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, newRoomView(room, claims.UserId))
	}
	return views, nil
}
