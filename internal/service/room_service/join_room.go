package room_service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
	"golang.org/x/crypto/bcrypt"
)

func (r *RoomService) JoinRoom(ctx context.Context, req JoinRoomRequest) (RoomView, error) {
	// get claims
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return RoomView{}, err
	}
	if err = service.ValidateInput(req); err != nil {
		return RoomView{}, err
	}

	room, release, err := r.lockRoom(ctx, req.RoomID)
	if err != nil {
		return RoomView{}, err
	}
	defer release()

	if room.Status != models.RoomWaiting {
		log.Warnf("user %s tried to join room %v in state %s", claims.UserName, room.ID, room.Status)
		return RoomView{}, fmt.Errorf("%w, battle already %s", arena_errors.ErrRoomNotJoinable, room.Status)
	}
	if room.HasSecret() &&
		bcrypt.CompareHashAndPassword([]byte(room.SecretHash), []byte(req.Secret)) != nil {
		log.Warnf("user %s used a wrong secret for room %v", claims.UserName, room.ID)
		return RoomView{}, arena_errors.ErrWrongSecret
	}
	if room.HasParticipant(claims.UserId) {
		return RoomView{}, arena_errors.ErrAlreadyJoined
	}
	if room.IsFull() {
		return RoomView{}, fmt.Errorf("%w, capacity is %d", arena_errors.ErrRoomFull, room.MaxParticipants)
	}

	room, err = r.Rooms.AddParticipant(ctx, room.ID, claims.UserId)
	if err != nil {
		return RoomView{}, err
	}
	r.logger.Infof("user %s joined room %v", claims.UserName, room.ID)

	r.publishRoomUpdate(room)
	return newRoomView(room, claims.UserId), nil
}
