package room_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
)

func (r *RoomService) StartRoom(ctx context.Context, roomID uuid.UUID) (RoomView, error) {
	// get claims
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
		fmt.Sprintf("user %s tried to start room %v", claims.UserName, room.ID),
	)
	if err != nil {
		return RoomView{}, err
	}

	if room.Status != models.RoomWaiting {
		log.Warnf("user %s tried to start room %v in state %s", claims.UserName, room.ID, room.Status)
		return RoomView{}, fmt.Errorf("%w, battle already %s", arena_errors.ErrRoomNotJoinable, room.Status)
	}
	if len(room.Participants) < minParticipantsToStart {
		return RoomView{}, arena_errors.ErrInsufficientParticipants
	}

	// problem metadata for the start event
	problems, err := r.ProblemService.GetProblemsByIDs(ctx, room.Problems)
	if err != nil {
		return RoomView{}, err
	}

	room, err = r.Rooms.StartRoom(ctx, room.ID, time.Now())
	if err != nil {
		return RoomView{}, err
	}
	if err = r.armTimer(room); err != nil {
		// the battle is live already, it can still end naturally or by hand
		r.logger.Errorf("cannot arm battle timer of room %v, %v", room.ID, err)
	}
	r.logger.Infof("room %v started by %s, ends at %v", room.ID, claims.UserName, room.Deadline())

	summaries := make([]events.ProblemSummary, 0, len(problems))
	for _, p := range problems {
		summaries = append(summaries, events.ProblemSummary{ID: p.ID, Title: p.Title, Difficulty: p.Difficulty})
	}
	r.Publisher.Publish(events.RoomTopic(room.ID), events.EventBattleStarted, events.BattleStarted{
		RoomID:       room.ID,
		Status:       room.Status,
		StartedAt:    *room.StartedAt,
		TimeLimit:    room.TimeLimit,
		Problems:     summaries,
		Participants: room.Participants,
	})
	r.Publisher.Publish(events.TopicGlobal, events.EventRoomUpdated, events.RoomUpdated{
		RoomID: room.ID,
		Status: room.Status,
	})

	return newRoomView(room, claims.UserId), nil
}
