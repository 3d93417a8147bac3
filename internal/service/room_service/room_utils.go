package room_service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service/scoring_service"
)

func errorsIsNotFound(err error) bool {
	return errors.Is(err, arena_errors.ErrNotFound)
}

// lockRoom enters the room's critical section and loads the latest state.
// The returned release may be called more than once.
func (r *RoomService) lockRoom(ctx context.Context, roomID uuid.UUID) (models.Room, func(), error) {
	unlock, err := r.Locker.Lock(ctx, roomID)
	if err != nil {
		log.Error(err)
		return models.Room{}, nil, err
	}
	release := sync.OnceFunc(unlock)
	room, err := r.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		release()
		return models.Room{}, nil, err
	}
	return room, release, nil
}

// computeScoreboard ranks every participant of an active or completed room.
func (r *RoomService) computeScoreboard(ctx context.Context, room models.Room) ([]models.ScoreEntry, error) {
	if room.StartedAt == nil {
		err := fmt.Errorf("%w, room %v has no start time", arena_errors.ErrInternal, room.ID)
		log.Error(err)
		return nil, err
	}

	submissions, err := r.Submissions.GetSubmissionsByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	names, err := r.UserService.GetUserNames(ctx, room.Participants)
	if err != nil {
		return nil, err
	}
	problems, err := r.ProblemService.GetProblemsByIDs(ctx, room.Problems)
	if err != nil {
		return nil, err
	}

	participants := make([]scoring_service.Participant, 0, len(room.Participants))
	for _, id := range room.Participants {
		participants = append(participants, scoring_service.Participant{UserID: id, UserName: names[id]})
	}
	infos := make(map[uuid.UUID]scoring_service.ProblemInfo, len(problems))
	for _, p := range problems {
		infos[p.ID] = scoring_service.ProblemInfo{Title: p.Title, Difficulty: p.Difficulty}
	}

	return scoring_service.ComputeScoreboard(participants, submissions, infos, *room.StartedAt), nil
}

// publishRoomUpdate notifies the room and the lobby.
func (r *RoomService) publishRoomUpdate(room models.Room) {
	payload := events.RoomUpdated{RoomID: room.ID, Status: room.Status, Room: &room}
	r.Publisher.Publish(events.RoomTopic(room.ID), events.EventRoomUpdated, payload)
	r.Publisher.Publish(events.TopicGlobal, events.EventRoomUpdated, payload)
}
