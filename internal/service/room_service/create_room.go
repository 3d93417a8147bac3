package room_service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
	"golang.org/x/crypto/bcrypt"
)

func (r *RoomService) CreateRoom(
	ctx context.Context,
	req CreateRoomRequest,
) (RoomView, error) {
	// get claims
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return RoomView{}, err
	}

	// validate
	req.Name = strings.TrimSpace(req.Name)
	if req.MaxParticipants == 0 {
		req.MaxParticipants = defaultMaxParticipants
	}
	if req.TimeLimit == 0 {
		req.TimeLimit = defaultTimeLimit
	}
	if err = service.ValidateInput(req); err != nil {
		return RoomView{}, err
	}

	// every problem must exist
	if _, err = r.ProblemService.GetProblemsByIDs(ctx, req.Problems); err != nil {
		if errorsIsNotFound(err) {
			return RoomView{}, fmt.Errorf("%w, one or more problems not found", arena_errors.ErrInvalidRequest)
		}
		return RoomView{}, err
	}

	// hash the secret
	var secretHash string
	if req.Secret != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
		if err != nil {
			err = fmt.Errorf("%w, cannot hash room secret, %w", arena_errors.ErrInternal, err)
			log.Error(err)
			return RoomView{}, err
		}
		secretHash = string(hash)
	}

	roomID := uuid.New()
	room, err := r.Rooms.CreateRoom(ctx, models.Room{
		ID:              roomID,
		Name:            req.Name,
		Slug:            roomSlug(req.Name, roomID),
		SecretHash:      secretHash,
		CreatedBy:       claims.UserId,
		MaxParticipants: req.MaxParticipants,
		TimeLimit:       req.TimeLimit,
		Problems:        req.Problems,
	})
	if err != nil {
		return RoomView{}, err
	}
	r.logger.Infof("user %s created room %v", claims.UserName, room.ID)

	// lobby
	r.Publisher.Publish(events.TopicGlobal, events.EventRoomCreated, newRoomView(room, uuid.Nil))
	return newRoomView(room, claims.UserId), nil
}

// slugs are not unique by name alone
func roomSlug(name string, id uuid.UUID) string {
	return fmt.Sprintf("%s-%s", slug.Make(name), id.String()[:8])
}
