package user_service

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

func (u *UserService) AuthorizeCreatorAccess(
	creatorId uuid.UUID,
	userId uuid.UUID,
	warnMessage string,
) error {
	if userId == creatorId {
		return nil
	}
	if warnMessage != "" {
		log.Warn(warnMessage)
	}
	return arena_errors.ErrNotCreator
}
