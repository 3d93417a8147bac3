package user_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
)

func (u *UserService) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	users, err := u.Users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make(map[uuid.UUID]models.User, len(users))
	for _, user := range users {
		res[user.ID] = user
	}
	return res, nil
}

// GetUserNames resolves display names. Unknown users fall back to their id so
// that a scoreboard can always be rendered.
func (u *UserService) GetUserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	users, err := u.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if user, ok := users[id]; ok && user.UserName != "" {
			names[id] = user.UserName
			continue
		}
		u.logger.Warnf("no user name found for %v", id)
		names[id] = id.String()
	}
	return names, nil
}

// GetStats returns the caller's profile with the counters kept up to date at
// the end of every battle.
func (u *UserService) GetStats(ctx context.Context) (models.User, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return models.User{}, err
	}

	users, err := u.GetUsersByIDs(ctx, []uuid.UUID{claims.UserId})
	if err != nil {
		return models.User{}, err
	}
	user, ok := users[claims.UserId]
	if !ok {
		u.logger.Warnf("stats requested for unknown user %v", claims.UserId)
		return models.User{}, fmt.Errorf("%w, user with id %v", arena_errors.ErrNotFound, claims.UserId)
	}
	return user, nil
}
