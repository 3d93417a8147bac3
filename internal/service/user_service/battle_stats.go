package user_service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/models"
)

// RecordBattleResults bumps the battle counters of every ranked participant.
// The first entry of the scoreboard is the winner. Failures are collected so
// one bad row does not stop the others.
func (u *UserService) RecordBattleResults(ctx context.Context, scoreboard []models.ScoreEntry) error {
	if len(scoreboard) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(scoreboard))
	for _, entry := range scoreboard {
		ids = append(ids, entry.UserID)
	}
	users, err := u.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var errs []error
	for rank, entry := range scoreboard {
		user, ok := users[entry.UserID]
		if !ok {
			u.logger.Warnf("skipping stats of unknown user %v", entry.UserID)
			continue
		}
		stats := nextStats(user.Stats, entry.Score, rank == 0)
		if err := u.Users.UpdateUserStats(ctx, entry.UserID, stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func nextStats(stats models.UserStats, score int, won bool) models.UserStats {
	total := stats.AverageScore * float64(stats.TotalBattles)
	stats.TotalBattles++
	stats.AverageScore = (total + float64(score)) / float64(stats.TotalBattles)
	if won {
		stats.TotalWins++
	}
	return stats
}
