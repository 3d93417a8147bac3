package database

import (
	"context"

	"github.com/google/uuid"
)

const getUsersByIDs = `-- name: GetUsersByIDs :many
SELECT id, user_name, email, total_battles, total_wins, average_score, created_at
FROM users
WHERE id = ANY($1::UUID[])`

func (q *Queries) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx, getUsersByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.UserName,
			&i.Email,
			&i.TotalBattles,
			&i.TotalWins,
			&i.AverageScore,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUserStats = `-- name: UpdateUserStats :exec
UPDATE users
SET total_battles = $2, total_wins = $3, average_score = $4
WHERE id = $1`

type UpdateUserStatsParams struct {
	ID           uuid.UUID
	TotalBattles int32
	TotalWins    int32
	AverageScore float64
}

func (q *Queries) UpdateUserStats(ctx context.Context, arg UpdateUserStatsParams) error {
	_, err := q.db.Exec(ctx, updateUserStats,
		arg.ID,
		arg.TotalBattles,
		arg.TotalWins,
		arg.AverageScore,
	)
	return err
}
