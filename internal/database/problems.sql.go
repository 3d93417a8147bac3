package database

import (
	"context"

	"github.com/google/uuid"
)

const getProblemsByIDs = `-- name: GetProblemsByIDs :many
SELECT id, title, description, difficulty, test_cases, tags, created_at
FROM problems
WHERE id = ANY($1::UUID[])`

func (q *Queries) GetProblemsByIDs(ctx context.Context, ids []uuid.UUID) ([]Problem, error) {
	rows, err := q.db.Query(ctx, getProblemsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Problem
	for rows.Next() {
		var i Problem
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Description,
			&i.Difficulty,
			&i.TestCases,
			&i.Tags,
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
