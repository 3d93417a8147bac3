package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const insertSubmission = `-- name: InsertSubmission :one
INSERT INTO submissions (
    id, room_id, user_id, problem_id, code, language, status, results, execution_time, submitted_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING id, room_id, user_id, problem_id, code, language, status, results, execution_time, submitted_at`

type InsertSubmissionParams struct {
	ID            uuid.UUID
	RoomID        uuid.UUID
	UserID        uuid.UUID
	ProblemID     uuid.UUID
	Code          string
	Language      string
	Status        string
	Results       []byte
	ExecutionTime float64
	SubmittedAt   time.Time
}

func (q *Queries) InsertSubmission(ctx context.Context, arg InsertSubmissionParams) (Submission, error) {
	row := q.db.QueryRow(ctx, insertSubmission,
		arg.ID,
		arg.RoomID,
		arg.UserID,
		arg.ProblemID,
		arg.Code,
		arg.Language,
		arg.Status,
		arg.Results,
		arg.ExecutionTime,
		arg.SubmittedAt,
	)
	var i Submission
	err := row.Scan(
		&i.ID,
		&i.RoomID,
		&i.UserID,
		&i.ProblemID,
		&i.Code,
		&i.Language,
		&i.Status,
		&i.Results,
		&i.ExecutionTime,
		&i.SubmittedAt,
	)
	return i, err
}

const getSubmissionsByRoom = `-- name: GetSubmissionsByRoom :many
SELECT id, room_id, user_id, problem_id, code, language, status, results, execution_time, submitted_at
FROM submissions
WHERE room_id = $1
ORDER BY submitted_at, id`

func (q *Queries) GetSubmissionsByRoom(ctx context.Context, roomID uuid.UUID) ([]Submission, error) {
	rows, err := q.db.Query(ctx, getSubmissionsByRoom, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Submission
	for rows.Next() {
		var i Submission
		if err := rows.Scan(
			&i.ID,
			&i.RoomID,
			&i.UserID,
			&i.ProblemID,
			&i.Code,
			&i.Language,
			&i.Status,
			&i.Results,
			&i.ExecutionTime,
			&i.SubmittedAt,
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

const hasSolvedSubmission = `-- name: HasSolvedSubmission :one
SELECT EXISTS (
    SELECT 1 FROM submissions
    WHERE room_id = $1 AND user_id = $2 AND problem_id = $3 AND status = 'Solved'
)`

type HasSolvedSubmissionParams struct {
	RoomID    uuid.UUID
	UserID    uuid.UUID
	ProblemID uuid.UUID
}

func (q *Queries) HasSolvedSubmission(ctx context.Context, arg HasSolvedSubmissionParams) (bool, error) {
	row := q.db.QueryRow(ctx, hasSolvedSubmission, arg.RoomID, arg.UserID, arg.ProblemID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const countSolvedProblems = `-- name: CountSolvedProblems :one
SELECT COUNT(DISTINCT problem_id)::INT
FROM submissions
WHERE room_id = $1 AND user_id = $2 AND status = 'Solved'`

func (q *Queries) CountSolvedProblems(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, countSolvedProblems, roomID, userID)
	var count int32
	err := row.Scan(&count)
	return count, err
}
