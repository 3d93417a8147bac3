package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roomColumns = `id, name, slug, secret_hash, created_by, max_participants, time_limit_minutes, status,
problems, participants, completed_participants, scoreboard, created_at, started_at, ended_at`

func scanRoom(row interface{ Scan(dest ...any) error }) (Room, error) {
	var i Room
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.SecretHash,
		&i.CreatedBy,
		&i.MaxParticipants,
		&i.TimeLimitMinutes,
		&i.Status,
		&i.Problems,
		&i.Participants,
		&i.CompletedParticipants,
		&i.Scoreboard,
		&i.CreatedAt,
		&i.StartedAt,
		&i.EndedAt,
	)
	return i, err
}

const createRoom = `-- name: CreateRoom :one
INSERT INTO rooms (
    id, name, slug, secret_hash, created_by, max_participants, time_limit_minutes,
    status, problems, participants
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, 'waiting', $8, ARRAY[$5]::UUID[]
)
RETURNING ` + roomColumns

type CreateRoomParams struct {
	ID               uuid.UUID
	Name             string
	Slug             string
	SecretHash       *string
	CreatedBy        uuid.UUID
	MaxParticipants  int32
	TimeLimitMinutes int32
	Problems         []uuid.UUID
}

func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, createRoom,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.SecretHash,
		arg.CreatedBy,
		arg.MaxParticipants,
		arg.TimeLimitMinutes,
		arg.Problems,
	)
	return scanRoom(row)
}

const getRoomByID = `-- name: GetRoomByID :one
SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

func (q *Queries) GetRoomByID(ctx context.Context, id uuid.UUID) (Room, error) {
	row := q.db.QueryRow(ctx, getRoomByID, id)
	return scanRoom(row)
}

const getRoomsByStatus = `-- name: GetRoomsByStatus :many
SELECT ` + roomColumns + ` FROM rooms WHERE status = $1 ORDER BY created_at DESC`

func (q *Queries) GetRoomsByStatus(ctx context.Context, status string) ([]Room, error) {
	rows, err := q.db.Query(ctx, getRoomsByStatus, status)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

const getRoomsByParticipant = `-- name: GetRoomsByParticipant :many
SELECT ` + roomColumns + ` FROM rooms
WHERE $1 = ANY(participants) AND status = $2
ORDER BY ended_at DESC NULLS LAST, created_at DESC`

func (q *Queries) GetRoomsByParticipant(ctx context.Context, userID uuid.UUID, status string) ([]Room, error) {
	rows, err := q.db.Query(ctx, getRoomsByParticipant, userID, status)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

func scanRooms(rows pgx.Rows) ([]Room, error) {
	defer rows.Close()
	var items []Room
	for rows.Next() {
		i, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const addRoomParticipant = `-- name: AddRoomParticipant :one
UPDATE rooms
SET participants = array_append(participants, $2)
WHERE id = $1
    AND status = 'waiting'
    AND cardinality(participants) < max_participants
    AND NOT ($2 = ANY(participants))
RETURNING ` + roomColumns

func (q *Queries) AddRoomParticipant(ctx context.Context, id uuid.UUID, userID uuid.UUID) (Room, error) {
	row := q.db.QueryRow(ctx, addRoomParticipant, id, userID)
	return scanRoom(row)
}

const removeRoomParticipant = `-- name: RemoveRoomParticipant :one
UPDATE rooms
SET participants = array_remove(participants, $2)
WHERE id = $1 AND status = 'waiting' AND created_by <> $2
RETURNING ` + roomColumns

func (q *Queries) RemoveRoomParticipant(ctx context.Context, id uuid.UUID, userID uuid.UUID) (Room, error) {
	row := q.db.QueryRow(ctx, removeRoomParticipant, id, userID)
	return scanRoom(row)
}

const startRoom = `-- name: StartRoom :one
UPDATE rooms
SET status = 'active', started_at = $2
WHERE id = $1 AND status = 'waiting'
RETURNING ` + roomColumns

func (q *Queries) StartRoom(ctx context.Context, id uuid.UUID, startedAt time.Time) (Room, error) {
	row := q.db.QueryRow(ctx, startRoom, id, startedAt)
	return scanRoom(row)
}

const addCompletedParticipant = `-- name: AddCompletedParticipant :one
UPDATE rooms
SET completed_participants = array_append(completed_participants, $2)
WHERE id = $1
    AND status = 'active'
    AND $2 = ANY(participants)
    AND NOT ($2 = ANY(completed_participants))
RETURNING ` + roomColumns

func (q *Queries) AddCompletedParticipant(ctx context.Context, id uuid.UUID, userID uuid.UUID) (Room, error) {
	row := q.db.QueryRow(ctx, addCompletedParticipant, id, userID)
	return scanRoom(row)
}

const completeRoom = `-- name: CompleteRoom :one
UPDATE rooms
SET status = 'completed', ended_at = $2, scoreboard = $3
WHERE id = $1 AND status = 'active'
RETURNING ` + roomColumns

type CompleteRoomParams struct {
	ID         uuid.UUID
	EndedAt    time.Time
	Scoreboard []byte
}

func (q *Queries) CompleteRoom(ctx context.Context, arg CompleteRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, completeRoom, arg.ID, arg.EndedAt, arg.Scoreboard)
	return scanRoom(row)
}

const deleteRoomByID = `-- name: DeleteRoomByID :execrows
DELETE FROM rooms WHERE id = $1`

func (q *Queries) DeleteRoomByID(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteRoomByID, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
