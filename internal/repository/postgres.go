package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/models"
)

var (
	errMsgs = map[string]map[string]string{
		arena_errors.CodeForeignKeyConstraint: {
			"rooms_created_by_fkey":       "room creator is not a registered user",
			"submissions_user_id_fkey":    "submitting user is not a registered user",
			"submissions_problem_id_fkey": "problem does not exist",
			"submissions_room_id_fkey":    "room does not exist",
		},
		arena_errors.CodeUniqueConstraint: {
			"rooms_pkey":       "room already exists",
			"submissions_pkey": "submission already exists",
		},
	}
)

// PgStore implements every store contract over sqlc style queries.
type PgStore struct {
	DB *database.Queries
}

func (p *PgStore) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	var secretHash *string
	if room.SecretHash != "" {
		secretHash = &room.SecretHash
	}
	dbRoom, err := p.DB.CreateRoom(ctx, database.CreateRoomParams{
		ID:               room.ID,
		Name:             room.Name,
		Slug:             room.Slug,
		SecretHash:       secretHash,
		CreatedBy:        room.CreatedBy,
		MaxParticipants:  room.MaxParticipants,
		TimeLimitMinutes: room.TimeLimit,
		Problems:         room.Problems,
	})
	if err != nil {
		return models.Room{}, arena_errors.HandleDBErrors(err, errMsgs, "cannot create room")
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) GetRoom(ctx context.Context, roomID uuid.UUID) (models.Room, error) {
	dbRoom, err := p.DB.GetRoomByID(ctx, roomID)
	if err != nil {
		return models.Room{}, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch room with id %v", roomID),
		)
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) ListRoomsByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error) {
	dbRooms, err := p.DB.GetRoomsByStatus(ctx, string(status))
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot list rooms with status %s", status),
		)
	}
	return dbRoomsToRooms(dbRooms)
}

func (p *PgStore) ListRoomsByParticipant(
	ctx context.Context,
	userID uuid.UUID,
	status models.RoomStatus,
) ([]models.Room, error) {
	dbRooms, err := p.DB.GetRoomsByParticipant(ctx, userID, string(status))
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot list %s rooms of user %v", status, userID),
		)
	}
	return dbRoomsToRooms(dbRooms)
}

func (p *PgStore) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (models.Room, error) {
	dbRoom, err := p.DB.AddRoomParticipant(ctx, roomID, userID)
	if err != nil {
		return models.Room{}, guardedUpdateError(err, fmt.Sprintf("cannot add user %v to room %v", userID, roomID))
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (models.Room, error) {
	dbRoom, err := p.DB.RemoveRoomParticipant(ctx, roomID, userID)
	if err != nil {
		return models.Room{}, guardedUpdateError(err, fmt.Sprintf("cannot remove user %v from room %v", userID, roomID))
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	n, err := p.DB.DeleteRoomByID(ctx, roomID)
	if err != nil {
		return arena_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot delete room %v", roomID))
	}
	if n == 0 {
		return fmt.Errorf("%w, room with id %v", arena_errors.ErrNotFound, roomID)
	}
	return nil
}

func (p *PgStore) StartRoom(ctx context.Context, roomID uuid.UUID, startedAt time.Time) (models.Room, error) {
	dbRoom, err := p.DB.StartRoom(ctx, roomID, startedAt)
	if err != nil {
		return models.Room{}, guardedUpdateError(err, fmt.Sprintf("cannot start room %v", roomID))
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) AddCompletedParticipant(ctx context.Context, roomID, userID uuid.UUID) (models.Room, error) {
	dbRoom, err := p.DB.AddCompletedParticipant(ctx, roomID, userID)
	if err != nil {
		return models.Room{}, guardedUpdateError(
			err,
			fmt.Sprintf("cannot mark user %v completed in room %v", userID, roomID),
		)
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) CompleteRoom(
	ctx context.Context,
	roomID uuid.UUID,
	endedAt time.Time,
	scoreboard []models.ScoreEntry,
) (models.Room, error) {
	// marshal
	raw, err := json.Marshal(scoreboard)
	if err != nil {
		err = fmt.Errorf("%w, cannot marshal scoreboard of room %v, %w", arena_errors.ErrInternal, roomID, err)
		log.Error(err)
		return models.Room{}, err
	}

	dbRoom, err := p.DB.CompleteRoom(ctx, database.CompleteRoomParams{
		ID:         roomID,
		EndedAt:    endedAt,
		Scoreboard: raw,
	})
	if err != nil {
		return models.Room{}, guardedUpdateError(err, fmt.Sprintf("cannot complete room %v", roomID))
	}
	return dbRoomToRoom(dbRoom)
}

func (p *PgStore) InsertSubmission(ctx context.Context, sub models.Submission) (models.Submission, error) {
	results, err := json.Marshal(sub.Results)
	if err != nil {
		err = fmt.Errorf("%w, cannot marshal results of submission %v, %w", arena_errors.ErrInternal, sub.ID, err)
		log.Error(err)
		return models.Submission{}, err
	}

	dbSub, err := p.DB.InsertSubmission(ctx, database.InsertSubmissionParams{
		ID:            sub.ID,
		RoomID:        sub.RoomID,
		UserID:        sub.UserID,
		ProblemID:     sub.ProblemID,
		Code:          sub.Code,
		Language:      sub.Language,
		Status:        string(sub.Status),
		Results:       results,
		ExecutionTime: sub.ExecutionTime,
		SubmittedAt:   sub.SubmittedAt,
	})
	if err != nil {
		return models.Submission{}, arena_errors.HandleDBErrors(err, errMsgs, "cannot insert submission")
	}
	return dbSubmissionToSubmission(dbSub)
}

func (p *PgStore) GetSubmissionsByRoom(ctx context.Context, roomID uuid.UUID) ([]models.Submission, error) {
	dbSubs, err := p.DB.GetSubmissionsByRoom(ctx, roomID)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch submissions of room %v", roomID),
		)
	}
	subs := make([]models.Submission, 0, len(dbSubs))
	for _, dbSub := range dbSubs {
		sub, err := dbSubmissionToSubmission(dbSub)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (p *PgStore) HasSolved(ctx context.Context, roomID, userID, problemID uuid.UUID) (bool, error) {
	solved, err := p.DB.HasSolvedSubmission(ctx, database.HasSolvedSubmissionParams{
		RoomID:    roomID,
		UserID:    userID,
		ProblemID: problemID,
	})
	if err != nil {
		return false, arena_errors.HandleDBErrors(err, errMsgs, "cannot check solved submissions")
	}
	return solved, nil
}

func (p *PgStore) CountSolvedProblems(ctx context.Context, roomID, userID uuid.UUID) (int, error) {
	count, err := p.DB.CountSolvedProblems(ctx, roomID, userID)
	if err != nil {
		return 0, arena_errors.HandleDBErrors(err, errMsgs, "cannot count solved problems")
	}
	return int(count), nil
}

func (p *PgStore) GetProblemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Problem, error) {
	dbProblems, err := p.DB.GetProblemsByIDs(ctx, ids)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(err, errMsgs, "cannot fetch problems")
	}
	problems := make([]models.Problem, 0, len(dbProblems))
	for _, dbProblem := range dbProblems {
		var testCases []models.TestCase
		if err := json.Unmarshal(dbProblem.TestCases, &testCases); err != nil {
			err = fmt.Errorf(
				"%w, cannot unmarshal test cases of problem %v, %w",
				arena_errors.ErrInternal,
				dbProblem.ID,
				err,
			)
			log.Error(err)
			return nil, err
		}
		problems = append(problems, models.Problem{
			ID:          dbProblem.ID,
			Title:       dbProblem.Title,
			Description: dbProblem.Description,
			Difficulty:  models.Difficulty(dbProblem.Difficulty),
			TestCases:   testCases,
			Tags:        dbProblem.Tags,
		})
	}
	return problems, nil
}

func (p *PgStore) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	dbUsers, err := p.DB.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(err, errMsgs, "cannot fetch users")
	}
	users := make([]models.User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		users = append(users, models.User{
			ID:       dbUser.ID,
			UserName: dbUser.UserName,
			Email:    dbUser.Email,
			Stats: models.UserStats{
				TotalBattles: dbUser.TotalBattles,
				TotalWins:    dbUser.TotalWins,
				AverageScore: dbUser.AverageScore,
			},
		})
	}
	return users, nil
}

func (p *PgStore) UpdateUserStats(ctx context.Context, userID uuid.UUID, stats models.UserStats) error {
	err := p.DB.UpdateUserStats(ctx, database.UpdateUserStatsParams{
		ID:           userID,
		TotalBattles: stats.TotalBattles,
		TotalWins:    stats.TotalWins,
		AverageScore: stats.AverageScore,
	})
	if err != nil {
		return arena_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot update stats of user %v", userID))
	}
	return nil
}

// a guarded UPDATE ... RETURNING yields no rows when its WHERE clause rejects the row
func guardedUpdateError(err error, contextMessage string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w, %s", arena_errors.ErrRoomStateChanged, contextMessage)
		log.Warn(err)
		return err
	}
	return arena_errors.HandleDBErrors(err, errMsgs, contextMessage)
}

func dbRoomToRoom(dbRoom database.Room) (models.Room, error) {
	room := models.Room{
		ID:                    dbRoom.ID,
		Name:                  dbRoom.Name,
		Slug:                  dbRoom.Slug,
		CreatedBy:             dbRoom.CreatedBy,
		MaxParticipants:       dbRoom.MaxParticipants,
		TimeLimit:             dbRoom.TimeLimitMinutes,
		Status:                models.RoomStatus(dbRoom.Status),
		Problems:              dbRoom.Problems,
		Participants:          dbRoom.Participants,
		CompletedParticipants: dbRoom.CompletedParticipants,
		CreatedAt:             dbRoom.CreatedAt,
		StartedAt:             dbRoom.StartedAt,
		EndedAt:               dbRoom.EndedAt,
	}
	if dbRoom.SecretHash != nil {
		room.SecretHash = *dbRoom.SecretHash
	}
	if len(dbRoom.Scoreboard) > 0 {
		if err := json.Unmarshal(dbRoom.Scoreboard, &room.Scoreboard); err != nil {
			err = fmt.Errorf(
				"%w, cannot unmarshal scoreboard of room %v, %w",
				arena_errors.ErrInternal,
				dbRoom.ID,
				err,
			)
			log.Error(err)
			return models.Room{}, err
		}
	}
	return room, nil
}

func dbRoomsToRooms(dbRooms []database.Room) ([]models.Room, error) {
	rooms := make([]models.Room, 0, len(dbRooms))
	for _, dbRoom := range dbRooms {
		room, err := dbRoomToRoom(dbRoom)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func dbSubmissionToSubmission(dbSub database.Submission) (models.Submission, error) {
	sub := models.Submission{
		ID:            dbSub.ID,
		RoomID:        dbSub.RoomID,
		UserID:        dbSub.UserID,
		ProblemID:     dbSub.ProblemID,
		Code:          dbSub.Code,
		Language:      dbSub.Language,
		Status:        models.SubmissionStatus(dbSub.Status),
		ExecutionTime: dbSub.ExecutionTime,
		SubmittedAt:   dbSub.SubmittedAt,
	}
	if err := json.Unmarshal(dbSub.Results, &sub.Results); err != nil {
		err = fmt.Errorf(
			"%w, cannot unmarshal results of submission %v, %w",
			arena_errors.ErrInternal,
			dbSub.ID,
			err,
		)
		log.Error(err)
		return models.Submission{}, err
	}
	return sub, nil
}
