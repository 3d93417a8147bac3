package arena_errors

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	CodeUniqueConstraint     = "23505"
	CodeForeignKeyConstraint = "23503"
)

// generic
var (
	ErrInternal       = errors.New("internal service error. please try again later")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnAuthorized   = errors.New("user not allowed to perform this action")
	ErrNotFound       = errors.New("entity not found")
	ErrComponentStart = errors.New("cannot start component")
)

// room state conflicts
var (
	ErrRoomNotJoinable          = errors.New("room is not accepting participants")
	ErrRoomFull                 = errors.New("room is full")
	ErrWrongSecret              = errors.New("incorrect room secret")
	ErrAlreadyJoined            = errors.New("user already joined the room")
	ErrNotCreator               = errors.New("only the room creator can perform this action")
	ErrNotParticipant           = errors.New("user is not a participant of the room")
	ErrInsufficientParticipants = errors.New("at least 2 participants are needed to start a battle")
	ErrBattleNotActive          = errors.New("battle is not active")
	ErrAlreadyCompleted         = errors.New("user already completed the battle")
	ErrProblemNotInBattle       = errors.New("problem is not part of this battle")
	ErrAlreadySolved            = errors.New("problem already solved by user")
	ErrRoomStateChanged         = errors.New("room state changed concurrently")
)

// judge
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrMalformedTestCase   = errors.New("malformed test cases")
	ErrJudgeDispatchFailed = errors.New("failed to dispatch code to judge")
	ErrJudgePollFailed     = errors.New("failed to fetch verdict from judge")
	ErrJudgeTimeout        = errors.New("judge did not finish evaluation in time")
)

// locks and mail
var (
	ErrLockNotAcquired     = errors.New("cannot acquire room lock")
	ErrEmailServiceStopped = errors.New("email service is stopped currently")
)

func HandleDBErrors(
	err error,
	errMsgs map[string]map[string]string,
	contextMessage string,
) error {
	if errors.Is(err, pgx.ErrNoRows) {
		log.Error(fmt.Sprintf("%s, %v", contextMessage, ErrNotFound))
		return fmt.Errorf("%w, %s", ErrNotFound, contextMessage)
	}

	// check if its a pg error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		err = fmt.Errorf("%w, %s, %w", ErrInternal, contextMessage, err)
		log.Error(err)
		return err
	}

	switch pgErr.Code {
	case CodeForeignKeyConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeForeignKeyConstraint])
	case CodeUniqueConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeUniqueConstraint])
	}

	// unknown error
	err = fmt.Errorf("%w, %s, %w", ErrInternal, contextMessage, err)
	log.Error(err)
	return err
}

func handleConstraintError(pgErr *pgconn.PgError, msgs map[string]string) error {
	msg, ok := msgs[pgErr.ConstraintName]
	if !ok {
		log.Warnf(
			"no message registered for constraint %s (code %s)",
			pgErr.ConstraintName,
			pgErr.Code,
		)
		msg = pgErr.Detail
	}
	err := fmt.Errorf("%w, %s", ErrInvalidRequest, msg)
	log.Error(err)
	return err
}

// handles inter process communication errors
func WrapIPCError(err error) error {
	var opError *net.OpError
	if errors.As(err, &opError) {
		return fmt.Errorf(
			"%w, \"%s\" error occurred during \"%s\" operation, network: %s, dest: %s",
			ErrInternal,
			opError.Error(),
			opError.Op,
			opError.Net,
			opError.Addr,
		)
	}

	// unknown error
	return fmt.Errorf("%w, %w", ErrInternal, err)
}
