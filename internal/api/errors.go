package api

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// first match wins, so specific sentinels come before generic ones
var errorTable = []errorMapping{
	{arena_errors.ErrUnsupportedLanguage, http.StatusBadRequest, "unsupported_language"},
	{arena_errors.ErrMalformedTestCase, http.StatusBadRequest, "malformed_test_case"},
	{arena_errors.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{arena_errors.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{arena_errors.ErrNotFound, http.StatusNotFound, "not_found"},
	{arena_errors.ErrUnAuthorized, http.StatusUnauthorized, "unauthorized"},
	{arena_errors.ErrWrongSecret, http.StatusForbidden, "wrong_secret"},
	{arena_errors.ErrNotCreator, http.StatusForbidden, "not_creator"},
	{arena_errors.ErrNotParticipant, http.StatusForbidden, "not_participant"},
	{arena_errors.ErrRoomNotJoinable, http.StatusConflict, "room_not_joinable"},
	{arena_errors.ErrRoomFull, http.StatusConflict, "room_full"},
	{arena_errors.ErrAlreadyJoined, http.StatusConflict, "already_joined"},
	{arena_errors.ErrInsufficientParticipants, http.StatusConflict, "insufficient_participants"},
	{arena_errors.ErrBattleNotActive, http.StatusConflict, "battle_not_active"},
	{arena_errors.ErrAlreadyCompleted, http.StatusConflict, "already_completed"},
	{arena_errors.ErrProblemNotInBattle, http.StatusConflict, "problem_not_in_battle"},
	{arena_errors.ErrAlreadySolved, http.StatusConflict, "already_solved"},
	{arena_errors.ErrRoomStateChanged, http.StatusConflict, "room_state_changed"},
	{arena_errors.ErrLockNotAcquired, http.StatusServiceUnavailable, "busy"},
}

func handlerError(err error, w http.ResponseWriter) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			respondWithError(w, m.status, m.code, err.Error())
			return
		}
	}

	// internal details stay in the logs
	if !errors.Is(err, arena_errors.ErrInternal) {
		log.Errorf("unmapped error reached the api, %v", err)
	}
	respondWithError(w, http.StatusInternalServerError, "internal", arena_errors.ErrInternal.Error())
}
