package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

const maxBodyBytes = 1 << 20

func decodeJsonBody(body io.ReadCloser, v any) error {
	defer body.Close()
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondWithJson(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

// respondWithValue marshals v and writes it with the status.
func respondWithValue(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal %v, %v", v, err)
		respondWithError(w, http.StatusInternalServerError, "internal", arena_errors.ErrInternal.Error())
		return
	}
	respondWithJson(w, status, bytes)
}

func respondWithError(w http.ResponseWriter, status int, code string, msg string) {
	bytes, _ := json.Marshal(errorResponse{Error: msg, Code: code})
	respondWithJson(w, status, bytes)
}

func badPayload(w http.ResponseWriter, err error) {
	msg := fmt.Sprintf("invalid request payload, %s", err.Error())
	respondWithError(w, http.StatusBadRequest, "invalid_request", msg)
}

func roomIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "room_id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w, invalid room_id provided", arena_errors.ErrInvalidRequest)
	}
	return id, nil
}
