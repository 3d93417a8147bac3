package api

import (
	"net/http"

	"github.com/tcp_snm/arena/internal/service/submission_service"
)

func (a *Api) HandlerSubmit(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		handlerError(err, w)
		return
	}

	var request submission_service.SubmissionRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	// judge failures come back as a stored submission with status Error
	response, err := a.SubmissionService.Submit(r.Context(), roomID, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, response)
}
