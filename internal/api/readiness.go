package api

import (
	"net/http"

	"github.com/tcp_snm/arena/internal/service/judge_service"
)

func (a *Api) HandlerReadiness(w http.ResponseWriter, r *http.Request) {
	respondWithJson(w, http.StatusOK, []byte(`{"status":"ok"}`))
}

func (a *Api) HandlerGetLanguages(w http.ResponseWriter, r *http.Request) {
	respondWithValue(w, http.StatusOK, languagesResponse{Languages: judge_service.SupportedLanguages()})
}
