package api

import "net/http"

func (a *Api) HandlerGetBattleHistory(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.RoomService.GetBattleHistory(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, rooms)
}

func (a *Api) HandlerGetUserStats(w http.ResponseWriter, r *http.Request) {
	user, err := a.UserService.GetStats(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, user)
}
