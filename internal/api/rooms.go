package api

import (
	"net/http"

	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/room_service"
)

func (a *Api) HandlerCreateRoom(w http.ResponseWriter, r *http.Request) {
	var request room_service.CreateRoomRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	room, err := a.RoomService.CreateRoom(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusCreated, room)
}

func (a *Api) HandlerGetAvailableRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.RoomService.ListAvailableRooms(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, rooms)
}

func (a *Api) HandlerGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		handlerError(err, w)
		return
	}

	room, err := a.RoomService.GetRoom(r.Context(), roomID)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, room)
}

func (a *Api) HandlerJoinRoom(w http.ResponseWriter, r *http.Request) {
	var request room_service.JoinRoomRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return
	}

	room, err := a.RoomService.JoinRoom(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, room)
}

func (a *Api) HandlerLeaveRoom(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeRoomRequest(w, r)
	if !ok {
		return
	}

	response, err := a.RoomService.LeaveRoom(r.Context(), request.RoomID)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, response)
}

func (a *Api) HandlerStartRoom(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeRoomRequest(w, r)
	if !ok {
		return
	}

	room, err := a.RoomService.StartRoom(r.Context(), request.RoomID)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, room)
}

func (a *Api) HandlerEndRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDParam(r)
	if err != nil {
		handlerError(err, w)
		return
	}

	room, err := a.RoomService.EndRoom(r.Context(), roomID)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, room)
}

func decodeRoomRequest(w http.ResponseWriter, r *http.Request) (room_service.RoomRequest, bool) {
	var request room_service.RoomRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		badPayload(w, err)
		return request, false
	}
	if err := service.ValidateInput(request); err != nil {
		handlerError(err, w)
		return request, false
	}
	return request, true
}
