package api

import (
	"github.com/tcp_snm/arena/internal/service/room_service"
	"github.com/tcp_snm/arena/internal/service/submission_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

type Api struct {
	RoomService       *room_service.RoomService
	SubmissionService *submission_service.SubmissionService
	UserService       *user_service.UserService
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}
