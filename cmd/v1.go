package main

import (
	"github.com/go-chi/chi/v5"
)

func (a *app) newV1Router() *chi.Mux {
	v1 := chi.NewRouter()
	auth := a.auth.JWTMiddleware
	h := a.api

	// configure all endpoints
	v1.Get("/healthz", h.HandlerReadiness)
	v1.Get("/languages", auth(h.HandlerGetLanguages))

	// rooms layer
	v1.Post("/rooms", auth(h.HandlerCreateRoom))
	v1.Get("/rooms/available", auth(h.HandlerGetAvailableRooms))
	v1.Get("/rooms/{room_id}", auth(h.HandlerGetRoom))
	v1.Post("/rooms/join", auth(h.HandlerJoinRoom))
	v1.Post("/rooms/leave", auth(h.HandlerLeaveRoom))
	v1.Post("/rooms/start", auth(h.HandlerStartRoom))
	v1.Post("/rooms/{room_id}/end", auth(h.HandlerEndRoom))

	// battle layer
	v1.Post("/rooms/{room_id}/submit", auth(h.HandlerSubmit))

	// users layer
	v1.Get("/users/battle-history", auth(h.HandlerGetBattleHistory))
	v1.Get("/users/stats", auth(h.HandlerGetUserStats))

	return v1
}
