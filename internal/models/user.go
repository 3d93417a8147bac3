package models

import "github.com/google/uuid"

type UserStats struct {
	TotalBattles int32   `json:"total_battles"`
	TotalWins    int32   `json:"total_wins"`
	AverageScore float64 `json:"average_score"`
}

type User struct {
	ID       uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Email    string    `json:"-"`
	Stats    UserStats `json:"stats"`
}
