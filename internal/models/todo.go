package models

import "time"

// Todo represents a to-do item owned by a single user
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id"`
}
