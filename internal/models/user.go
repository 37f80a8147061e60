package models

// User represents a registered account
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"` // Not serialized
}
