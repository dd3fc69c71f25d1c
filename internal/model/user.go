package model

import "time"

// User is a read-only collaborator: this core looks users up for ownership
// checks and leaderboard name resolution but never writes them.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Username  string    `json:"username" gorm:"not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}
