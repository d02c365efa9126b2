package db

import "time"

// Player is the persistent profile for a Telegram user. Rows are created on
// first interaction and never deleted; stats only grow.
type Player struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"size:64;not null"`
	XP            int       `gorm:"not null;default:0"`
	Title         string    `gorm:"size:32;not null;default:'Rookie'"`
	Wins          int       `gorm:"not null;default:0"`
	Losses        int       `gorm:"not null;default:0"`
	TasksDone     int       `gorm:"not null;default:0"`
	FakeTasksDone int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	Links         []PlayerGameLink
}
