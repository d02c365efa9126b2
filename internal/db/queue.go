package db

import "time"

// QueueEntry is a waitlist row for players who tried to join a full or
// already running room. Entries are consumed when a new lobby opens and
// expired by the cleanup task.
type QueueEntry struct {
	ID         uint      `gorm:"primaryKey"`
	PlayerID   int64     `gorm:"index;not null"`
	ChatID     int64     `gorm:"index;not null"`
	JoinedAt   time.Time `gorm:"not null"`
	NotifiedAt *time.Time
}
