package db

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
	StatusAborted  = "aborted"
)

// GameSession binds a game to a chat topic. At most one row per
// (chat_id, topic_id) may hold a non-terminal status; the code enforces
// this and the SQL migration backs it with a partial unique index.
type GameSession struct {
	ID         uint           `gorm:"primaryKey"`
	ChatID     int64          `gorm:"not null;index:idx_sessions_chat_topic"`
	TopicID    int64          `gorm:"not null;index:idx_sessions_chat_topic"`
	GameType   string         `gorm:"size:32;not null;default:'impostor'"`
	Status     string         `gorm:"size:16;not null;index"`
	Phase      string         `gorm:"size:16;not null"`
	Round      int            `gorm:"not null;default:0"`
	CreatorID  int64          `gorm:"not null"`
	InviteCode string         `gorm:"size:36;uniqueIndex;not null"`
	MaxPlayers int            `gorm:"not null;default:10"`
	State      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"not null"`
	StartedAt  *time.Time
	FinishedAt *time.Time
	UpdatedAt  time.Time `gorm:"not null"`
	Links      []PlayerGameLink
	Votes      []VoteRecord
}

// Terminal reports whether the session status can no longer change.
func (s *GameSession) Terminal() bool {
	return s.Status == StatusFinished || s.Status == StatusAborted
}
