package db

import "time"

// DiscussionEntry logs chat activity during a session. Never read back
// into game logic.
type DiscussionEntry struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID uint      `gorm:"index;not null"`
	PlayerID  int64     `gorm:"index;not null"`
	Phase     string    `gorm:"size:16;not null;default:'action'"`
	Message   string    `gorm:"size:1024;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TaskEntry logs task completions. Crewmate completions feed the
// task-threshold win counter at write time; the rows themselves are
// purely observational.
type TaskEntry struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID uint      `gorm:"index;not null"`
	PlayerID  int64     `gorm:"index;not null"`
	TaskType  string    `gorm:"size:32;not null"`
	Text      string    `gorm:"size:280;not null;default:''"`
	Fake      bool      `gorm:"not null;default:false"`
	XPEarned  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}
