package db

import "time"

const (
	RoleCrewmate = "crewmate"
	RoleImpostor = "impostor"

	OutcomeWin  = "win"
	OutcomeLose = "lose"
)

// PlayerGameLink joins a Player to a GameSession. Outcome stays nil until
// the session reaches a terminal status and is set exactly once.
type PlayerGameLink struct {
	ID             uint   `gorm:"primaryKey"`
	SessionID      uint   `gorm:"index;not null;uniqueIndex:idx_links_session_player"`
	PlayerID       int64  `gorm:"index;not null;uniqueIndex:idx_links_session_player"`
	Role           string `gorm:"size:16;not null;default:''"`
	JoinedAt       time.Time
	LeftAt         *time.Time
	Outcome        *string   `gorm:"size:16"`
	XPEarned       int       `gorm:"not null;default:0"`
	TasksCompleted int       `gorm:"not null;default:0"`
	CorrectVotes   int       `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}
