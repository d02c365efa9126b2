package db

import "time"

const (
	VoteKindEject = "eject"
	VoteKindSkip  = "skip"
)

// VoteRecord is the append-only vote audit log. A voter may appear more
// than once per round; only the latest row counts for the tally.
type VoteRecord struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID uint      `gorm:"index;not null"`
	VoterID   int64     `gorm:"index;not null"`
	TargetID  *int64    `gorm:"index"`
	Round     int       `gorm:"not null;default:1"`
	Kind      string    `gorm:"size:16;not null;default:'eject'"`
	CreatedAt time.Time `gorm:"not null"`
}
