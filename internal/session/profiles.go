package session

import (
	"errors"

	"gorm.io/gorm"

	"impostor-bot/internal/db"
)

// Profile is the read-only lifetime record shown by /profile.
type Profile struct {
	ID        int64
	Name      string
	XP        int
	Title     string
	Wins      int
	Losses    int
	TasksDone int
}

// PlayerProfile loads a player's lifetime stats. Returns nil for players
// the bot has never seen.
func (o *Orchestrator) PlayerProfile(playerID int64) (*Profile, error) {
	if o.db == nil {
		return nil, nil
	}
	var record db.Player
	if err := o.db.First(&record, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Profile{
		ID:        record.ID,
		Name:      record.Name,
		XP:        record.XP,
		Title:     record.Title,
		Wins:      record.Wins,
		Losses:    record.Losses,
		TasksDone: record.TasksDone,
	}, nil
}

// Leaderboard returns the top players by XP.
func (o *Orchestrator) Leaderboard(limit int) ([]Profile, error) {
	if o.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	var records []db.Player
	if err := o.db.Order("xp desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, Profile{
			ID:        record.ID,
			Name:      record.Name,
			XP:        record.XP,
			Title:     record.Title,
			Wins:      record.Wins,
			Losses:    record.Losses,
			TasksDone: record.TasksDone,
		})
	}
	return profiles, nil
}
