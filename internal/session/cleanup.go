package session

import (
	"context"
	"log"
	"time"

	"impostor-bot/internal/db"
)

// RunCleanup purges old terminal sessions and stale queue entries on a
// fixed interval until the context is cancelled. Only terminal or expired
// rows are touched, so live sessions need no locking here.
func (o *Orchestrator) RunCleanup(ctx context.Context) {
	if o.db == nil {
		return
	}
	interval := time.Duration(o.cfg.CleanupIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions, queue, err := o.CleanupOnce()
			if err != nil {
				log.Printf("cleanup failed error=%v", err)
				continue
			}
			if sessions > 0 || queue > 0 {
				log.Printf("cleanup removed sessions=%d queue_entries=%d", sessions, queue)
			}
		}
	}
}

// CleanupOnce deletes terminal sessions older than the retention window,
// their audit rows, and expired queue entries.
func (o *Orchestrator) CleanupOnce() (int64, int64, error) {
	if o.db == nil {
		return 0, 0, nil
	}
	sessionCutoff := time.Now().UTC().Add(-time.Duration(o.cfg.SessionRetentionHours) * time.Hour)
	var old []db.GameSession
	if err := o.db.Where("status IN ? AND finished_at < ?",
		[]string{db.StatusFinished, db.StatusAborted}, sessionCutoff).Find(&old).Error; err != nil {
		return 0, 0, err
	}
	var removed int64
	for _, record := range old {
		if err := o.deleteSessionRows(record.ID); err != nil {
			return removed, 0, err
		}
		removed++
	}
	queueCutoff := time.Now().UTC().Add(-time.Duration(o.cfg.QueueRetentionHours) * time.Hour)
	res := o.db.Where("joined_at < ?", queueCutoff).Delete(&db.QueueEntry{})
	if res.Error != nil {
		return removed, 0, res.Error
	}
	return removed, res.RowsAffected, nil
}

func (o *Orchestrator) deleteSessionRows(sessionID uint) error {
	for _, model := range []any{
		&db.VoteRecord{},
		&db.DiscussionEntry{},
		&db.TaskEntry{},
		&db.PlayerGameLink{},
	} {
		if err := o.db.Where("session_id = ?", sessionID).Delete(model).Error; err != nil {
			return err
		}
	}
	return o.db.Delete(&db.GameSession{}, sessionID).Error
}
