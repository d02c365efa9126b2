package session

import (
	"log"

	"impostor-bot/internal/db"
	"impostor-bot/internal/game"
)

// RecoverActiveSessions loads every non-terminal session from the store and
// rebuilds its in-memory state from the persisted snapshot. Called once at
// startup; chat history is never replayed. Returns the number of sessions
// resumed.
func (o *Orchestrator) RecoverActiveSessions() (int, error) {
	if o.db == nil {
		return 0, nil
	}
	var records []db.GameSession
	if err := o.db.Where("status IN ?", []string{db.StatusWaiting, db.StatusActive}).
		Order("created_at asc").Find(&records).Error; err != nil {
		return 0, err
	}
	recovered := 0
	for i := range records {
		sess, err := o.rebuildSession(&records[i])
		if err != nil {
			log.Printf("session recovery failed session_id=%d error=%v", records[i].ID, err)
			continue
		}
		if err := o.reg.Put(sess); err != nil {
			log.Printf("session recovery skipped session_id=%d error=%v", records[i].ID, err)
			continue
		}
		if sess.Status == db.StatusActive {
			o.schedulePhaseTimer(sess)
		}
		recovered++
	}
	if err := o.recoverQueue(); err != nil {
		return recovered, err
	}
	if recovered > 0 {
		log.Printf("recovered %d active sessions", recovered)
	}
	return recovered, nil
}

// recoverQueue reloads unnotified waitlist rows into memory at startup.
func (o *Orchestrator) recoverQueue() error {
	var entries []db.QueueEntry
	if err := o.db.Where("notified_at IS NULL").
		Order("joined_at asc").Find(&entries).Error; err != nil {
		return err
	}
	o.queueMu.Lock()
	for _, entry := range entries {
		o.queue[entry.ChatID] = append(o.queue[entry.ChatID], entry.PlayerID)
	}
	o.queueMu.Unlock()
	return nil
}

func (o *Orchestrator) rebuildSession(record *db.GameSession) (*Session, error) {
	state, err := game.DecodeSnapshot(record.State)
	if err != nil {
		return nil, err
	}
	if len(state.Members) == 0 {
		// A lobby persisted before its first snapshot write: the links
		// are the roster of record.
		if err := o.rosterFromLinks(record.ID, state); err != nil {
			return nil, err
		}
	}
	sess := &Session{
		DBID:       record.ID,
		Key:        Key{ChatID: record.ChatID, TopicID: record.TopicID},
		GameType:   record.GameType,
		Status:     record.Status,
		CreatorID:  record.CreatorID,
		InviteCode: record.InviteCode,
		State:      state,
		CreatedAt:  record.CreatedAt,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
	return sess, nil
}

func (o *Orchestrator) rosterFromLinks(sessionID uint, state *game.State) error {
	var links []db.PlayerGameLink
	if err := o.db.Where("session_id = ? AND left_at IS NULL", sessionID).
		Order("joined_at asc").Find(&links).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.PlayerID)
	}
	var players []db.Player
	if err := o.db.Where("id IN ?", ids).Find(&players).Error; err != nil {
		return err
	}
	names := make(map[int64]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	for _, link := range links {
		member := game.Member{
			ID:    link.PlayerID,
			Name:  names[link.PlayerID],
			Role:  link.Role,
			Alive: true,
		}
		state.Members = append(state.Members, member)
	}
	return nil
}
