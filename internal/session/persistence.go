package session

import (
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"impostor-bot/internal/db"
	"impostor-bot/internal/game"
)

// Every persist helper is a no-op with a nil handle; the game and
// orchestrator tests run without a database that way. With a live handle,
// a failed write aborts the whole operation so memory and store never
// diverge.

func (o *Orchestrator) persistSessionCreate(sess *Session) error {
	if o.db == nil {
		return nil
	}
	snapshot, err := game.EncodeSnapshot(sess.State)
	if err != nil {
		return err
	}
	record := db.GameSession{
		ChatID:     sess.Key.ChatID,
		TopicID:    sess.Key.TopicID,
		GameType:   sess.GameType,
		Status:     sess.Status,
		Phase:      sess.State.Phase,
		CreatorID:  sess.CreatorID,
		InviteCode: sess.InviteCode,
		MaxPlayers: sess.State.Config.MaxPlayers,
		State:      datatypes.JSON(snapshot),
	}
	if err := o.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSessionExists
		}
		return err
	}
	sess.DBID = record.ID
	return nil
}

func (o *Orchestrator) persistSnapshot(sess *Session) error {
	if o.db == nil {
		return nil
	}
	snapshot, err := game.EncodeSnapshot(sess.State)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"status": sess.Status,
		"phase":  sess.State.Phase,
		"round":  sess.State.Round,
		"state":  datatypes.JSON(snapshot),
	}
	if sess.StartedAt != nil {
		updates["started_at"] = *sess.StartedAt
	}
	if sess.FinishedAt != nil {
		updates["finished_at"] = *sess.FinishedAt
	}
	if err := o.db.Model(&db.GameSession{}).Where("id = ?", sess.DBID).Updates(updates).Error; err != nil {
		return err
	}
	if sess.Status == db.StatusFinished || sess.Status == db.StatusAborted {
		return o.persistOutcomes(sess)
	}
	return nil
}

func (o *Orchestrator) persistPlayer(id int64, name string) error {
	if o.db == nil {
		return nil
	}
	record := db.Player{ID: id, Name: name, Title: TitleForXP(0)}
	return o.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&record).Error
}

func (o *Orchestrator) persistJoin(sess *Session, playerID int64, name string) error {
	if o.db == nil {
		return nil
	}
	if err := o.persistPlayer(playerID, name); err != nil {
		return err
	}
	link := db.PlayerGameLink{
		SessionID: sess.DBID,
		PlayerID:  playerID,
		JoinedAt:  time.Now().UTC(),
	}
	if err := o.db.Create(&link).Error; err != nil {
		if !isUniqueViolation(err) {
			return err
		}
		// Rejoin after a lobby leave reuses the existing link.
		if err := o.db.Model(&db.PlayerGameLink{}).
			Where("session_id = ? AND player_id = ?", sess.DBID, playerID).
			Update("left_at", nil).Error; err != nil {
			return err
		}
	}
	return o.persistSnapshot(sess)
}

func (o *Orchestrator) persistLeave(sess *Session, playerID int64) error {
	if o.db == nil {
		return nil
	}
	if err := o.db.Model(&db.PlayerGameLink{}).
		Where("session_id = ? AND player_id = ? AND left_at IS NULL", sess.DBID, playerID).
		Update("left_at", time.Now().UTC()).Error; err != nil {
		return err
	}
	return o.persistSnapshot(sess)
}

func (o *Orchestrator) persistStart(sess *Session) error {
	if o.db == nil {
		return nil
	}
	for _, m := range sess.State.Members {
		if m.Left {
			continue
		}
		if err := o.db.Model(&db.PlayerGameLink{}).
			Where("session_id = ? AND player_id = ?", sess.DBID, m.ID).
			Update("role", m.Role).Error; err != nil {
			return err
		}
	}
	return o.persistSnapshot(sess)
}

func (o *Orchestrator) persistVote(sess *Session, voterID, targetID int64, skip bool) error {
	if o.db == nil {
		return nil
	}
	record := db.VoteRecord{
		SessionID: sess.DBID,
		VoterID:   voterID,
		Round:     sess.State.Round,
		Kind:      db.VoteKindEject,
	}
	if skip {
		record.Kind = db.VoteKindSkip
	} else {
		target := targetID
		record.TargetID = &target
	}
	if err := o.db.Create(&record).Error; err != nil {
		return err
	}
	if err := o.awardPlayerXP(voterID, xpVoteCast); err != nil {
		return err
	}
	return o.persistSnapshot(sess)
}

func (o *Orchestrator) persistResolution(sess *Session, decision *game.Decision, awards []xpAward) error {
	if o.db == nil {
		return nil
	}
	for _, award := range awards {
		if err := o.awardPlayerXP(award.PlayerID, award.Amount); err != nil {
			return err
		}
		updates := map[string]any{"xp_earned": gorm.Expr("xp_earned + ?", award.Amount)}
		if award.CorrectVote {
			updates["correct_votes"] = gorm.Expr("correct_votes + 1")
		}
		if err := o.db.Model(&db.PlayerGameLink{}).
			Where("session_id = ? AND player_id = ?", sess.DBID, award.PlayerID).
			Updates(updates).Error; err != nil {
			return err
		}
	}
	return o.persistSnapshot(sess)
}

func (o *Orchestrator) persistTask(sess *Session, playerID int64, taskType, text string) error {
	if o.db == nil {
		return nil
	}
	member := findMember(sess.State, playerID)
	fake := member != nil && member.Role == game.RoleImpostor
	earned := xpTaskDone
	if fake {
		earned = xpFakeTask
	}
	entry := db.TaskEntry{
		SessionID: sess.DBID,
		PlayerID:  playerID,
		TaskType:  taskType,
		Text:      text,
		Fake:      fake,
		XPEarned:  earned,
	}
	if err := o.db.Create(&entry).Error; err != nil {
		return err
	}
	column := "tasks_done"
	if fake {
		column = "fake_tasks_done"
	}
	if err := o.db.Model(&db.Player{}).Where("id = ?", playerID).
		Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
		return err
	}
	if err := o.awardPlayerXP(playerID, earned); err != nil {
		return err
	}
	if err := o.db.Model(&db.PlayerGameLink{}).
		Where("session_id = ? AND player_id = ?", sess.DBID, playerID).
		Updates(map[string]any{
			"tasks_completed": gorm.Expr("tasks_completed + 1"),
			"xp_earned":       gorm.Expr("xp_earned + ?", earned),
		}).Error; err != nil {
		return err
	}
	return o.persistSnapshot(sess)
}

func (o *Orchestrator) persistDiscussion(sess *Session, playerID int64, message string) error {
	if o.db == nil {
		return nil
	}
	entry := db.DiscussionEntry{
		SessionID: sess.DBID,
		PlayerID:  playerID,
		Phase:     sess.State.Phase,
		Message:   message,
	}
	return o.db.Create(&entry).Error
}

func (o *Orchestrator) persistAbort(sess *Session) error {
	return o.persistSnapshot(sess)
}

// persistOutcomes resolves every link exactly once when the session goes
// terminal. The outcome IS NULL guard makes a replayed write harmless.
func (o *Orchestrator) persistOutcomes(sess *Session) error {
	if o.db == nil {
		return nil
	}
	verdict := sess.State.Verdict
	aborted := sess.Status == db.StatusAborted
	for _, m := range sess.State.Members {
		outcome := memberOutcome(m.Role, verdict)
		bonus := winBonus(m.Role, verdict)
		if aborted {
			outcome = db.OutcomeLose
			bonus = 0
		}
		res := o.db.Model(&db.PlayerGameLink{}).
			Where("session_id = ? AND player_id = ? AND outcome IS NULL", sess.DBID, m.ID).
			Updates(map[string]any{
				"outcome":   outcome,
				"xp_earned": gorm.Expr("xp_earned + ?", bonus),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || aborted {
			continue
		}
		if bonus != 0 {
			if err := o.awardPlayerXP(m.ID, bonus); err != nil {
				return err
			}
		}
		column := "losses"
		if outcome == db.OutcomeWin {
			column = "wins"
		}
		if err := o.db.Model(&db.Player{}).Where("id = ?", m.ID).
			Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

// awardPlayerXP applies an XP delta and recomputes the title. XP never
// drops below zero.
func (o *Orchestrator) awardPlayerXP(playerID int64, amount int) error {
	if o.db == nil || amount == 0 {
		return nil
	}
	var player db.Player
	if err := o.db.First(&player, "id = ?", playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	player.XP += amount
	if player.XP < 0 {
		player.XP = 0
	}
	player.Title = TitleForXP(player.XP)
	return o.db.Model(&db.Player{}).Where("id = ?", playerID).
		Updates(map[string]any{"xp": player.XP, "title": player.Title}).Error
}

// enqueue puts a player on the chat's waitlist, once.
func (o *Orchestrator) enqueue(playerID, chatID int64) error {
	o.queueMu.Lock()
	queued := false
	for _, id := range o.queue[chatID] {
		if id == playerID {
			queued = true
			break
		}
	}
	if !queued {
		o.queue[chatID] = append(o.queue[chatID], playerID)
	}
	o.queueMu.Unlock()
	if o.db == nil || queued {
		return nil
	}
	return o.db.Create(&db.QueueEntry{
		PlayerID: playerID,
		ChatID:   chatID,
		JoinedAt: time.Now().UTC(),
	}).Error
}

// consumeQueue drains the chat's waitlist and returns the ids so the
// transport can ping them about the new lobby. The store rows are marked
// notified rather than deleted; cleanup purges them later.
func (o *Orchestrator) consumeQueue(chatID int64) ([]int64, error) {
	o.queueMu.Lock()
	ids := o.queue[chatID]
	delete(o.queue, chatID)
	o.queueMu.Unlock()
	if o.db == nil || len(ids) == 0 {
		return ids, nil
	}
	if err := o.db.Model(&db.QueueEntry{}).
		Where("chat_id = ? AND notified_at IS NULL", chatID).
		Update("notified_at", time.Now().UTC()).Error; err != nil {
		return ids, err
	}
	return ids, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
