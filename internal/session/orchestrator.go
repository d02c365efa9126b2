package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"impostor-bot/internal/config"
	"impostor-bot/internal/db"
	"impostor-bot/internal/game"
	"impostor-bot/internal/narrative"
)

// Notifier receives render models produced outside a user request, such as
// timer-driven phase changes.
type Notifier func(key Key, result *Result)

// Orchestrator is the façade in front of the game core. Every mutating call
// validates, delegates to the state machine, persists the snapshot, and
// returns a render model. A nil gorm handle disables persistence, which is
// how the tests run.
type Orchestrator struct {
	db       *gorm.DB
	cfg      config.Config
	reg      *Registry
	narrator *narrative.Client
	notify   Notifier

	timersMu sync.Mutex
	timers   map[Key]*time.Timer

	// Waitlist per chat, FIFO. Authoritative in memory; mirrored to the
	// store so a restart keeps the queue.
	queueMu sync.Mutex
	queue   map[int64][]int64
}

func New(conn *gorm.DB, cfg config.Config, narrator *narrative.Client) *Orchestrator {
	return &Orchestrator{
		db:       conn,
		cfg:      cfg,
		reg:      NewRegistry(),
		narrator: narrator,
		timers:   make(map[Key]*time.Timer),
		queue:    make(map[int64][]int64),
	}
}

func (o *Orchestrator) SetNotifier(fn Notifier) {
	o.notify = fn
}

func (o *Orchestrator) gameConfig() game.Config {
	return game.Config{
		MinPlayers:       o.cfg.MinPlayers,
		MaxPlayers:       o.cfg.MaxPlayers,
		ImpostorRatio:    o.cfg.ImpostorRatio,
		TasksPerCrewmate: o.cfg.TasksPerCrewmate,
	}
}

// CreateSession opens a lobby in a room. Players waiting in the chat's join
// queue are reported back so the transport can ping them.
func (o *Orchestrator) CreateSession(key Key, creatorID int64, creatorName string) (*Result, error) {
	sess := &Session{
		Key:        key,
		GameType:   game.TypeImpostor,
		Status:     db.StatusWaiting,
		CreatorID:  creatorID,
		InviteCode: uuid.NewString(),
		State:      game.NewState(o.gameConfig()),
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.reg.Put(sess); err != nil {
		return nil, err
	}
	if err := o.persistSessionCreate(sess); err != nil {
		o.reg.Delete(key)
		return nil, err
	}
	if err := o.persistPlayer(creatorID, creatorName); err != nil {
		log.Printf("persist creator failed chat_id=%d error=%v", key.ChatID, err)
	}
	notified, err := o.consumeQueue(key.ChatID)
	if err != nil {
		log.Printf("join queue notify failed chat_id=%d error=%v", key.ChatID, err)
	}
	result := renderResult(sess, nil, "")
	result.QueueNotified = notified
	log.Printf("session created chat_id=%d topic_id=%d session_id=%d", key.ChatID, key.TopicID, sess.DBID)
	return result, nil
}

// JoinSession adds a player to a waiting lobby. A full or already running
// room queues the player for the next game and still rejects the join.
func (o *Orchestrator) JoinSession(key Key, playerID int64, name string) (*Result, error) {
	var result *Result
	_, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusWaiting {
			if qErr := o.enqueue(playerID, key.ChatID); qErr != nil {
				log.Printf("queue add failed player_id=%d error=%v", playerID, qErr)
			}
			return game.ErrSessionNotJoinable
		}
		before := cloneState(sess.State)
		if err := sess.State.Join(playerID, name); err != nil {
			if err == game.ErrSessionFull {
				if qErr := o.enqueue(playerID, key.ChatID); qErr != nil {
					log.Printf("queue add failed player_id=%d error=%v", playerID, qErr)
				}
			}
			return err
		}
		if err := o.persistJoin(sess, playerID, name); err != nil {
			sess.State = before
			return fmt.Errorf("persist join: %w", err)
		}
		result = renderResult(sess, nil, "")
		return nil
	})
	return result, err
}

// LeaveSession removes a player. Leaving mid-game counts as an elimination,
// so the win conditions are re-checked immediately.
func (o *Orchestrator) LeaveSession(key Key, playerID int64) (*Result, error) {
	var result *Result
	_, err := o.reg.Update(key, func(sess *Session) error {
		rules, ok := game.RulesFor(sess.GameType)
		if !ok {
			return ErrUnknownGameType
		}
		backup := backupSession(sess)
		if err := sess.State.Leave(playerID); err != nil {
			return err
		}
		if sess.Status == db.StatusActive {
			if verdict := rules.CheckWin(sess.State); verdict != game.VerdictNone {
				o.finishLocked(sess, verdict)
			}
		}
		if err := o.persistLeave(sess, playerID); err != nil {
			backup.restore(sess)
			return fmt.Errorf("persist leave: %w", err)
		}
		if sess.State.Over() {
			o.afterTerminal(sess)
		}
		result = renderResult(sess, nil, "")
		return nil
	})
	return result, err
}

// StartSession assigns roles and opens the first action round. Only the
// creator may start. Result.Roles carries the private role assignments for
// the transport to deliver.
func (o *Orchestrator) StartSession(key Key, byID int64) (*Result, error) {
	var result *Result
	sess, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusWaiting {
			return game.ErrIllegalTransition
		}
		if byID != sess.CreatorID {
			return ErrNotCreator
		}
		rules, ok := game.RulesFor(sess.GameType)
		if !ok {
			return ErrUnknownGameType
		}
		backup := backupSession(sess)
		if err := rules.Start(sess.State); err != nil {
			return err
		}
		now := time.Now().UTC()
		sess.Status = db.StatusActive
		sess.StartedAt = &now
		if err := o.persistStart(sess); err != nil {
			backup.restore(sess)
			return fmt.Errorf("persist start: %w", err)
		}
		narrated := o.narrate(narrative.KindPhaseIntro, narrative.Context{
			Phase: sess.State.Phase,
			Round: sess.State.Round,
		})
		result = renderResult(sess, nil, narrated)
		result.Roles = make(map[int64]string)
		for _, m := range sess.State.Living() {
			result.Roles[m.ID] = m.Role
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.schedulePhaseTimer(sess)
	return result, nil
}

// SubmitVote records one vote. When the last living player votes, the round
// resolves immediately instead of waiting for the timer.
func (o *Orchestrator) SubmitVote(key Key, voterID, targetID int64, skip bool) (*Result, error) {
	var result *Result
	sess, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusActive {
			return game.ErrVotingClosed
		}
		backup := backupSession(sess)
		if err := sess.State.CastVote(voterID, targetID, skip); err != nil {
			return err
		}
		if err := o.persistVote(sess, voterID, targetID, skip); err != nil {
			backup.restore(sess)
			return fmt.Errorf("persist vote: %w", err)
		}
		if sess.State.AllVoted() {
			decision, narrated, err := o.closeVotingLocked(sess)
			if err != nil {
				return err
			}
			result = renderResult(sess, decision, narrated)
			return nil
		}
		result = renderResult(sess, nil, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.schedulePhaseTimer(sess)
	return result, nil
}

// AdvancePhase drives the session forward: action into voting, voting into
// resolution (which tallies and loops or ends the game). Any other trigger
// fails without touching the state.
func (o *Orchestrator) AdvancePhase(key Key, target string) (*Result, error) {
	var result *Result
	sess, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusActive {
			return game.ErrIllegalTransition
		}
		switch target {
		case game.PhaseVoting:
			narrated, err := o.openVotingLocked(sess)
			if err != nil {
				return err
			}
			result = renderResult(sess, nil, narrated)
			return nil
		case game.PhaseResolution:
			decision, narrated, err := o.closeVotingLocked(sess)
			if err != nil {
				return err
			}
			result = renderResult(sess, decision, narrated)
			return nil
		default:
			if !sess.State.CanAdvance(target) {
				return game.ErrIllegalTransition
			}
			backup := backupSession(sess)
			if err := sess.State.Advance(target); err != nil {
				return err
			}
			if err := o.persistSnapshot(sess); err != nil {
				backup.restore(sess)
				return fmt.Errorf("persist phase: %w", err)
			}
			result = renderResult(sess, nil, "")
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	o.schedulePhaseTimer(sess)
	return result, nil
}

// CompleteTask credits a task completion. Crewmate completions move the
// task-threshold win forward; impostor fake tasks are logged only.
func (o *Orchestrator) CompleteTask(key Key, playerID int64, taskType, text string) (*Result, error) {
	var result *Result
	_, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusActive {
			return game.ErrIllegalTransition
		}
		rules, ok := game.RulesFor(sess.GameType)
		if !ok {
			return ErrUnknownGameType
		}
		backup := backupSession(sess)
		if err := sess.State.CompleteTask(playerID); err != nil {
			return err
		}
		if verdict := rules.CheckWin(sess.State); verdict != game.VerdictNone {
			o.finishLocked(sess, verdict)
		}
		if err := o.persistTask(sess, playerID, taskType, text); err != nil {
			backup.restore(sess)
			return fmt.Errorf("persist task: %w", err)
		}
		narrated := ""
		if m := findMember(sess.State, playerID); m != nil && m.Role == game.RoleCrewmate {
			narrated = o.narrate(narrative.KindTaskFlavor, narrative.Context{PlayerName: m.Name})
		}
		if sess.State.Over() {
			o.afterTerminal(sess)
			narrated = o.narrate(narrative.KindGameOver, narrative.Context{Verdict: sess.State.Verdict})
		}
		result = renderResult(sess, nil, narrated)
		return nil
	})
	return result, err
}

// RecordDiscussion appends to the discussion audit log. Purely
// observational; no snapshot write.
func (o *Orchestrator) RecordDiscussion(key Key, playerID int64, message string) error {
	_, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusActive {
			return nil
		}
		return o.persistDiscussion(sess, playerID, message)
	})
	return err
}

// EndSession aborts an open session. Only the creator may abort; no XP or
// outcomes are awarded.
func (o *Orchestrator) EndSession(key Key, byID int64) (*Result, error) {
	var result *Result
	_, err := o.reg.Update(key, func(sess *Session) error {
		if byID != sess.CreatorID {
			return ErrNotCreator
		}
		if sess.Status != db.StatusWaiting && sess.Status != db.StatusActive {
			return game.ErrIllegalTransition
		}
		backup := backupSession(sess)
		now := time.Now().UTC()
		sess.Status = db.StatusAborted
		sess.FinishedAt = &now
		sess.State.Finish(game.VerdictNone)
		if err := o.persistAbort(sess); err != nil {
			backup.restore(sess)
			return fmt.Errorf("persist abort: %w", err)
		}
		o.afterTerminal(sess)
		result = renderResult(sess, nil, "")
		return nil
	})
	return result, err
}

// Status renders the current state without mutating anything.
func (o *Orchestrator) Status(key Key) (*Result, error) {
	var result *Result
	_, err := o.reg.Update(key, func(sess *Session) error {
		result = renderResult(sess, nil, "")
		return nil
	})
	return result, err
}

// openVotingLocked moves action into voting and clears the round's ballots.
func (o *Orchestrator) openVotingLocked(sess *Session) (string, error) {
	backup := backupSession(sess)
	if err := sess.State.Advance(game.PhaseVoting); err != nil {
		return "", err
	}
	if err := o.persistSnapshot(sess); err != nil {
		backup.restore(sess)
		return "", fmt.Errorf("persist voting open: %w", err)
	}
	return o.narrate(narrative.KindPhaseIntro, narrative.Context{
		Phase: sess.State.Phase,
		Round: sess.State.Round,
	}), nil
}

// closeVotingLocked tallies the round, applies the elimination and the vote
// XP, checks the win conditions, and either loops back to action or ends
// the game.
func (o *Orchestrator) closeVotingLocked(sess *Session) (*game.Decision, string, error) {
	rules, ok := game.RulesFor(sess.GameType)
	if !ok {
		return nil, "", ErrUnknownGameType
	}
	backup := backupSession(sess)
	decision, err := sess.State.Resolve()
	if err != nil {
		return nil, "", err
	}
	awards := voteAwards(sess.State, decision)
	if verdict := rules.CheckWin(sess.State); verdict != game.VerdictNone {
		o.finishLocked(sess, verdict)
	} else {
		if err := sess.State.Advance(game.PhaseAction); err != nil {
			backup.restore(sess)
			return nil, "", err
		}
	}
	if err := o.persistResolution(sess, &decision, awards); err != nil {
		backup.restore(sess)
		return nil, "", fmt.Errorf("persist resolution: %w", err)
	}
	narrated := ""
	if decision.Ejected != nil {
		if m := findMember(sess.State, *decision.Ejected); m != nil {
			narrated = o.narrate(narrative.KindElimination, narrative.Context{PlayerName: m.Name})
		}
	}
	if sess.State.Over() {
		o.afterTerminal(sess)
		narrated = o.narrate(narrative.KindGameOver, narrative.Context{Verdict: sess.State.Verdict})
	}
	return &decision, narrated, nil
}

// finishLocked marks the session finished. Persistence happens in the
// caller's persist step so a store failure rolls everything back at once.
func (o *Orchestrator) finishLocked(sess *Session, verdict string) {
	now := time.Now().UTC()
	sess.State.Finish(verdict)
	sess.Status = db.StatusFinished
	sess.FinishedAt = &now
}

// afterTerminal drops a terminal session from the registry so the room can
// host a new one. Timers die with it.
func (o *Orchestrator) afterTerminal(sess *Session) {
	o.cancelPhaseTimer(sess.Key)
	o.reg.Delete(sess.Key)
	log.Printf("session closed chat_id=%d topic_id=%d session_id=%d status=%s verdict=%s",
		sess.Key.ChatID, sess.Key.TopicID, sess.DBID, sess.Status, sess.State.Verdict)
}

const narrativeGrace = 500 * time.Millisecond

// narrate fetches flavor text with a short grace period. The state change
// this text decorates is already persisted; a slow or failing model only
// means the static line ships instead.
func (o *Orchestrator) narrate(kind narrative.PromptKind, nc narrative.Context) string {
	if o.narrator == nil {
		return narrative.Fallback(kind)
	}
	ch := make(chan string, 1)
	go func() {
		ch <- o.narrator.GenerateOrFallback(context.Background(), kind, nc)
	}()
	select {
	case text := <-ch:
		return text
	case <-time.After(narrativeGrace):
		return narrative.Fallback(kind)
	}
}

func findMember(s *game.State, id int64) *game.Member {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return &s.Members[i]
		}
	}
	return nil
}

// cloneState deep-copies via the snapshot codec so a failed persistence
// write can restore the pre-mutation state exactly.
func cloneState(s *game.State) *game.State {
	data, err := game.EncodeSnapshot(s)
	if err != nil {
		return game.NewState(s.Config)
	}
	clone, err := game.DecodeSnapshot(data)
	if err != nil {
		return game.NewState(s.Config)
	}
	return clone
}

type sessionBackup struct {
	state      *game.State
	status     string
	startedAt  *time.Time
	finishedAt *time.Time
}

func backupSession(sess *Session) sessionBackup {
	return sessionBackup{
		state:      cloneState(sess.State),
		status:     sess.Status,
		startedAt:  sess.StartedAt,
		finishedAt: sess.FinishedAt,
	}
}

func (b sessionBackup) restore(sess *Session) {
	sess.State = b.state
	sess.Status = b.status
	sess.StartedAt = b.startedAt
	sess.FinishedAt = b.finishedAt
}
