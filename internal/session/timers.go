package session

import (
	"log"
	"time"

	"impostor-bot/internal/db"
	"impostor-bot/internal/game"
)

// schedulePhaseTimer arms (or disarms) the auto-advance timer for the
// session's current phase. Action and voting phases run on a clock;
// everything else waits for player input. Phase and duration are read
// under the session lock: the callers have already released it, and a
// concurrent timer fire may be mid-advance.
func (o *Orchestrator) schedulePhaseTimer(sess *Session) {
	if sess == nil {
		return
	}
	sess.mu.Lock()
	phase := sess.State.Phase
	duration := o.phaseDuration(sess)
	sess.mu.Unlock()
	if duration <= 0 {
		o.cancelPhaseTimer(sess.Key)
		return
	}
	o.timersMu.Lock()
	if existing, ok := o.timers[sess.Key]; ok {
		existing.Stop()
	}
	timer := time.AfterFunc(duration, func() {
		o.autoAdvance(sess.Key, phase)
	})
	o.timers[sess.Key] = timer
	o.timersMu.Unlock()
}

func (o *Orchestrator) cancelPhaseTimer(key Key) {
	o.timersMu.Lock()
	defer o.timersMu.Unlock()
	if timer, ok := o.timers[key]; ok {
		timer.Stop()
		delete(o.timers, key)
	}
}

func (o *Orchestrator) phaseDuration(sess *Session) time.Duration {
	if sess.Status != db.StatusActive {
		return 0
	}
	switch sess.State.Phase {
	case game.PhaseAction:
		return time.Duration(o.cfg.ActionDurationSeconds) * time.Second
	case game.PhaseVoting:
		return time.Duration(o.cfg.VotingDurationSeconds) * time.Second
	default:
		return 0
	}
}

// autoAdvance fires when a phase timer elapses. The phase is re-checked
// under the session lock: a player action may have advanced it already.
func (o *Orchestrator) autoAdvance(key Key, expectedPhase string) {
	var result *Result
	sess, err := o.reg.Update(key, func(sess *Session) error {
		if sess.Status != db.StatusActive || sess.State.Phase != expectedPhase {
			return nil
		}
		switch expectedPhase {
		case game.PhaseAction:
			narrated, err := o.openVotingLocked(sess)
			if err != nil {
				return err
			}
			result = renderResult(sess, nil, narrated)
		case game.PhaseVoting:
			decision, narrated, err := o.closeVotingLocked(sess)
			if err != nil {
				return err
			}
			result = renderResult(sess, decision, narrated)
		}
		return nil
	})
	if err != nil {
		log.Printf("phase timer advance failed chat_id=%d topic_id=%d phase=%s error=%v",
			key.ChatID, key.TopicID, expectedPhase, err)
		return
	}
	if result == nil {
		return
	}
	o.schedulePhaseTimer(sess)
	log.Printf("phase auto-advanced chat_id=%d topic_id=%d from=%s to=%s",
		key.ChatID, key.TopicID, expectedPhase, result.Phase)
	if o.notify != nil {
		o.notify(key, result)
	}
}
