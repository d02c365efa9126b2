package session

import (
	"impostor-bot/internal/game"
)

// RosterEntry is a player's public view. Role is filled in only once the
// session is over or the player is out of the game.
type RosterEntry struct {
	ID    int64
	Name  string
	Alive bool
	Role  string
}

// Result is the render model returned by every orchestrator call. The chat
// transport turns it into platform messages; nothing in here feeds back
// into game state.
type Result struct {
	Key           Key
	Status        string
	Phase         string
	Round         int
	Roster        []RosterEntry
	LivingCount   int
	TasksDone     int
	TasksRequired int
	Decision      *game.Decision
	Verdict       string
	Narrative     string
	Roles         map[int64]string
	QueueNotified []int64
}

func renderResult(sess *Session, decision *game.Decision, narrativeText string) *Result {
	state := sess.State
	over := state.Over()
	result := &Result{
		Key:           sess.Key,
		Status:        sess.Status,
		Phase:         state.Phase,
		Round:         state.Round,
		TasksDone:     state.TasksDone,
		TasksRequired: state.TasksRequired,
		Decision:      decision,
		Verdict:       state.Verdict,
		Narrative:     narrativeText,
		LivingCount:   len(state.Living()),
	}
	for _, m := range state.Roster() {
		entry := RosterEntry{ID: m.ID, Name: m.Name, Alive: m.Alive}
		if over || !m.Alive {
			entry.Role = m.Role
		}
		result.Roster = append(result.Roster, entry)
	}
	return result
}

// PlayerName resolves a roster id for message formatting.
func (r *Result) PlayerName(id int64) string {
	for _, entry := range r.Roster {
		if entry.ID == id {
			return entry.Name
		}
	}
	return ""
}
