package session

import (
	"sync"
	"testing"

	"impostor-bot/internal/game"
)

// Voters hammering a session while its phase timers fire must never tear
// the state; run with -race.
func TestConcurrentVotingAndTimerAdvances(t *testing.T) {
	o := testOrchestrator()
	riggedGame(t, o)
	if _, err := o.AdvancePhase(room, game.PhaseVoting); err != nil {
		t.Fatalf("open voting: %v", err)
	}

	var wg sync.WaitGroup
	for id := int64(1); id <= 4; id++ {
		wg.Add(1)
		go func(voter int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				// Rejections are expected whenever a timer just moved
				// the phase; only data consistency is under test.
				o.SubmitVote(room, voter, 0, true)
			}
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			o.autoAdvance(room, game.PhaseVoting)
			o.autoAdvance(room, game.PhaseAction)
		}
	}()
	wg.Wait()

	// All-skip rounds never eject anyone, so the game is still running and
	// the state must be coherent.
	status, err := o.Status(room)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Phase != game.PhaseAction && status.Phase != game.PhaseVoting {
		t.Fatalf("session left in phase %q", status.Phase)
	}
	if status.LivingCount != 4 {
		t.Fatalf("roster corrupted: %d living", status.LivingCount)
	}
}
