package game

import (
	"errors"
	"testing"
)

func TestJoinRejectsWhenFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 4
	s := NewState(cfg)
	for i := 0; i < 4; i++ {
		if err := s.Join(int64(i+1), playerName(i)); err != nil {
			t.Fatalf("join player %d: %v", i+1, err)
		}
	}

	err := s.Join(5, "Eli")
	if !errors.Is(err, ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if len(s.Roster()) != 4 {
		t.Fatalf("roster changed on rejected join: %d members", len(s.Roster()))
	}
}

func TestJoinRejectsDuplicate(t *testing.T) {
	s := lobbyWithPlayers(t, 2)

	if err := s.Join(1, "Ada"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
}

func TestJoinRejectedAfterStart(t *testing.T) {
	s := startedGame(t, 4)

	if err := s.Join(42, "Hana"); !errors.Is(err, ErrSessionNotJoinable) {
		t.Fatalf("expected ErrSessionNotJoinable, got %v", err)
	}
}

func TestLobbyLeaveAndRejoin(t *testing.T) {
	s := lobbyWithPlayers(t, 4)

	if err := s.Leave(2); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(s.Roster()) != 3 {
		t.Fatalf("expected 3 in roster after leave, got %d", len(s.Roster()))
	}
	if err := s.Join(2, "Brin"); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	m := s.member(2)
	if m == nil || m.Left || !m.Alive {
		t.Fatalf("rejoined slot not restored: %+v", m)
	}
	if len(s.Members) != 4 {
		t.Fatalf("rejoin grew the member list: %d", len(s.Members))
	}
}

func TestMidGameLeaveEliminates(t *testing.T) {
	s := votingGame(t, 1)
	if err := s.CastVote(3, 2, false); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if err := s.Leave(3); err != nil {
		t.Fatalf("leave: %v", err)
	}
	m := s.member(3)
	if m == nil || !m.Left || m.Alive {
		t.Fatalf("leaver not eliminated: %+v", m)
	}
	if _, ok := s.Votes[3]; ok {
		t.Fatal("leaver's effective vote not withdrawn")
	}
	if len(s.Living()) != 4 {
		t.Fatalf("expected 4 living, got %d", len(s.Living()))
	}
}

func TestLeaveWithdrawsBallotsForLeaver(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		2: {target: 3},
		4: {target: 3},
		5: {skip: true},
	})

	if err := s.Leave(3); err != nil {
		t.Fatalf("leave: %v", err)
	}
	for _, voter := range []int64{2, 4} {
		if _, ok := s.Votes[voter]; ok {
			t.Fatalf("ballot for the leaver survived, voter %d", voter)
		}
	}
	if _, ok := s.Votes[5]; !ok {
		t.Fatal("unrelated skip ballot withdrawn")
	}
	if d := s.Tally(); d.Ejected != nil {
		t.Fatalf("departed player won the tally: %d", *d.Ejected)
	}
}

func TestTallyIgnoresBallotsForDeadTargets(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		2: {target: 3},
		4: {target: 3},
		5: {target: 1},
	})
	s.member(3).Alive = false

	d := s.Tally()
	if _, ok := d.Counts[3]; ok {
		t.Fatalf("dead target counted: %+v", d.Counts)
	}
	if d.Ejected == nil || *d.Ejected != 1 {
		t.Fatalf("expected player 1 ejected, got %+v", d.Ejected)
	}
}

func TestLeaveRejectedWhenOver(t *testing.T) {
	s := startedGame(t, 4)
	s.Finish(VerdictCrewmatesWin)

	if err := s.Leave(1); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestLeaveRejectsOutsider(t *testing.T) {
	s := lobbyWithPlayers(t, 4)

	if err := s.Leave(99); !errors.Is(err, ErrNotInSession) {
		t.Fatalf("expected ErrNotInSession, got %v", err)
	}
}
