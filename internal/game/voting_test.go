package game

import (
	"errors"
	"testing"
)

// votingGame deals fixed roles so tests do not depend on the shuffle.
func votingGame(t *testing.T, impostorIDs ...int64) *State {
	t.Helper()
	s := startedGame(t, 5)
	impostors := make(map[int64]bool, len(impostorIDs))
	for _, id := range impostorIDs {
		impostors[id] = true
	}
	for i := range s.Members {
		if impostors[s.Members[i].ID] {
			s.Members[i].Role = RoleImpostor
		} else {
			s.Members[i].Role = RoleCrewmate
		}
	}
	mustAdvance(t, s, PhaseVoting)
	return s
}

type ballot struct {
	target int64
	skip   bool
}

func castAll(t *testing.T, s *State, ballots map[int64]ballot) {
	t.Helper()
	for voter, b := range ballots {
		if err := s.CastVote(voter, b.target, b.skip); err != nil {
			t.Fatalf("vote by %d: %v", voter, err)
		}
	}
}

func TestCastVoteValidation(t *testing.T) {
	s := votingGame(t, 1)

	if err := s.CastVote(99, 1, false); !errors.Is(err, ErrInvalidVoter) {
		t.Fatalf("outsider vote: expected ErrInvalidVoter, got %v", err)
	}
	if err := s.CastVote(2, 99, false); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("absent target: expected ErrInvalidTarget, got %v", err)
	}
	if err := s.CastVote(2, 0, true); err != nil {
		t.Fatalf("skip vote: %v", err)
	}
	mustAdvance(t, s, PhaseResolution)
	if err := s.CastVote(3, 1, false); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("vote outside voting: expected ErrVotingClosed, got %v", err)
	}
}

func TestDeadPlayersCannotVoteOrBeVoted(t *testing.T) {
	s := votingGame(t, 1)
	s.member(5).Alive = false

	if err := s.CastVote(5, 1, false); !errors.Is(err, ErrInvalidVoter) {
		t.Fatalf("dead voter: expected ErrInvalidVoter, got %v", err)
	}
	if err := s.CastVote(2, 5, false); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("dead target: expected ErrInvalidTarget, got %v", err)
	}
}

func TestRevoteOverwrites(t *testing.T) {
	s := votingGame(t, 1)

	if err := s.CastVote(2, 1, false); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := s.CastVote(2, 3, false); err != nil {
		t.Fatalf("revote: %v", err)
	}
	if len(s.Votes) != 1 {
		t.Fatalf("expected one effective ballot, got %d", len(s.Votes))
	}
	if s.Votes[2].TargetID != 3 {
		t.Fatalf("revote did not overwrite: ballot %+v", s.Votes[2])
	}
}

func TestTallyMajorityEjects(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		1: {target: 2},
		2: {target: 1},
		3: {target: 1},
		4: {target: 1},
		5: {skip: true},
	})

	d := s.Tally()
	if d.Ejected == nil || *d.Ejected != 1 {
		t.Fatalf("expected player 1 ejected, got %+v", d.Ejected)
	}
	if d.Counts[1] != 3 || d.Counts[2] != 1 || d.Skips != 1 {
		t.Fatalf("unexpected counts: %+v skips=%d", d.Counts, d.Skips)
	}
}

func TestTallyTieEjectsNobody(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		1: {target: 2},
		2: {target: 1},
		3: {target: 2},
		4: {target: 1},
		5: {skip: true},
	})

	if d := s.Tally(); d.Ejected != nil {
		t.Fatalf("tie should eject nobody, got %d", *d.Ejected)
	}
}

func TestTallySkipPluralityEjectsNobody(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		1: {skip: true},
		2: {skip: true},
		3: {skip: true},
		4: {target: 1},
	})

	if d := s.Tally(); d.Ejected != nil {
		t.Fatalf("skip plurality should eject nobody, got %d", *d.Ejected)
	}
}

func TestResolveKeepsRosterConsistent(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{
		2: {target: 1},
		3: {target: 1},
		4: {target: 1},
	})

	d, err := s.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.Ejected == nil || *d.Ejected != 1 {
		t.Fatalf("expected player 1 ejected, got %+v", d.Ejected)
	}
	if m := s.member(1); m == nil || m.Alive {
		t.Fatal("ejected player still alive")
	}
	impostors, crewmates := s.livingCounts()
	if impostors+crewmates != len(s.Living()) {
		t.Fatalf("living counts diverge from roster: %d+%d != %d",
			impostors, crewmates, len(s.Living()))
	}
	if s.Phase != PhaseResolution {
		t.Fatalf("expected resolution phase, got %q", s.Phase)
	}
}

func TestNewRoundClearsBallots(t *testing.T) {
	s := votingGame(t, 1)
	castAll(t, s, map[int64]ballot{2: {skip: true}})

	if _, err := s.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	mustAdvance(t, s, PhaseAction, PhaseVoting)
	if len(s.Votes) != 0 {
		t.Fatalf("stale ballots in new round: %v", s.Votes)
	}
}

func TestAllVoted(t *testing.T) {
	s := votingGame(t, 1)
	if s.AllVoted() {
		t.Fatal("no ballots yet")
	}
	castAll(t, s, map[int64]ballot{
		1: {target: 2},
		2: {skip: true},
		3: {skip: true},
		4: {skip: true},
		5: {skip: true},
	})
	if !s.AllVoted() {
		t.Fatal("every living member voted")
	}
}
