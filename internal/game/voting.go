package game

import "sort"

// Decision is the outcome of closing a voting round.
type Decision struct {
	Ejected *int64           `json:"ejected,omitempty"`
	Counts  map[int64]int    `json:"counts"`
	Skips   int              `json:"skips"`
	Voters  map[int64]Ballot `json:"voters,omitempty"`
}

// CastVote records one player's vote for the current round. A revote
// overwrites the earlier choice; the audit log upstream keeps both.
func (s *State) CastVote(voterID, targetID int64, skip bool) error {
	if s.Phase != PhaseVoting {
		return ErrVotingClosed
	}
	voter := s.member(voterID)
	if voter == nil || !voter.Alive || voter.Left {
		return ErrInvalidVoter
	}
	if skip {
		s.Votes[voterID] = Ballot{Skip: true}
		return nil
	}
	target := s.member(targetID)
	if target == nil || !target.Alive || target.Left {
		return ErrInvalidTarget
	}
	s.Votes[voterID] = Ballot{TargetID: targetID}
	return nil
}

// AllVoted reports whether every living player has an effective vote in.
func (s *State) AllVoted() bool {
	if s.Phase != PhaseVoting {
		return false
	}
	for _, m := range s.Living() {
		if _, ok := s.Votes[m.ID]; !ok {
			return false
		}
	}
	return len(s.Living()) > 0
}

// Tally counts the effective votes without applying the result. Skips count
// toward quorum but never eject anyone; a tie among leaders ejects no one.
func (s *State) Tally() Decision {
	decision := Decision{
		Counts: make(map[int64]int),
		Voters: make(map[int64]Ballot, len(s.Votes)),
	}
	for voter, ballot := range s.Votes {
		decision.Voters[voter] = ballot
		if ballot.Skip {
			decision.Skips++
			continue
		}
		// A ballot for a player who has since left or died counts nothing.
		target := s.member(ballot.TargetID)
		if target == nil || !target.Alive || target.Left {
			continue
		}
		decision.Counts[ballot.TargetID]++
	}
	top, tied := 0, false
	var leader int64
	targets := make([]int64, 0, len(decision.Counts))
	for target := range decision.Counts {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	for _, target := range targets {
		count := decision.Counts[target]
		switch {
		case count > top:
			top, leader, tied = count, target, false
		case count == top:
			tied = true
		}
	}
	if top > 0 && !tied {
		decision.Ejected = &leader
	}
	return decision
}

// Resolve closes the voting round: tallies, eliminates the leader if there
// is a strict plurality, and moves the state into resolution.
func (s *State) Resolve() (Decision, error) {
	if s.Phase != PhaseVoting {
		return Decision{}, ErrVotingClosed
	}
	decision := s.Tally()
	if decision.Ejected != nil {
		if m := s.member(*decision.Ejected); m != nil {
			m.Alive = false
		}
	}
	if err := s.Advance(PhaseResolution); err != nil {
		return Decision{}, err
	}
	return decision, nil
}
