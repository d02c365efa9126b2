package game

// Join adds a player to the lobby. A player who left the lobby earlier may
// rejoin; their old slot is reused.
func (s *State) Join(id int64, name string) error {
	if s.Phase != PhaseLobby {
		return ErrSessionNotJoinable
	}
	if m := s.member(id); m != nil {
		if !m.Left {
			return ErrAlreadyJoined
		}
		if len(s.Roster()) >= s.Config.MaxPlayers {
			return ErrSessionFull
		}
		m.Left = false
		m.Alive = true
		m.Name = name
		return nil
	}
	if len(s.Roster()) >= s.Config.MaxPlayers {
		return ErrSessionFull
	}
	s.Members = append(s.Members, Member{ID: id, Name: name, Alive: true})
	return nil
}

// Leave removes a player. Allowed any time before the game is over; leaving
// mid-game counts as an elimination but keeps the vote history intact.
func (s *State) Leave(id int64) error {
	if s.Phase == PhaseOver {
		return ErrIllegalTransition
	}
	m := s.member(id)
	if m == nil || m.Left {
		return ErrNotInSession
	}
	m.Left = true
	m.Alive = false
	delete(s.Votes, id)
	// Ballots for the leaver are withdrawn too; those voters may revote.
	for voter, ballot := range s.Votes {
		if !ballot.Skip && ballot.TargetID == id {
			delete(s.Votes, voter)
		}
	}
	return nil
}
