package game

// CheckWin evaluates the win conditions after an elimination or task
// completion. Impostor elimination and the crewmate task threshold are
// checked before the parity rule; parity only matters while both of those
// are still pending.
func (s *State) CheckWin() string {
	impostors, crewmates := s.livingCounts()
	if impostors == 0 {
		return VerdictCrewmatesWin
	}
	if s.TasksRequired > 0 && s.TasksDone >= s.TasksRequired {
		return VerdictCrewmatesWin
	}
	if impostors >= crewmates {
		return VerdictImpostorsWin
	}
	return VerdictNone
}

// Finish records the verdict and moves straight to the terminal phase.
// Win conditions can fire outside the voting cycle (a mid-game leave, the
// task threshold), so this bypasses the transition table on purpose.
func (s *State) Finish(verdict string) {
	s.Verdict = verdict
	s.Phase = PhaseOver
}

// CompleteTask counts a crewmate task completion toward the task-threshold
// win. Impostor "tasks" are fake and never counted.
func (s *State) CompleteTask(playerID int64) error {
	if s.Phase != PhaseAction {
		return ErrIllegalTransition
	}
	m := s.member(playerID)
	if m == nil || !m.Alive || m.Left {
		return ErrNotInSession
	}
	if m.Role == RoleCrewmate {
		s.TasksDone++
	}
	return nil
}
