package game

import "math/rand"

type transitionMode int

const (
	transitionPreview transitionMode = iota
	transitionApply
)

type phaseTransition struct {
	advance func(s *State, target string, mode transitionMode) error
}

var phaseTransitions = map[string]phaseTransition{
	PhaseLobby: {
		advance: func(s *State, target string, mode transitionMode) error {
			if target != PhaseRoles {
				return ErrIllegalTransition
			}
			if mode == transitionPreview {
				return nil
			}
			s.Phase = PhaseRoles
			return nil
		},
	},
	PhaseRoles: {
		advance: func(s *State, target string, mode transitionMode) error {
			if target != PhaseAction {
				return ErrIllegalTransition
			}
			if mode == transitionPreview {
				return nil
			}
			if s.Round == 0 {
				s.Round = 1
			}
			s.Phase = PhaseAction
			return nil
		},
	},
	PhaseAction: {
		advance: func(s *State, target string, mode transitionMode) error {
			if target != PhaseVoting {
				return ErrIllegalTransition
			}
			if mode == transitionPreview {
				return nil
			}
			s.Votes = make(map[int64]Ballot)
			s.Phase = PhaseVoting
			return nil
		},
	},
	PhaseVoting: {
		advance: func(s *State, target string, mode transitionMode) error {
			if target != PhaseResolution {
				return ErrIllegalTransition
			}
			if mode == transitionPreview {
				return nil
			}
			s.Phase = PhaseResolution
			return nil
		},
	},
	PhaseResolution: {
		advance: func(s *State, target string, mode transitionMode) error {
			switch target {
			case PhaseAction:
				if mode == transitionPreview {
					return nil
				}
				s.Round++
				s.Phase = PhaseAction
				return nil
			case PhaseOver:
				if mode == transitionPreview {
					return nil
				}
				s.Phase = PhaseOver
				return nil
			default:
				return ErrIllegalTransition
			}
		},
	},
}

// Advance moves the state to target. On an illegal trigger the state is
// left untouched and ErrIllegalTransition is returned.
func (s *State) Advance(target string) error {
	transition, ok := phaseTransitions[s.Phase]
	if !ok {
		return ErrIllegalTransition
	}
	return transition.advance(s, target, transitionApply)
}

// CanAdvance reports whether Advance(target) would succeed, without mutating.
func (s *State) CanAdvance(target string) bool {
	transition, ok := phaseTransitions[s.Phase]
	if !ok {
		return false
	}
	return transition.advance(s, target, transitionPreview) == nil
}

// Start assigns roles and walks the lobby through role assignment into the
// first action round. The impostor count is fixed here and never changes.
func (s *State) Start() error {
	if s.Phase != PhaseLobby {
		return ErrIllegalTransition
	}
	// Three players is the floor regardless of config: with two, impostor
	// parity holds the moment roles are dealt.
	roster := s.Roster()
	if len(roster) < s.Config.MinPlayers || len(roster) < 3 {
		return ErrInsufficientPlayers
	}
	s.assignRoles()
	_, crewmates := s.livingCounts()
	s.TasksRequired = crewmates * s.Config.TasksPerCrewmate
	if err := s.Advance(PhaseRoles); err != nil {
		return err
	}
	return s.Advance(PhaseAction)
}

// assignRoles picks impostors at random. Count scales with roster size but
// always leaves impostors strictly outnumbered.
func (s *State) assignRoles() {
	ids := make([]int, 0, len(s.Members))
	for i := range s.Members {
		if !s.Members[i].Left {
			ids = append(ids, i)
		}
	}
	count := ImpostorCount(len(ids), s.Config.ImpostorRatio)
	rand.Shuffle(len(ids), func(a, b int) { ids[a], ids[b] = ids[b], ids[a] })
	for n, i := range ids {
		if n < count {
			s.Members[i].Role = RoleImpostor
		} else {
			s.Members[i].Role = RoleCrewmate
		}
	}
}

// ImpostorCount returns the impostor count for a roster of n: one impostor
// per ratio players, at least one, and always fewer impostors than crewmates
// for any startable roster (Start rejects fewer than three players).
func ImpostorCount(n, ratio int) int {
	if n < 2 {
		return 0
	}
	count := 1
	if ratio > 0 && n/ratio > count {
		count = n / ratio
	}
	if maximum := (n - 1) / 2; count > maximum {
		count = maximum
	}
	if count < 1 {
		count = 1
	}
	return count
}
