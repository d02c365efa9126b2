package game

import "errors"

// Precondition failures surfaced to the transport as rejected actions.
// None of them leaves the state mutated.
var (
	ErrSessionFull         = errors.New("session is full")
	ErrAlreadyJoined       = errors.New("player already joined")
	ErrSessionNotJoinable  = errors.New("session is not joinable")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrIllegalTransition   = errors.New("illegal phase transition")
	ErrInvalidTarget       = errors.New("vote target is not a living player")
	ErrInvalidVoter        = errors.New("voter is not a living player")
	ErrVotingClosed        = errors.New("voting is not open")
	ErrNotInSession        = errors.New("player is not in the session")
)
