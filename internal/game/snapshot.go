package game

import "encoding/json"

// EncodeSnapshot serializes the full state for the session store.
func EncodeSnapshot(s *State) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot rebuilds a state from a persisted snapshot. An empty
// snapshot yields a fresh lobby with default rules, which is what a session
// persisted before its first start looks like.
func DecodeSnapshot(data []byte) (*State, error) {
	if len(data) == 0 {
		return NewState(DefaultConfig()), nil
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Votes == nil {
		s.Votes = make(map[int64]Ballot)
	}
	if s.Phase == "" {
		s.Phase = PhaseLobby
	}
	return &s, nil
}
