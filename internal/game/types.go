package game

const (
	PhaseLobby      = "lobby"
	PhaseRoles      = "roles"
	PhaseAction     = "action"
	PhaseVoting     = "voting"
	PhaseResolution = "resolution"
	PhaseOver       = "over"
)

const (
	RoleCrewmate = "crewmate"
	RoleImpostor = "impostor"
)

const (
	VerdictNone         = ""
	VerdictCrewmatesWin = "crewmates_win"
	VerdictImpostorsWin = "impostors_win"
)

// Config holds the tunables the state machine needs. It is embedded in the
// state so a recovered session keeps the rules it started with.
type Config struct {
	MinPlayers       int `json:"min_players"`
	MaxPlayers       int `json:"max_players"`
	ImpostorRatio    int `json:"impostor_ratio"`
	TasksPerCrewmate int `json:"tasks_per_crewmate"`
}

func DefaultConfig() Config {
	return Config{
		MinPlayers:       4,
		MaxPlayers:       10,
		ImpostorRatio:    5,
		TasksPerCrewmate: 2,
	}
}

// Member is a player's in-game record: role, liveness and leave flag.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Alive bool   `json:"alive"`
	Left  bool   `json:"left,omitempty"`
}

// Ballot is one player's effective vote for the current round.
type Ballot struct {
	TargetID int64 `json:"target_id,omitempty"`
	Skip     bool  `json:"skip,omitempty"`
}

// State is the full in-memory game state for one session. It serializes to
// the session snapshot and back without loss.
type State struct {
	Phase         string           `json:"phase"`
	Round         int              `json:"round"`
	Verdict       string           `json:"verdict,omitempty"`
	Members       []Member         `json:"members"`
	Votes         map[int64]Ballot `json:"votes,omitempty"`
	TasksDone     int              `json:"tasks_done"`
	TasksRequired int              `json:"tasks_required"`
	Config        Config           `json:"config"`
}

// NewState returns a lobby-phase state with the given rules.
func NewState(cfg Config) *State {
	return &State{
		Phase:  PhaseLobby,
		Config: cfg,
		Votes:  make(map[int64]Ballot),
	}
}

func (s *State) member(id int64) *Member {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return &s.Members[i]
		}
	}
	return nil
}

// Living returns the members still in play: joined, not eliminated, not left.
func (s *State) Living() []Member {
	living := make([]Member, 0, len(s.Members))
	for _, m := range s.Members {
		if m.Alive && !m.Left {
			living = append(living, m)
		}
	}
	return living
}

// Roster returns every member that has not left, regardless of liveness.
func (s *State) Roster() []Member {
	roster := make([]Member, 0, len(s.Members))
	for _, m := range s.Members {
		if !m.Left {
			roster = append(roster, m)
		}
	}
	return roster
}

func (s *State) livingCounts() (impostors, crewmates int) {
	for _, m := range s.Living() {
		switch m.Role {
		case RoleImpostor:
			impostors++
		case RoleCrewmate:
			crewmates++
		}
	}
	return impostors, crewmates
}

// Over reports whether the session reached its terminal phase.
func (s *State) Over() bool {
	return s.Phase == PhaseOver
}
