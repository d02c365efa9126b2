package game

// Rules is the capability set a game type must provide. Adding a new game
// type means adding a variant here, not subclassing anything.
type Rules interface {
	Start(*State) error
	Advance(*State, string) error
	CheckWin(*State) string
}

const TypeImpostor = "impostor"

type impostorRules struct{}

func (impostorRules) Start(s *State) error                  { return s.Start() }
func (impostorRules) Advance(s *State, target string) error { return s.Advance(target) }
func (impostorRules) CheckWin(s *State) string              { return s.CheckWin() }

var rulesByType = map[string]Rules{
	TypeImpostor: impostorRules{},
}

// RulesFor resolves the rules for a game type.
func RulesFor(gameType string) (Rules, bool) {
	rules, ok := rulesByType[gameType]
	return rules, ok
}
