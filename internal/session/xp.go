package session

import "impostor-bot/internal/game"

// XP amounts mirror the game's reward sheet: small trickle for
// participating, bigger swings for reads that matter.
const (
	xpVoteCast       = 5
	xpCorrectEject   = 20
	xpWrongEject     = -5
	xpEjectedTraitor = -10
	xpTaskDone       = 10
	xpFakeTask       = 5
	xpCrewmateWin    = 20
	xpImpostorWin    = 30
)

var titleThresholds = []struct {
	XP    int
	Title string
}{
	{0, "Rookie"},
	{30, "Apprentice"},
	{60, "Sleuth"},
	{120, "Veteran"},
	{200, "Mastermind"},
	{300, "Legend"},
}

// TitleForXP returns the highest title the XP total has reached.
func TitleForXP(xp int) string {
	title := titleThresholds[0].Title
	for _, t := range titleThresholds {
		if xp >= t.XP {
			title = t.Title
		}
	}
	return title
}

type xpAward struct {
	PlayerID    int64
	Amount      int
	CorrectVote bool
}

// voteAwards computes the XP fallout of an ejection: rewarding voters who
// caught an impostor, dinging those who condemned a crewmate, and docking
// an ejected impostor.
func voteAwards(s *game.State, decision game.Decision) []xpAward {
	if decision.Ejected == nil {
		return nil
	}
	ejected := *decision.Ejected
	ejectedImpostor := false
	for _, m := range s.Members {
		if m.ID == ejected && m.Role == game.RoleImpostor {
			ejectedImpostor = true
		}
	}
	awards := make([]xpAward, 0, len(decision.Voters)+1)
	for voter, ballot := range decision.Voters {
		if ballot.Skip || ballot.TargetID != ejected {
			continue
		}
		if ejectedImpostor {
			awards = append(awards, xpAward{PlayerID: voter, Amount: xpCorrectEject, CorrectVote: true})
		} else {
			awards = append(awards, xpAward{PlayerID: voter, Amount: xpWrongEject})
		}
	}
	if ejectedImpostor {
		awards = append(awards, xpAward{PlayerID: ejected, Amount: xpEjectedTraitor})
	}
	return awards
}

// winBonus returns the session-end XP bonus for a member, zero for the
// losing side.
func winBonus(role, verdict string) int {
	switch {
	case verdict == game.VerdictCrewmatesWin && role == game.RoleCrewmate:
		return xpCrewmateWin
	case verdict == game.VerdictImpostorsWin && role == game.RoleImpostor:
		return xpImpostorWin
	default:
		return 0
	}
}

// memberOutcome maps a member to its link outcome at session end.
func memberOutcome(role, verdict string) string {
	switch verdict {
	case game.VerdictCrewmatesWin:
		if role == game.RoleCrewmate {
			return "win"
		}
		return "lose"
	case game.VerdictImpostorsWin:
		if role == game.RoleImpostor {
			return "win"
		}
		return "lose"
	default:
		return "lose"
	}
}
