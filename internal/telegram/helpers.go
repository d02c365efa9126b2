package telegram

import (
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"impostor-bot/internal/game"
	"impostor-bot/internal/session"
)

func sendMessage(bot MessageSender, msg tgbotapi.Chattable) {
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

// rejectionText maps core errors to user-facing copy. Anything unmapped is
// an internal failure and gets a generic line.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, game.ErrSessionFull):
		return "The room is full. You're on the waitlist for the next game."
	case errors.Is(err, game.ErrAlreadyJoined):
		return "You already joined this game."
	case errors.Is(err, game.ErrSessionNotJoinable):
		return "This game already started. Wait for the next lobby."
	case errors.Is(err, game.ErrInsufficientPlayers):
		return "Not enough players yet. Get more people to /join first."
	case errors.Is(err, game.ErrIllegalTransition):
		return "You can't do that right now."
	case errors.Is(err, game.ErrInvalidTarget):
		return "That player can't be voted. Pick someone still in the game."
	case errors.Is(err, game.ErrInvalidVoter):
		return "Only living players can vote."
	case errors.Is(err, game.ErrVotingClosed):
		return "Voting isn't open right now."
	case errors.Is(err, game.ErrNotInSession):
		return "You're not in this game."
	case errors.Is(err, session.ErrSessionNotFound):
		return "No game in this room. Start one with /newgame."
	case errors.Is(err, session.ErrSessionExists):
		return "A game is already open here. Use /join."
	case errors.Is(err, session.ErrNotCreator):
		return "Only the game creator can do that."
	default:
		return "Something went wrong. Try again."
	}
}

func phaseLabel(phase string) string {
	switch phase {
	case game.PhaseLobby:
		return "Lobby"
	case game.PhaseRoles:
		return "Role assignment"
	case game.PhaseAction:
		return "Tasks & discussion"
	case game.PhaseVoting:
		return "Voting"
	case game.PhaseResolution:
		return "Resolution"
	case game.PhaseOver:
		return "Game over"
	default:
		return phase
	}
}

func formatStatus(result *session.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s", phaseLabel(result.Phase))
	if result.Round > 0 {
		fmt.Fprintf(&b, " (round %d)", result.Round)
	}
	b.WriteString("\n")
	if result.TasksRequired > 0 {
		fmt.Fprintf(&b, "Tasks: %d/%d\n", result.TasksDone, result.TasksRequired)
	}
	fmt.Fprintf(&b, "Players (%d alive):\n", result.LivingCount)
	for _, entry := range result.Roster {
		marker := "🟢"
		if !entry.Alive {
			marker = "💀"
		}
		fmt.Fprintf(&b, "%s %s", marker, entry.Name)
		if entry.Role != "" {
			fmt.Fprintf(&b, " (%s)", entry.Role)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDecision(result *session.Result) string {
	decision := result.Decision
	if decision == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("🗳 Votes are in.\n")
	for target, count := range decision.Counts {
		name := result.PlayerName(target)
		if name == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %d\n", name, count)
	}
	if decision.Skips > 0 {
		fmt.Fprintf(&b, "skip: %d\n", decision.Skips)
	}
	if decision.Ejected != nil {
		fmt.Fprintf(&b, "%s was ejected!", result.PlayerName(*decision.Ejected))
	} else {
		b.WriteString("No one was ejected.")
	}
	return b.String()
}

func formatVerdict(verdict string) string {
	switch verdict {
	case game.VerdictCrewmatesWin:
		return "🎉 Crewmates win!"
	case game.VerdictImpostorsWin:
		return "💀 Impostors win!"
	default:
		return ""
	}
}

// voteKeyboard lists every living player plus a skip button.
func voteKeyboard(result *session.Result) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(result.Roster)+1)
	for _, entry := range result.Roster {
		if !entry.Alive {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(entry.Name, fmt.Sprintf("vote_%d", entry.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Skip Vote", "vote_skip"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatProfile(p *session.Profile) string {
	if p == nil {
		return "No profile yet. Join a game first!"
	}
	return fmt.Sprintf("%s — %s\nXP: %d\nWins: %d  Losses: %d\nTasks done: %d",
		p.Name, p.Title, p.XP, p.Wins, p.Losses, p.TasksDone)
}

func formatLeaderboard(profiles []session.Profile) string {
	if len(profiles) == 0 {
		return "No players on the board yet."
	}
	var b strings.Builder
	b.WriteString("🏆 Leaderboard\n")
	for i, p := range profiles {
		fmt.Fprintf(&b, "%d. %s — %d XP (%s)\n", i+1, p.Name, p.XP, p.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return "player"
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.UserName != "" {
		return user.UserName
	}
	return fmt.Sprintf("player %d", user.ID)
}
