package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"impostor-bot/internal/game"
	"impostor-bot/internal/session"
)

const helpText = `🕵️ Impostor Game

/newgame - open a lobby in this room
/join - join the lobby
/leave - leave the game
/begin - start the game (creator only)
/task <what you did> - complete a task
/status - show the current game state
/end - abort the game (creator only)
/profile - your lifetime stats
/leaderboard - top players by XP
/help - this message

Complete tasks, discuss, and vote the impostors out!`

// MessageSender is the slice of the bot API the handlers need; tests plug
// in a fake.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	Bot  MessageSender
	Orch *session.Orchestrator
}

func NewHandler(bot MessageSender, orch *session.Orchestrator) *Handler {
	return &Handler{Bot: bot, Orch: orch}
}

// roomKey maps a chat to its session room. One room per chat; forum topics
// plug into TopicID once the API client carries thread ids.
func roomKey(chatID int64) session.Key {
	return session.Key{ChatID: chatID}
}

func (h *Handler) HandleHelp(msg *tgbotapi.Message) {
	sendMessage(h.Bot, tgbotapi.NewMessage(msg.Chat.ID, helpText))
}

func (h *Handler) HandleNewGame(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	result, err := h.Orch.CreateSession(roomKey(chatID), msg.From.ID, displayName(msg.From))
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	text := "🕵️ A new Impostor Game is open! Use /join to get in."
	if len(result.QueueNotified) > 0 {
		mentions := make([]string, 0, len(result.QueueNotified))
		for _, id := range result.QueueNotified {
			mentions = append(mentions, fmt.Sprintf("[player](tg://user?id=%d)", id))
		}
		text += "\nWaitlist, you're up: " + strings.Join(mentions, " ")
	}
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	sendMessage(h.Bot, reply)
}

func (h *Handler) HandleJoin(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	result, err := h.Orch.JoinSession(roomKey(chatID), msg.From.ID, displayName(msg.From))
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID,
		fmt.Sprintf("%s joined! %d in the lobby.", displayName(msg.From), len(result.Roster))))
}

func (h *Handler) HandleLeave(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	result, err := h.Orch.LeaveSession(roomKey(chatID), msg.From.ID)
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, fmt.Sprintf("%s left the game.", displayName(msg.From))))
	h.announceIfOver(chatID, result)
}

func (h *Handler) HandleBegin(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	result, err := h.Orch.StartSession(roomKey(chatID), msg.From.ID)
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	for playerID, role := range result.Roles {
		text := "🧑‍🚀 You are a CREWMATE. Complete your tasks and find the impostors."
		if role == game.RoleImpostor {
			text = "🔪 You are the IMPOSTOR. Blend in. Fake your tasks."
		}
		sendMessage(h.Bot, tgbotapi.NewMessage(playerID, text))
	}
	announce := fmt.Sprintf("The game begins! Roles are in your DMs.\n%s", result.Narrative)
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, announce))
}

func (h *Handler) HandleTask(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.CommandArguments())
	result, err := h.Orch.CompleteTask(roomKey(chatID), msg.From.ID, "manual", text)
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	line := fmt.Sprintf("✅ Task logged for %s.", displayName(msg.From))
	if result.Narrative != "" {
		line += "\n" + result.Narrative
	}
	if result.TasksRequired > 0 {
		line += fmt.Sprintf("\nCrew progress: %d/%d", result.TasksDone, result.TasksRequired)
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, line))
	h.announceIfOver(chatID, result)
}

func (h *Handler) HandleStatus(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	result, err := h.Orch.Status(roomKey(chatID))
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, formatStatus(result)))
}

func (h *Handler) HandleEnd(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if _, err := h.Orch.EndSession(roomKey(chatID), msg.From.ID); err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, "Game aborted. /newgame to open a fresh lobby."))
}

func (h *Handler) HandleProfile(msg *tgbotapi.Message) {
	profile, err := h.Orch.PlayerProfile(msg.From.ID)
	if err != nil {
		log.Printf("profile lookup failed player_id=%d error=%v", msg.From.ID, err)
		sendMessage(h.Bot, tgbotapi.NewMessage(msg.Chat.ID, "Couldn't load your profile."))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(msg.Chat.ID, formatProfile(profile)))
}

func (h *Handler) HandleLeaderboard(msg *tgbotapi.Message) {
	profiles, err := h.Orch.Leaderboard(10)
	if err != nil {
		log.Printf("leaderboard lookup failed error=%v", err)
		sendMessage(h.Bot, tgbotapi.NewMessage(msg.Chat.ID, "Couldn't load the leaderboard."))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(msg.Chat.ID, formatLeaderboard(profiles)))
}

// HandleVoteCallback resolves "vote_<id>" and "vote_skip" button presses.
func (h *Handler) HandleVoteCallback(callback *tgbotapi.CallbackQuery) {
	if _, err := h.Bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
	chatID := callback.Message.Chat.ID
	voterID := callback.From.ID

	var targetID int64
	skip := callback.Data == "vote_skip"
	if !skip {
		raw := strings.TrimPrefix(callback.Data, "vote_")
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			sendMessage(h.Bot, tgbotapi.NewMessage(chatID, "❌ Invalid vote."))
			return
		}
		targetID = parsed
	}

	result, err := h.Orch.SubmitVote(roomKey(chatID), voterID, targetID, skip)
	if err != nil {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, rejectionText(err)))
		return
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, "✅ Vote recorded."))
	if result.Decision != nil {
		h.announceResolution(chatID, result)
	}
}

// HandleDiscussion logs plain messages sent while a game is running.
func (h *Handler) HandleDiscussion(msg *tgbotapi.Message) {
	if msg.Text == "" {
		return
	}
	err := h.Orch.RecordDiscussion(roomKey(msg.Chat.ID), msg.From.ID, msg.Text)
	if err != nil && err != session.ErrSessionNotFound {
		log.Printf("discussion log failed chat_id=%d error=%v", msg.Chat.ID, err)
	}
}

// NotifyPhase delivers timer-driven phase changes to the room.
func (h *Handler) NotifyPhase(key session.Key, result *session.Result) {
	chatID := key.ChatID
	switch {
	case result.Decision != nil:
		h.announceResolution(chatID, result)
	case result.Phase == game.PhaseVoting:
		text := "🗳️ Voting time — who is the impostor?"
		if result.Narrative != "" {
			text += "\n" + result.Narrative
		}
		reply := tgbotapi.NewMessage(chatID, text)
		reply.ReplyMarkup = voteKeyboard(result)
		sendMessage(h.Bot, reply)
	default:
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, formatStatus(result)))
	}
}

func (h *Handler) announceResolution(chatID int64, result *session.Result) {
	text := formatDecision(result)
	if result.Narrative != "" {
		text += "\n" + result.Narrative
	}
	sendMessage(h.Bot, tgbotapi.NewMessage(chatID, text))
	h.announceIfOver(chatID, result)
}

func (h *Handler) announceIfOver(chatID int64, result *session.Result) {
	if result == nil || result.Phase != game.PhaseOver {
		return
	}
	if verdict := formatVerdict(result.Verdict); verdict != "" {
		sendMessage(h.Bot, tgbotapi.NewMessage(chatID, verdict+"\n"+formatStatus(result)))
	}
}
