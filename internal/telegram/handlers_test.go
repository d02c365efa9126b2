package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"impostor-bot/internal/config"
	"impostor-bot/internal/session"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.sent = append(f.sent, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the plain message bodies sent so far.
func (f *fakeSender) texts() []string {
	out := make([]string, 0, len(f.sent))
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts()
	if len(texts) == 0 {
		t.Fatal("no messages sent")
	}
	return texts[len(texts)-1]
}

func (f *fakeSender) reset() {
	f.sent = nil
}

const testChatID = int64(-100200)

func testHandler() (*Handler, *fakeSender) {
	cfg := config.Default()
	cfg.ActionDurationSeconds = 0
	cfg.VotingDurationSeconds = 0
	orch := session.New(nil, cfg, nil)
	sender := &fakeSender{}
	return NewHandler(sender, orch), sender
}

func command(userID int64, name, text string) *tgbotapi.Message {
	full := "/" + name
	if text != "" {
		full += " " + text
	}
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChatID},
		From: &tgbotapi.User{ID: userID, FirstName: userName(userID)},
		Text: full,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(name) + 1},
		},
	}
}

func userName(id int64) string {
	names := map[int64]string{1: "Ada", 2: "Brin", 3: "Cleo", 4: "Dex"}
	if name, ok := names[id]; ok {
		return name
	}
	return "player"
}

func voteCallback(userID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID, FirstName: userName(userID)},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
		Data:    data,
	}
}

// setupGame walks a lobby of four through /newgame, /join and /begin.
func setupGame(t *testing.T, h *Handler, sender *fakeSender) {
	t.Helper()
	h.HandleNewGame(command(1, "newgame", ""))
	for id := int64(1); id <= 4; id++ {
		h.HandleJoin(command(id, "join", ""))
	}
	h.HandleBegin(command(1, "begin", ""))
	for _, text := range sender.texts() {
		if strings.Contains(text, "went wrong") || strings.Contains(text, "can't") {
			t.Fatalf("setup hit a rejection: %q", text)
		}
	}
	sender.reset()
}

func TestNewGameAndJoinFlow(t *testing.T) {
	h, sender := testHandler()

	h.HandleNewGame(command(1, "newgame", ""))
	if got := sender.lastText(t); !strings.Contains(got, "/join") {
		t.Fatalf("lobby announcement missing: %q", got)
	}

	h.HandleJoin(command(2, "join", ""))
	if got := sender.lastText(t); !strings.Contains(got, "Brin joined") {
		t.Fatalf("join announcement missing: %q", got)
	}

	h.HandleJoin(command(2, "join", ""))
	if got := sender.lastText(t); !strings.Contains(got, "already joined") {
		t.Fatalf("duplicate join not rejected: %q", got)
	}
}

func TestNewGameRejectedWhenLobbyOpen(t *testing.T) {
	h, sender := testHandler()
	h.HandleNewGame(command(1, "newgame", ""))

	h.HandleNewGame(command(2, "newgame", ""))
	if got := sender.lastText(t); !strings.Contains(got, "already open") {
		t.Fatalf("second lobby not rejected: %q", got)
	}
}

func TestBeginDeliversRolesPrivately(t *testing.T) {
	h, sender := testHandler()
	h.HandleNewGame(command(1, "newgame", ""))
	for id := int64(1); id <= 4; id++ {
		h.HandleJoin(command(id, "join", ""))
	}
	sender.reset()

	h.HandleBegin(command(1, "begin", ""))

	dms := 0
	for _, c := range sender.sent {
		msg, ok := c.(tgbotapi.MessageConfig)
		if !ok {
			continue
		}
		if msg.ChatID > 0 {
			dms++
			if !strings.Contains(msg.Text, "CREWMATE") && !strings.Contains(msg.Text, "IMPOSTOR") {
				t.Fatalf("DM without a role: %q", msg.Text)
			}
		}
	}
	if dms != 4 {
		t.Fatalf("expected 4 role DMs, got %d", dms)
	}
	if got := sender.lastText(t); !strings.Contains(got, "game begins") {
		t.Fatalf("public announcement missing: %q", got)
	}
}

func TestBeginRejectedForNonCreator(t *testing.T) {
	h, sender := testHandler()
	h.HandleNewGame(command(1, "newgame", ""))
	for id := int64(1); id <= 4; id++ {
		h.HandleJoin(command(id, "join", ""))
	}
	sender.reset()

	h.HandleBegin(command(2, "begin", ""))
	if got := sender.lastText(t); !strings.Contains(got, "creator") {
		t.Fatalf("non-creator begin not rejected: %q", got)
	}
}

func TestTaskCommandReportsProgress(t *testing.T) {
	h, sender := testHandler()
	setupGame(t, h, sender)

	// Someone is a crewmate; a crewmate task moves the counter. Find one by
	// trying until the progress line moves.
	moved := false
	for id := int64(1); id <= 4 && !moved; id++ {
		sender.reset()
		h.HandleTask(command(id, "task", "fixed the wiring"))
		got := sender.lastText(t)
		if !strings.Contains(got, "Task logged") {
			t.Fatalf("task not logged: %q", got)
		}
		if strings.Contains(got, "Crew progress: 1/") {
			moved = true
		}
	}
	if !moved {
		t.Fatal("no crewmate task moved the counter")
	}
}

func TestVoteCallbackFlow(t *testing.T) {
	h, sender := testHandler()
	setupGame(t, h, sender)
	if _, err := h.Orch.AdvancePhase(session.Key{ChatID: testChatID}, "voting"); err != nil {
		t.Fatalf("open voting: %v", err)
	}

	h.HandleVoteCallback(voteCallback(1, "vote_2"))
	found := false
	for _, text := range sender.texts() {
		if strings.Contains(text, "Vote recorded") {
			found = true
		}
	}
	if !found {
		t.Fatalf("vote not acknowledged: %v", sender.texts())
	}

	sender.reset()
	h.HandleVoteCallback(voteCallback(1, "vote_bogus"))
	if got := sender.lastText(t); !strings.Contains(got, "Invalid vote") {
		t.Fatalf("bogus callback not rejected: %q", got)
	}

	sender.reset()
	h.HandleVoteCallback(voteCallback(99, "vote_skip"))
	if got := sender.lastText(t); !strings.Contains(got, "living players") {
		t.Fatalf("outsider vote not rejected: %q", got)
	}
}

func TestVoteResolutionAnnounced(t *testing.T) {
	h, sender := testHandler()
	setupGame(t, h, sender)
	if _, err := h.Orch.AdvancePhase(session.Key{ChatID: testChatID}, "voting"); err != nil {
		t.Fatalf("open voting: %v", err)
	}

	h.HandleVoteCallback(voteCallback(1, "vote_skip"))
	h.HandleVoteCallback(voteCallback(2, "vote_skip"))
	h.HandleVoteCallback(voteCallback(3, "vote_skip"))
	sender.reset()
	h.HandleVoteCallback(voteCallback(4, "vote_skip"))

	announced := false
	for _, text := range sender.texts() {
		if strings.Contains(text, "No one was ejected") {
			announced = true
		}
	}
	if !announced {
		t.Fatalf("resolution not announced: %v", sender.texts())
	}
}

func TestStatusCommand(t *testing.T) {
	h, sender := testHandler()

	h.HandleStatus(command(1, "status", ""))
	if got := sender.lastText(t); !strings.Contains(got, "/newgame") {
		t.Fatalf("missing-session status not explained: %q", got)
	}

	setupGame(t, h, sender)
	h.HandleStatus(command(1, "status", ""))
	got := sender.lastText(t)
	if !strings.Contains(got, "Tasks & discussion") || !strings.Contains(got, "4 alive") {
		t.Fatalf("status incomplete: %q", got)
	}
	if strings.Contains(got, "impostor") || strings.Contains(got, "crewmate") {
		t.Fatalf("status leaks living roles: %q", got)
	}
}

func TestEndCommandAborts(t *testing.T) {
	h, sender := testHandler()
	setupGame(t, h, sender)

	h.HandleEnd(command(2, "end", ""))
	if got := sender.lastText(t); !strings.Contains(got, "creator") {
		t.Fatalf("non-creator end not rejected: %q", got)
	}

	h.HandleEnd(command(1, "end", ""))
	if got := sender.lastText(t); !strings.Contains(got, "aborted") {
		t.Fatalf("abort not announced: %q", got)
	}
}

func TestVoteKeyboardSkipsDead(t *testing.T) {
	result := &session.Result{
		Roster: []session.RosterEntry{
			{ID: 1, Name: "Ada", Alive: true},
			{ID: 2, Name: "Brin", Alive: false},
			{ID: 3, Name: "Cleo", Alive: true},
		},
	}

	keyboard := voteKeyboard(result)
	if len(keyboard.InlineKeyboard) != 3 {
		t.Fatalf("expected 2 player rows plus skip, got %d", len(keyboard.InlineKeyboard))
	}
	last := keyboard.InlineKeyboard[len(keyboard.InlineKeyboard)-1][0]
	if last.CallbackData == nil || *last.CallbackData != "vote_skip" {
		t.Fatalf("last row is not the skip button: %+v", last)
	}
}

func TestRejectionTextCoversUnknown(t *testing.T) {
	if got := rejectionText(session.ErrSessionNotFound); !strings.Contains(got, "/newgame") {
		t.Fatalf("unexpected copy: %q", got)
	}
	if got := rejectionText(errDummy{}); !strings.Contains(got, "went wrong") {
		t.Fatalf("unknown errors need a generic line: %q", got)
	}
}

type errDummy struct{}

func (errDummy) Error() string { return "boom" }
