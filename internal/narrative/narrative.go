// Package narrative wraps the Hugging Face inference API behind a small
// client that can only ever embellish displayed copy. Every call has a
// bounded timeout and a static fallback; a failure here never reaches the
// game state.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type PromptKind string

const (
	KindPhaseIntro  PromptKind = "phase_intro"
	KindTaskFlavor  PromptKind = "task_flavor"
	KindElimination PromptKind = "elimination"
	KindGameOver    PromptKind = "game_over"
)

// Context carries the display facts a prompt may reference.
type Context struct {
	Phase      string
	Round      int
	PlayerName string
	Verdict    string
}

var fallbacks = map[PromptKind]string{
	KindPhaseIntro:  "A new phase begins. Stay sharp.",
	KindTaskFlavor:  "Another task ticks off the checklist.",
	KindElimination: "The airlock hisses shut. The vote is final.",
	KindGameOver:    "The game is over. Well played, everyone.",
}

// Fallback returns the static line used when generation is unavailable.
func Fallback(kind PromptKind) string {
	if text, ok := fallbacks[kind]; ok {
		return text
	}
	return "The story continues."
}

const defaultBaseURL = "https://api-inference.huggingface.co/models/"

type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// NewClient builds a client for the configured model. An empty API key
// yields a client that always falls back.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type inferenceResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Generate asks the model for one line of flavor text.
func (c *Client) Generate(ctx context.Context, kind PromptKind, pc Context) (string, error) {
	if c == nil || strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("narrative API key is not configured")
	}
	prompt := buildPrompt(kind, pc)
	payload, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: map[string]any{
			"max_new_tokens":   60,
			"temperature":      0.9,
			"return_full_text": false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build narrative request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+c.model, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build narrative request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach narrative service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read narrative response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("narrative request failed (%d)", resp.StatusCode)
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse narrative response")
	}
	if len(parsed) == 0 {
		return "", errors.New("narrative service returned nothing")
	}
	text := firstLine(parsed[0].GeneratedText)
	if text == "" {
		return "", errors.New("narrative service returned empty text")
	}
	return text, nil
}

// GenerateOrFallback runs Generate within its timeout and degrades to the
// static line on any failure. It never returns an error.
func (c *Client) GenerateOrFallback(ctx context.Context, kind PromptKind, pc Context) string {
	text, err := c.Generate(ctx, kind, pc)
	if err != nil {
		return Fallback(kind)
	}
	return text
}

func buildPrompt(kind PromptKind, pc Context) string {
	switch kind {
	case KindPhaseIntro:
		return fmt.Sprintf("Write one short dramatic line announcing the %s phase of round %d in a social deduction game.", pc.Phase, pc.Round)
	case KindTaskFlavor:
		return fmt.Sprintf("Write one short line describing crew member %s finishing a maintenance task on a spaceship.", pc.PlayerName)
	case KindElimination:
		return fmt.Sprintf("Write one short dramatic line about %s being ejected from the ship after a vote.", pc.PlayerName)
	case KindGameOver:
		return fmt.Sprintf("Write one short closing line for a social deduction game that ended with verdict %q.", pc.Verdict)
	default:
		return "Write one short line of science fiction flavor text."
	}
}

func firstLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"`)
		if line != "" {
			return line
		}
	}
	return ""
}
