package narrative

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", "test-model", 2*time.Second)
	c.baseURL = srv.URL + "/"
	return c
}

func TestGenerateReturnsFirstLine(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer token: %q", got)
		}
		if r.URL.Path != "/test-model" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		w.Write([]byte(`[{"generated_text":"\n \"The reactor hums back to life.\" \nSecond line ignored."}]`))
	})

	text, err := c.Generate(context.Background(), KindTaskFlavor, Context{PlayerName: "Ada"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "The reactor hums back to life." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestGenerateFailsWithoutAPIKey(t *testing.T) {
	c := NewClient("", "test-model", time.Second)

	if _, err := c.Generate(context.Background(), KindPhaseIntro, Context{}); err == nil {
		t.Fatal("expected error with empty API key")
	}
}

func TestGenerateFailsOnServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	})

	if _, err := c.Generate(context.Background(), KindElimination, Context{PlayerName: "Brin"}); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestGenerateFailsOnEmptyResult(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	if _, err := c.Generate(context.Background(), KindGameOver, Context{Verdict: "crewmates_win"}); err == nil {
		t.Fatal("expected error on empty result")
	}
}

func TestGenerateOrFallbackNeverErrors(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	text := c.GenerateOrFallback(context.Background(), KindElimination, Context{PlayerName: "Cleo"})
	if text != Fallback(KindElimination) {
		t.Fatalf("expected fallback line, got %q", text)
	}
}

func TestFallbackCoversEveryKind(t *testing.T) {
	kinds := []PromptKind{KindPhaseIntro, KindTaskFlavor, KindElimination, KindGameOver, PromptKind("unknown")}
	for _, kind := range kinds {
		if Fallback(kind) == "" {
			t.Errorf("empty fallback for %q", kind)
		}
	}
}
