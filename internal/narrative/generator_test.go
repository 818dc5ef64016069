package narrative

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(srv.URL, "gpt-4o-mini", "sk-test", 2*time.Second, testLogger())
}

func TestGenerate(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Rovers struck early."}}]}`)
	})

	text, err := gen.Generate(context.Background(), "Goal - Rovers (player 77)")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Rovers struck early." {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "Goal - Rovers (player 77)" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	})

	if _, err := gen.Generate(context.Background(), "prompt"); err == nil {
		t.Error("Generate with 429 response returned nil error")
	}
}

func TestGenerateNoChoices(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	})

	if _, err := gen.Generate(context.Background(), "prompt"); err == nil {
		t.Error("Generate with empty choices returned nil error")
	}
}

func TestPersonaReplyUsesPersonaPrompt(t *testing.T) {
	var gotReq chatRequest
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		io.WriteString(w, `{"choices":[{"message":{"content":"What kind of question is that?"}}]}`)
	})

	if _, err := gen.PersonaReply(context.Background(), "how was the game?"); err != nil {
		t.Fatalf("PersonaReply: %v", err)
	}
	if gotReq.Messages[0].Content == digestSystemPrompt {
		t.Error("persona reply used the digest system prompt")
	}
}
