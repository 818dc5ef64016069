package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Generator produces narrative text from a prompt. Fallible and best-effort:
// callers keep their previous text when a call fails.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const digestSystemPrompt = "You are a football commentator. Summarise the " +
	"following passage of play as a short, vivid match report paragraph."

const personaSystemPrompt = `You are a football player and you have just finished a match. You are now going to answer a series of questions about the match.
Your personality is like Wayne Rooney, or Marcus Rashford
You are extremely irritable`

// OpenAIClient calls the OpenAI chat completions endpoint over plain HTTP.
type OpenAIClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger
}

func NewOpenAIClient(baseURL, model, apiKey string, timeout time.Duration, log *logrus.Logger) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces a match digest for the rendered event lines.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, digestSystemPrompt, prompt)
}

// PersonaReply answers a user question in the irritable-footballer persona
// used by the /api/query route.
func (c *OpenAIClient) PersonaReply(ctx context.Context, input string) (string, error) {
	return c.complete(ctx, personaSystemPrompt, input)
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, truncate(data, 256))
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
