package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultChatModel is the chat model used when none is set.
const DefaultChatModel = "llama3-8b-8192"

const systemPrompt = "Summarize the following weather information concisely for aviation purposes."

// ChatClient calls an OpenAI-compatible chat completions endpoint, such as
// Groq's.
type ChatClient struct {
	token      string
	model      string
	url        string
	httpClient *http.Client
}

// NewChatClient creates a chat completions client. baseURL defaults to
// Groq's OpenAI-compatible endpoint.
func NewChatClient(token, model, baseURL string, timeout time.Duration) *ChatClient {
	if model == "" {
		model = DefaultChatModel
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &ChatClient{
		token:      token,
		model:      model,
		url:        baseURL + "/chat/completions",
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ChatClient) Name() string { return "chat" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as the user message and returns the first choice.
// minLen is not supported by chat endpoints and is ignored.
func (c *ChatClient) Complete(ctx context.Context, prompt string, maxLen, _ int) (string, error) {
	if c.token == "" {
		return "", ErrNoBackend
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxLen,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var out chatResponse
	if err := postJSON(ctx, c.httpClient, c.url, c.token, body, &out, "chat"); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// NewBackend returns the backend for provider ("huggingface", "groq",
// "openai" or "llama"), or nil for "", "none" and "fallback".
func NewBackend(provider, token, model, baseURL string, timeout time.Duration) (Backend, error) {
	switch provider {
	case "", "none", "fallback":
		return nil, nil
	case "huggingface", "hf":
		return NewHuggingFaceClient(token, model, baseURL, timeout), nil
	case "groq", "openai", "llama":
		return NewChatClient(token, model, baseURL, timeout), nil
	}
	return nil, fmt.Errorf("unknown summarizer provider %q", provider)
}
