package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHuggingFaceModel is the summarization model used when none is set.
const DefaultHuggingFaceModel = "sshleifer/distilbart-cnn-12-6"

// maxInputLength caps the text sent to the inference API.
const maxInputLength = 1000

// HuggingFaceClient calls the Hugging Face inference API for a
// summarization model.
type HuggingFaceClient struct {
	token      string
	url        string
	httpClient *http.Client
}

// NewHuggingFaceClient creates a client for model. baseURL defaults to the
// public inference endpoint.
func NewHuggingFaceClient(token, model, baseURL string, timeout time.Duration) *HuggingFaceClient {
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co/models"
	}
	return &HuggingFaceClient{
		token:      token,
		url:        baseURL + "/" + model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HuggingFaceClient) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	MinLength   int     `json:"min_length"`
	DoSample    bool    `json:"do_sample"`
	Temperature float64 `json:"temperature"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

// Complete sends prompt for summarization and returns the first summary.
func (c *HuggingFaceClient) Complete(ctx context.Context, prompt string, maxLen, minLen int) (string, error) {
	if c.token == "" {
		return "", ErrNoBackend
	}
	if len(prompt) > maxInputLength {
		prompt = clip(prompt, maxInputLength) + "..."
	}

	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxLength:   maxLen,
			MinLength:   minLen,
			Temperature: 0.3,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var out []hfSummary
	if err := postJSON(ctx, c.httpClient, c.url, c.token, body, &out, "huggingface"); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", nil
	}
	return out[0].SummaryText, nil
}

// postJSON posts body with a bearer token and decodes a 200 response into
// out. Any other status is returned as an error carrying the body.
func postJSON(ctx context.Context, client *http.Client, url, token string, body []byte, out any, api string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", api, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s API error: status %d: %s", api, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
