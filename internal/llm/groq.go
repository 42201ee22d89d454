package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultGroqModel is used unless overridden per client.
	DefaultGroqModel = "llama-3.3-70b-versatile"

	// Every call to the external model gets a bounded timeout; on expiry
	// the caller treats it as a recoverable failure, not a crash.
	groqTimeout = 30 * time.Second
)

// groqClient is a client for the Groq OpenAI-compatible completions API.
type groqClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewGroqClient creates a Groq API client with a fixed model and
// sampling temperature.
func NewGroqClient(apiKey, model string, temperature float64) TextGenerator {
	if model == "" {
		model = DefaultGroqModel
	}
	return &groqClient{
		apiKey:      apiKey,
		baseURL:     groqAPIURL,
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: groqTimeout,
		},
	}
}

// GenerateContent sends the system and user messages to the Groq model
// and returns the generated text. A single attempt, no retries: failure
// is surfaced immediately so the user can re-issue the request.
func (c *groqClient) GenerateContent(ctx context.Context, system, prompt string) (ContentResponse, error) {
	messages := []map[string]string{}
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	reqBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": c.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var groqResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(groqResp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: groqResp.Choices[0].Message.Content,
		Usage: TokenUsage{
			Model:            c.model,
			PromptTokens:     groqResp.Usage.PromptTokens,
			CompletionTokens: groqResp.Usage.CompletionTokens,
		},
	}, nil
}
