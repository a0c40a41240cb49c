package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("ai: api key is not configured")

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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to a Groq-compatible chat completions endpoint.
type Client struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(baseURL, apiKey, model string) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		IdleConnTimeout:       30 * time.Second,
	})

	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Chat sends a single-turn prompt and returns the assistant's reply text.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	res, err := c.client.R().
		WithContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(chatRequest{
			Model:    c.model,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		}).
		SetResult(&chatResponse{}).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("ai: chat completions returned %s: %s", res.Status(), res.String())
	}

	out := res.Result().(*chatResponse)
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// ChatJSON asks for a JSON reply and unmarshals it into v. Models often wrap
// JSON in markdown fences or prose despite instructions, so the reply is
// reduced to its outermost object or array before parsing.
func (c *Client) ChatJSON(ctx context.Context, prompt string, v any) error {
	jsonPrompt := prompt + "\n\nIMPORTANT: Respond ONLY with valid JSON. Do not include markdown formatting like ```json."
	content, err := c.Chat(ctx, jsonPrompt)
	if err != nil {
		return err
	}

	raw, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("ai: response was not valid JSON: %w", err)
	}
	return nil
}

// ExtractJSON strips markdown fences and returns the outermost JSON object
// or array found in s, whichever starts first.
func ExtractJSON(s string) (string, error) {
	cleaned := strings.ReplaceAll(s, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	firstBrace := strings.Index(cleaned, "{")
	firstBracket := strings.Index(cleaned, "[")

	start, end := -1, -1
	switch {
	case firstBrace != -1 && (firstBracket == -1 || firstBrace < firstBracket):
		start = firstBrace
		end = strings.LastIndex(cleaned, "}")
	case firstBracket != -1:
		start = firstBracket
		end = strings.LastIndex(cleaned, "]")
	}

	if start == -1 || end == -1 || end < start {
		return "", errors.New("ai: no JSON structure found in response")
	}
	return cleaned[start : end+1], nil
}
