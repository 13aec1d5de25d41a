// Package discuss generates discussion themes for a film through an
// OpenAI-compatible chat-completions API. Failures surface to the
// caller as-is; the request is never retried.
package discuss

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const prompt = `
Hi, can you give me 5 themes for discussion about film named %s %d?
Only give me themes numerated from 1 to 5 and nothing else.
Ответь на русском языке.
После конца каждой темы ставь символ $ и не переходи на следующую строку
`

// Client calls the chat-completions endpoint of an OpenAI-compatible
// provider.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Themes asks the model for five discussion themes about the film and
// splits the $-terminated answer into individual entries.
func (c *Client) Themes(ctx context.Context, filmName string, year int) ([]string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(prompt, filmName, year)},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discuss: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discuss: provider returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("discuss: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("discuss: provider returned no choices")
	}
	return splitThemes(out.Choices[0].Message.Content), nil
}

// splitThemes breaks the model answer on the $ separator, trimming each
// entry and dropping the trailing empty segment.
func splitThemes(text string) []string {
	parts := strings.Split(text, "$")
	if len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	themes := make([]string, 0, len(parts))
	for _, p := range parts {
		themes = append(themes, strings.TrimSpace(p))
	}
	return themes
}
