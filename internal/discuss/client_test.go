package discuss

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt roundTripFunc) *Client {
	c := NewClient("https://llm.test/api/v1/", "key", "some/model")
	c.http = &http.Client{Transport: rt}
	return c
}

func chatReply(status int, content string) (*http.Response, error) {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func TestThemesSplitsAnswer(t *testing.T) {
	var got chatRequest
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.String() != "https://llm.test/api/v1/chat/completions" {
			t.Fatalf("unexpected URL: %s", req.URL)
		}
		if auth := req.Header.Get("Authorization"); auth != "Bearer key" {
			t.Fatalf("unexpected auth header: %q", auth)
		}
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return chatReply(http.StatusOK, "1. Свобода выбора $ 2. Цена правды $")
	})

	themes, err := c.Themes(context.Background(), "Матрица", 1999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(themes) != 2 || themes[0] != "1. Свобода выбора" || themes[1] != "2. Цена правды" {
		t.Fatalf("unexpected themes: %#v", themes)
	}

	if got.Model != "some/model" {
		t.Fatalf("unexpected model: %q", got.Model)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %#v", got.Messages)
	}
}

func TestThemesDropsTrailingSegment(t *testing.T) {
	// Text after the last $ is model chatter, not a theme.
	themes := splitThemes("a $ b $ hope that helps!")
	if len(themes) != 2 || themes[0] != "a" || themes[1] != "b" {
		t.Fatalf("unexpected themes: %#v", themes)
	}

	if got := splitThemes("no separator at all"); len(got) != 0 {
		t.Fatalf("expected nothing without separators, got %#v", got)
	}
}

func TestThemesProviderErrors(t *testing.T) {
	c := newTestClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(bytes.NewBufferString("rate limited")),
			Header:     make(http.Header),
		}, nil
	})
	if _, err := c.Themes(context.Background(), "x", 2000); err == nil {
		t.Fatal("expected error on non-200 status")
	}

	c = newTestClient(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`{"choices":[]}`)),
			Header:     make(http.Header),
		}, nil
	})
	if _, err := c.Themes(context.Background(), "x", 2000); err == nil {
		t.Fatal("expected error when provider returns no choices")
	}
}
