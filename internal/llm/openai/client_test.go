package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		apiKey:     "test-key",
		model:      "gpt-4o-mini",
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}
}

func TestParseResumeReturnsContent(t *testing.T) {
	var gotBody chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"summary":"engineer"}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	raw, err := client.ParseResume(context.Background(), "some resume text")
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}

	var parsed struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal content: %v", err)
	}
	if parsed.Summary != "engineer" {
		t.Fatalf("unexpected content %s", raw)
	}

	if gotBody.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", gotBody.ResponseFormat.Type)
	}
	if gotBody.MaxTokens != maxTokens {
		t.Fatalf("expected max_tokens=%d, got %d", maxTokens, gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages %+v", gotBody.Messages)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "some resume text") {
		t.Fatalf("expected resume text in user message")
	}
}

func TestParseResumeNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusServiceUnavailable)
	})

	if _, err := client.ParseResume(context.Background(), "text"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestParseResumeRejectsNonJSONContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "not json at all"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	if _, err := client.ParseResume(context.Background(), "text"); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestParseResumeSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := client.ParseResume(context.Background(), "text")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected api error surfaced, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for missing api key")
	}
	c, err := NewClient("key", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.model != defaultModel {
		t.Fatalf("expected default model, got %q", c.model)
	}
}
