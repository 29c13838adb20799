package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// redirect rewrites provider URLs at the test server for the test's life.
func redirect(t *testing.T, ts *httptest.Server) {
	t.Helper()
	orig := httpNewRequest
	httpNewRequest = func(ctx context.Context, url, method, body string) (*http.Request, error) {
		return defaultNewRequest(ctx, ts.URL, method, body)
	}
	t.Cleanup(func() { httpNewRequest = orig })
}

func newTestOpenAI() *OpenAI {
	c := NewOpenAI("test-key", "gpt-4")
	c.maxAttempts = 3
	c.baseBackoff = 5 * time.Millisecond
	return c
}

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth string
	var gotReq oaRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"1. Better post!"}}]}`))
	}))
	defer ts.Close()
	redirect(t, ts)

	c := newTestOpenAI()
	got, err := c.Generate(context.Background(), "improve this", Options{MaxTokens: 300, Temperature: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if got != "1. Better post!" {
		t.Fatalf("got %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotReq.Model != "gpt-4" || gotReq.Temperature != 0.7 || gotReq.MaxTokens != 300 {
		t.Fatalf("request = %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "improve this" {
		t.Fatalf("messages = %+v", gotReq.Messages)
	}
}

func TestOpenAIRetriesOn429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer ts.Close()
	redirect(t, ts)

	c := newTestOpenAI()
	got, err := c.Generate(context.Background(), "p", Options{})
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if got != "ok" || attempts != 2 {
		t.Fatalf("got %q after %d attempts", got, attempts)
	}
}

func TestOpenAIAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer ts.Close()
	redirect(t, ts)

	c := newTestOpenAI()
	_, err := c.Generate(context.Background(), "p", Options{})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()
	redirect(t, ts)

	c := newTestOpenAI()
	got, err := c.Generate(context.Background(), "p", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("got %q, want empty for missing choices", got)
	}
}
