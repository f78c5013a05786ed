package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// completionsServer echoes a canned reply and records every request body.
func completionsServer(t *testing.T, reply string) (*httptest.Server, *[]chatRequest) {
	t.Helper()
	var seen []chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seen = append(seen, req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestCompleteReturnsText(t *testing.T) {
	srv, seen := completionsServer(t, "hello back")
	c := NewClient(Options{BaseURL: srv.URL, APIKey: "k"})

	res := c.Complete(context.Background(), "s1", "be nice", "hello")
	require.False(t, res.Degraded)
	require.Equal(t, "hello back", res.Text)

	require.Len(t, *seen, 1)
	msgs := (*seen)[0].Messages
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, "be nice", msgs[0].Content)
	require.Equal(t, "user", msgs[len(msgs)-1].Role)
	require.Equal(t, "hello", msgs[len(msgs)-1].Content)
}

func TestCompleteCarriesSessionMemory(t *testing.T) {
	srv, seen := completionsServer(t, "noted")
	c := NewClient(Options{BaseURL: srv.URL})

	c.Complete(context.Background(), "s1", "sys", "first")
	c.Complete(context.Background(), "s1", "sys", "second")

	require.Len(t, *seen, 2)
	msgs := (*seen)[1].Messages
	// system, first exchange from memory, then the new prompt
	require.Len(t, msgs, 4)
	require.Equal(t, ChatMessage{Role: "user", Content: "first"}, msgs[1])
	require.Equal(t, ChatMessage{Role: "assistant", Content: "noted"}, msgs[2])
	require.Equal(t, ChatMessage{Role: "user", Content: "second"}, msgs[3])
}

func TestCompleteSessionsAreIsolated(t *testing.T) {
	srv, seen := completionsServer(t, "ok")
	c := NewClient(Options{BaseURL: srv.URL})

	c.Complete(context.Background(), "a", "sys", "in a")
	c.Complete(context.Background(), "b", "sys", "in b")

	msgs := (*seen)[1].Messages
	require.Len(t, msgs, 2)
	require.Equal(t, "in b", msgs[1].Content)
}

func TestCompleteTransportFailureDegrades(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1"})

	res := c.Complete(context.Background(), "s1", "sys", "hello?")
	require.True(t, res.Degraded)
	require.Contains(t, res.Text, "Error generating response:")
}

func TestCompleteUpstreamErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer srv.Close()
	c := NewClient(Options{BaseURL: srv.URL})

	res := c.Complete(context.Background(), "s1", "sys", "hello?")
	require.True(t, res.Degraded)
	require.Contains(t, res.Text, "rate limited")
}

func TestCompleteFailureLeavesNoMemory(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("{}"))
	}))
	c := NewClient(Options{BaseURL: failing.URL})
	res := c.Complete(context.Background(), "s1", "sys", "doomed")
	require.True(t, res.Degraded)
	failing.Close()

	srv, seen := completionsServer(t, "fresh")
	c.opts.BaseURL = srv.URL
	res = c.Complete(context.Background(), "s1", "sys", "retry")
	require.False(t, res.Degraded)
	// the failed exchange never entered session memory
	require.Len(t, (*seen)[0].Messages, 2)
}

func TestOneShotCallsKeepNoMemory(t *testing.T) {
	srv, seen := completionsServer(t, "ok")
	c := NewClient(Options{BaseURL: srv.URL})

	for i := 0; i < 1000; i++ {
		res := c.Complete(context.Background(), "", "sys", "once")
		require.False(t, res.Degraded)
	}
	// a long-running server must not accumulate a session per throwaway call
	require.Empty(t, c.sessions)

	// and a one-shot call never sees another session's history
	c.Complete(context.Background(), "s1", "sys", "remembered")
	c.Complete(context.Background(), "", "sys", "isolated")
	last := (*seen)[len(*seen)-1].Messages
	require.Len(t, last, 2)
	require.Equal(t, "isolated", last[1].Content)
}

func TestForgetReleasesSession(t *testing.T) {
	srv, seen := completionsServer(t, "ok")
	c := NewClient(Options{BaseURL: srv.URL})

	c.Complete(context.Background(), "s1", "sys", "first")
	require.Len(t, c.sessions, 1)

	c.Forget("s1")
	require.Empty(t, c.sessions)

	// a later call in the same session starts from a clean slate
	c.Complete(context.Background(), "s1", "sys", "second")
	last := (*seen)[len(*seen)-1].Messages
	require.Len(t, last, 2)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	require.Equal(t, "gpt-4o-mini", c.opts.Model)
	require.Equal(t, 500, c.opts.MaxTokens)
	require.NotZero(t, c.opts.Timeout)
}
