package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"chatportal/pkg/logger"
)

// ChatMessage is one turn in the wire format of the completions API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Options configures the production gateway client.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint. It keeps
// per-session message history in process so repeated calls within one
// session carry context without the caller resending it.
type Client struct {
	opts Options
	http *http.Client

	mu       sync.Mutex
	sessions map[string][]ChatMessage
}

// NewClient builds a gateway client. Zero-value options get sane defaults.
func NewClient(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 500
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		opts:     opts,
		http:     &http.Client{Timeout: opts.Timeout},
		sessions: make(map[string][]ChatMessage),
	}
}

// Complete sends the prompt within the named session and returns the
// generated text. Transport, decode and API errors all come back as a
// degraded Result carrying an error-describing text, never as a failure.
// An empty session is one-shot: no history is read and nothing is kept,
// so callers minting throwaway sessions do not grow the memory map.
func (c *Client) Complete(ctx context.Context, session, system, prompt string) Result {
	var history []ChatMessage
	if session != "" {
		history = c.snapshot(session)
	}

	msgs := make([]ChatMessage, 0, len(history)+2)
	msgs = append(msgs, ChatMessage{Role: "system", Content: system})
	msgs = append(msgs, history...)
	msgs = append(msgs, ChatMessage{Role: "user", Content: prompt})

	text, err := c.send(ctx, msgs)
	if err != nil {
		logger.Log.Error("gateway_completion_failed", zap.String("session", session), zap.Error(err))
		return Result{Text: fmt.Sprintf("Error generating response: %v", err), Degraded: true}
	}

	if session != "" {
		c.remember(session, prompt, text)
	}
	return Result{Text: text}
}

// Forget drops a session's accumulated memory. Called when the owning
// conversation ends so the map does not grow for the process lifetime.
func (c *Client) Forget(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, session)
}

func (c *Client) send(ctx context.Context, msgs []ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.opts.Model,
		Messages:    msgs,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := c.opts.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("upstream error: %s", cr.Error.Message)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream status %d", res.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return cr.Choices[0].Message.Content, nil
}

func (c *Client) snapshot(session string) []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.sessions[session]...)
}

func (c *Client) remember(session, prompt, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session] = append(c.sessions[session],
		ChatMessage{Role: "user", Content: prompt},
		ChatMessage{Role: "assistant", Content: reply},
	)
}
