// Package chatclient talks to the chat endpoint on behalf of a terminal user.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/comigor/tailortalk/internal/failure"
	"github.com/comigor/tailortalk/internal/logger"
)

// DefaultEndpoint is where `tailortalk serve` listens by default.
const DefaultEndpoint = "http://localhost:8000/chat"

// NoReply is shown when the server answers without any text.
const NoReply = "🤖 No meaningful reply."

type request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type response struct {
	Response  *string `json:"response"`
	SessionID string  `json:"session_id"`
}

// Client posts messages to the chat endpoint and keeps the session id the
// server hands out so follow-ups land in the same conversation.
type Client struct {
	endpoint string
	http     *http.Client

	mu        sync.Mutex
	sessionID string
}

// New returns a client for endpoint. A nil httpClient uses a client without
// a timeout, since a single answer may take several model round trips.
func New(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// SessionID returns the id of the current server-side conversation.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Send posts message and returns the text to display. It never fails:
// transport and server errors are turned into user-facing messages.
func (c *Client) Send(ctx context.Context, message string) string {
	reply, err := c.send(ctx, message)
	if err != nil {
		cat := failure.Classify(err)
		var se *StatusError
		if errors.As(err, &se) {
			cat = failure.FromStatus(se.Code)
		}
		logger.L.Warn("chat request failed", "category", cat.String(), "error", err)
		return cat.UserMessage()
	}
	return reply
}

func (c *Client) send(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(request{Message: message, SessionID: c.SessionID()})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	logger.L.Debug("chat response", "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.SessionID != "" {
		c.mu.Lock()
		c.sessionID = out.SessionID
		c.mu.Unlock()
	}
	if out.Response == nil || *out.Response == "" {
		return NoReply, nil
	}
	return *out.Response, nil
}
