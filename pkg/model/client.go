// Package model dispatches tutoring conversations to the remote
// completion endpoint and funnels results back through a callback.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"mergetutor/pkg/auth"
	"mergetutor/pkg/chat"
	"mergetutor/pkg/errors"
	"mergetutor/pkg/logging"
)

const defaultMaxTokens = 2048

// Client issues completion requests. It never blocks the caller; results
// are delivered through the callback exactly once, on a network goroutine.
type Client struct {
	endpoint    string
	maxTokens   int
	temperature float64
	system      string
	authState   *auth.State
	httpClient  *http.Client
	logger      *logging.Logger
}

// NewClient builds a completion client. The auth state supplies the
// signed-in email attached for server-side accounting when available.
func NewClient(endpoint string, maxTokens int, temperature float64, system string, authState *auth.State, logger *logging.Logger) *Client {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		endpoint:    endpoint,
		maxTokens:   maxTokens,
		temperature: temperature,
		system:      system,
		authState:   authState,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// BuildRequest assembles the payload: history order mirrored as
// role-tagged turns, the new user turn last, fixed system text and
// sampling parameters.
func (c *Client) BuildRequest(userMessage string, history []chat.Message) Request {
	turns := make([]Turn, 0, len(history)+1)
	for _, msg := range history {
		role := "assistant"
		if msg.FromUser {
			role = "user"
		}
		turns = append(turns, Turn{
			Role:      role,
			Content:   msg.Content,
			Cacheable: msg.Cacheable,
		})
	}
	turns = append(turns, Turn{Role: "user", Content: userMessage})

	req := Request{
		Messages:    turns,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      c.system,
	}
	if c.authState != nil {
		if email, ok := c.authState.Email(); ok {
			req.Email = email
		}
	}
	return req
}

// Complete serializes the conversation and POSTs it asynchronously. The
// callback fires exactly once with either the concatenated text blocks
// of the reply or a classified error, and must only do cheap work (the
// chat session's callback writes into the mailbox).
func (c *Client) Complete(userMessage string, history []chat.Message, callback func(string, error)) {
	var once sync.Once
	deliver := func(text string, err error) {
		once.Do(func() { callback(text, err) })
	}

	requestID := uuid.NewString()
	payload, err := json.Marshal(c.BuildRequest(userMessage, history))
	if err != nil {
		deliver("", errors.Wrap(err, errors.ErrCodeSerialize, "failed to serialize request").
			WithUserMessage(fmt.Sprintf("Failed to serialize request: %v", err)))
		return
	}

	c.logger.Info(logging.CategoryNetwork, "completion_request", "", map[string]any{
		"request_id": requestID,
		"turns":      len(history) + 1,
		"bytes":      len(payload),
	})

	go func() {
		resp, err := c.httpClient.Post(c.endpoint, "application/json", bytes.NewReader(payload))
		if err != nil {
			c.logger.Error(logging.CategoryNetwork, "completion_failed", err.Error(), map[string]any{
				"request_id": requestID,
			})
			deliver("", errors.Wrap(err, errors.ErrCodeNetwork, "network error").
				WithRetryable(true).
				WithUserMessage(fmt.Sprintf("Network error: %v", err)))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.logger.Error(logging.CategoryNetwork, "completion_failed", resp.Status, map[string]any{
				"request_id": requestID,
				"status":     resp.StatusCode,
			})
			deliver("", errors.New(errors.ErrCodeAPIStatus, fmt.Sprintf("server error: %s", resp.Status)).
				WithContext("status", resp.StatusCode).
				WithRetryable(true).
				WithUserMessage(fmt.Sprintf("Server error: %s", resp.Status)))
			return
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			deliver("", errors.Wrap(err, errors.ErrCodeNetwork, "failed to read response body").
				WithRetryable(true).
				WithUserMessage(fmt.Sprintf("Failed to get response text: %v", err)))
			return
		}

		var parsed Response
		if err := json.Unmarshal(body, &parsed); err != nil {
			deliver("", errors.Wrap(err, errors.ErrCodeParse, "failed to parse response").
				WithUserMessage(fmt.Sprintf("Failed to parse response: %v", err)))
			return
		}

		c.logger.Info(logging.CategoryNetwork, "completion_ok", "", map[string]any{
			"request_id": requestID,
			"blocks":     len(parsed.Content),
		})
		deliver(parsed.Text(), nil)
	}()
}
