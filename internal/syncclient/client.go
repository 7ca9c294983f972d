// Package syncclient performs the network round-trip for one field mutation.
//
// Every call is a single, independent, non-retrying POST with a JSON body.
// Failures never escape the client as errors or panics: transport errors,
// non-2xx statuses, and malformed response bodies all come back as an error
// Result so the caller can run its rollback logic. The client does not touch
// any UI state.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// StatusSuccess is the status value a healthy save responds with. Anything
// else, including a missing status field, is treated as an error outcome.
const StatusSuccess = "success"

// Result is the outcome of one field mutation request.
type Result struct {
	// Status is the server-reported status ("success" on a healthy save).
	Status string `json:"status"`
	// Error is the server-reported failure detail, if any.
	Error string `json:"error,omitempty"`
	// WordCount is populated by journal saves.
	WordCount int `json:"word_count,omitempty"`

	// RequestID correlates the result with its diagnostic log lines.
	RequestID string `json:"-"`
	// Err is set when the request never produced a usable response
	// (transport failure, non-2xx status, malformed JSON).
	Err error `json:"-"`
}

// OK reports whether the save landed.
func (r Result) OK() bool {
	return r.Err == nil && r.Status == StatusSuccess
}

// Sender issues field mutation requests. Implemented by Client; tests swap
// in fakes.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload any) Result
}

// Client is the HTTP sync client.
type Client struct {
	base   string
	http   *http.Client
	logger *log.Logger
}

// New creates a sync client for the store at baseURL.
//
// If httpClient is nil a default client with a 10 second timeout is used.
// If logger is nil, a default logger writing to stderr is used.
func New(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Client{
		base:   baseURL,
		http:   httpClient,
		logger: logger,
	}
}

// Send POSTs the payload to the endpoint and reports the outcome.
//
// All failure modes are folded into the returned Result and logged to the
// diagnostic channel; Send never panics and never surfaces an error any
// other way.
func (c *Client) Send(ctx context.Context, endpoint string, payload any) Result {
	reqID := uuid.NewString()

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Printf("request %s: failed to marshal payload: %v", reqID, err)
		return Result{RequestID: reqID, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(body))
	if err != nil {
		c.logger.Printf("request %s: failed to build request: %v", reqID, err)
		return Result{RequestID: reqID, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("request %s: POST %s failed: %v", reqID, endpoint, err)
		return Result{RequestID: reqID, Err: fmt.Errorf("post %s: %w", endpoint, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Printf("request %s: failed to read response: %v", reqID, err)
		return Result{RequestID: reqID, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Printf("request %s: POST %s returned status %d", reqID, endpoint, resp.StatusCode)
		return Result{RequestID: reqID, Err: fmt.Errorf("post %s: unexpected status %d", endpoint, resp.StatusCode)}
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Printf("request %s: malformed response body: %v", reqID, err)
		return Result{RequestID: reqID, Err: fmt.Errorf("decode response: %w", err)}
	}
	result.RequestID = reqID

	if result.Status != StatusSuccess {
		c.logger.Printf("request %s: POST %s reported status %q", reqID, endpoint, result.Status)
	}

	return result
}
