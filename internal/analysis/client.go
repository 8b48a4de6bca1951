// Package analysis is the HTTP client for the AI retrieval analysis backend.
//
// The backend is a black box reached through three calls: create a job,
// list jobs, and download a completed job's report. All calls carry a
// bearer token obtained from an external token source.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// TokenSource supplies the bearer token for backend calls. The token
// store lives outside this service; an empty token is an external
// authentication failure, not something handled here.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

// Token returns the static token value.
func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// Client calls the analysis backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

// NewClient creates a client with standard transport settings.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CreateJob submits a new analysis job. The backend returns no job
// identifier; callers must locate the created job through ListJobs.
func (c *Client) CreateJob(ctx context.Context, req *CreateJobRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/ai-analysis/jobs", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	return nil
}

// ListJobs fetches one page of the shared job collection,
// most-recent-first.
func (c *Client) ListJobs(ctx context.Context, page, pageSize int) (*JobList, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/ai-analysis/jobs", nil)
	if err != nil {
		return nil, err
	}
	q := httpReq.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	httpReq.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	var list JobList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode job list: %w", err)
	}
	return &list, nil
}

// DownloadReport fetches the binary CSV report of a completed job.
func (c *Client) DownloadReport(ctx context.Context, jobID string) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/ai-analysis/jobs/"+jobID+"/report", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report body: %w", err)
	}
	return data, nil
}

// Ready checks that the backend's job collection is reachable.
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.ListJobs(ctx, 1, 1)
	return err
}

// newRequest builds an authenticated request against the backend.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// HTTPError represents an HTTP error response from the backend.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
