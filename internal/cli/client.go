// Package cli implements the sqlsage terminal client. Every command is
// a thin wrapper over the HTTP API; the client holds no local state.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}, nil
}

// Outcome mirrors the ask endpoint's response body.
type Outcome struct {
	ID            string     `json:"id"`
	Success       bool       `json:"success"`
	UserQuestion  string     `json:"user_question"`
	AgentResponse string     `json:"agent_response"`
	SQL           string     `json:"sql_query"`
	Data          *TableData `json:"data"`
	RowCount      int        `json:"row_count"`
	ColumnCount   int        `json:"column_count"`
	DataError     string     `json:"data_execution_error"`
	Error         string     `json:"error"`
	Timestamp     time.Time  `json:"timestamp"`
	DurationMS    int64      `json:"duration_ms"`
}

type TableData struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (c *Client) Ask(ctx context.Context, question string) (Outcome, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal ask request: %w", err)
	}
	var outcome Outcome
	if err := c.do(ctx, http.MethodPost, "/v1/ask", bytes.NewReader(body), &outcome); err != nil {
		return Outcome{}, err
	}
	return outcome, nil
}

func (c *Client) Tables(ctx context.Context) ([]string, error) {
	var body struct {
		Tables []string `json:"tables"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/tables", nil, &body); err != nil {
		return nil, err
	}
	return body.Tables, nil
}

func (c *Client) Schema(ctx context.Context) (string, error) {
	var body struct {
		Schema string `json:"schema"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/schema", nil, &body); err != nil {
		return "", err
	}
	return body.Schema, nil
}

func (c *Client) Sample(ctx context.Context, table string, limit int) (TableData, error) {
	path := "/v1/tables/" + url.PathEscape(table) + "/sample"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var body TableData
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return TableData{}, err
	}
	return body, nil
}

func (c *Client) History(ctx context.Context) ([]Outcome, error) {
	var body struct {
		History []Outcome `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/history", nil, &body); err != nil {
		return nil, err
	}
	return body.History, nil
}

func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/history", nil, nil)
}

// Export downloads an archived result in the requested format.
func (c *Client) Export(ctx context.Context, id, format string) ([]byte, error) {
	path := "/v1/history/" + url.PathEscape(id) + "/export?format=" + url.QueryEscape(format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request export: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, payload)
	}
	return payload, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/health", nil, nil)
}

func (c *Client) Ready(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/ready", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError surfaces the server's error envelope when present.
func apiError(status int, payload []byte) error {
	var envelope struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Message != "" {
		return fmt.Errorf("http %d %s: %s", status, envelope.ErrorCode, envelope.Message)
	}
	return fmt.Errorf("http %d: %s", status, strings.TrimSpace(string(payload)))
}
