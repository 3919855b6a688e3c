package oktoagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

// DefaultHTTPTimeout defines the timeout used by clients created without a
// custom http.Client. It is intentionally short to avoid hanging network calls.
const DefaultHTTPTimeout = 15 * time.Second

// Client wraps the HTTP interactions with the Okto agent REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// MessageSubmission represents a conversational message routed to a wallet
// capability. Capability may be left empty to let the agent pick one.
type MessageSubmission struct {
	Capability string   `json:"capability,omitempty"`
	Text       string   `json:"text"`
	Recent     []string `json:"recent,omitempty"`
}

// CapabilityResult is the structured outcome of a capability invocation.
// FailureCode classifies failed invocations and is empty on success.
type CapabilityResult struct {
	Success     bool   `json:"success"`
	Response    string `json:"response"`
	Text        string `json:"text"`
	OrderID     string `json:"order_id,omitempty"`
	FailureCode string `json:"failure_code,omitempty"`
}

// MessageOutcome pairs the capability that handled the message with its result.
type MessageOutcome struct {
	Capability string            `json:"capability"`
	Result     *CapabilityResult `json:"result"`
}

// Capability describes one registered wallet capability.
type Capability struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Similes     []string `json:"similes"`
}

// JournalEntry is one recorded capability invocation.
type JournalEntry struct {
	ID         string `json:"id"`
	Capability string `json:"capability"`
	Input      string `json:"input"`
	Success    bool   `json:"success"`
	Response   string `json:"response"`
	OrderID    string `json:"order_id,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// APIError represents server side validation or internal errors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("oktoagent api error (%d): %s", e.StatusCode, e.Message)
}

// NewClient instantiates a client for the Okto agent API. When httpClient is
// nil, a default client with a sensible timeout is used.
func NewClient(rawURL string, httpClient *http.Client) *Client {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("invalid base url: %v", err))
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &Client{baseURL: parsed, httpClient: httpClient}
}

// SubmitMessage routes a conversational message through the agent.
func (c *Client) SubmitMessage(ctx context.Context, submission MessageSubmission) (MessageOutcome, error) {
	var outcome MessageOutcome
	if err := c.post(ctx, "/api/v1/messages", submission, &outcome); err != nil {
		return MessageOutcome{}, err
	}
	return outcome, nil
}

// Capabilities lists the capabilities the agent has registered.
func (c *Client) Capabilities(ctx context.Context) ([]Capability, error) {
	var capabilities []Capability
	if err := c.get(ctx, "/api/v1/capabilities", &capabilities); err != nil {
		return nil, err
	}
	return capabilities, nil
}

// Journal fetches the most recent capability invocations.
func (c *Client) Journal(ctx context.Context, limit int) ([]JournalEntry, error) {
	endpoint := "/api/v1/journal"
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var entries []JournalEntry
	if err := c.get(ctx, endpoint, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	rel := &url.URL{Path: path.Join(c.baseURL.Path, parsed.Path), RawQuery: parsed.RawQuery}
	u := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error response: %w", err)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
