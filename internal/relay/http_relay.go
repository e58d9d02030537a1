package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hexlight/portal-notifier/internal/domain"
)

// Client talks to the relay function over HTTP.
// The base URL is injected from config so tests can point to a local mock.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type sendRequest struct {
	EndpointID string  `json:"endpoint_id"`
	Message    Message `json:"message"`
}

type sendResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SendDirectMessage posts the message to <base>/send and expects a 200
// response whose body carries ok=true.
func (c *Client) SendDirectMessage(ctx context.Context, endpointID string, msg Message) error {
	body, err := json.Marshal(sendRequest{EndpointID: endpointID, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected relay status: %d", resp.StatusCode)
	}

	var sr sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !sr.OK {
		return fmt.Errorf("relay rejected message: %s", sr.Error)
	}

	return nil
}

type lookupRequest struct {
	Email string `json:"email"`
}

type lookupResponse struct {
	EndpointID string `json:"endpoint_id"`
}

// LookupByEmail asks the relay to resolve an email address to a chat
// endpoint ID. A 404 means the person has no chat account and maps to
// domain.ErrNotFound.
func (c *Client) LookupByEmail(ctx context.Context, email string) (string, error) {
	body, err := json.Marshal(lookupRequest{Email: email})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lookup", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected relay status: %d", resp.StatusCode)
	}

	var lr lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if lr.EndpointID == "" {
		return "", domain.ErrNotFound
	}

	return lr.EndpointID, nil
}

// compile-time checks that Client implements both relay capabilities
var (
	_ Messenger = (*Client)(nil)
	_ Directory = (*Client)(nil)
)
