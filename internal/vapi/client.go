package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fandial/callboard/internal/config"
	"github.com/fandial/callboard/internal/types"
)

const clientTimeout = 10 * time.Second

// Call is the subset of the Vapi call resource the dashboard cares about
type Call struct {
	ID         string          `json:"id"`
	Status     types.CallState `json:"status"`
	Transcript string          `json:"transcript,omitempty"`
	EndedAt    *time.Time      `json:"endedAt,omitempty"`
}

// Client talks to the Vapi REST API for outbound call control
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the given credentials
func NewClient(creds config.VapiCredentials) *Client {
	return &Client{
		baseURL: strings.TrimRight(creds.BaseURL, "/"),
		apiKey:  creds.APIKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// createCallRequest is the JSON body sent to start an outbound call
type createCallRequest struct {
	AssistantID string            `json:"assistantId"`
	PhoneNumber string            `json:"phoneNumber"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CreateCall starts an outbound call through the configured assistant
func (c *Client) CreateCall(ctx context.Context, assistantID, phoneNumber string) (*Call, error) {
	body, err := json.Marshal(createCallRequest{
		AssistantID: assistantID,
		PhoneNumber: phoneNumber,
		Metadata:    map[string]string{"purpose": "ticket_sales"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal create call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/phone", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create call request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /call/phone: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST /call/phone returned status %d", resp.StatusCode)
	}

	var call Call
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("decode call response: %w", err)
	}
	if call.Status == "" {
		call.Status = types.CallInitiated
	}
	return &call, nil
}

// GetCall fetches the current state of a call
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/call/"+callID, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /call/%s: %w", callID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET /call/%s returned status %d", callID, resp.StatusCode)
	}

	var call Call
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("decode call response: %w", err)
	}
	return &call, nil
}

// EndCall asks Vapi to hang up an active call
func (c *Client) EndCall(ctx context.Context, callID string) error {
	body := []byte(`{"status":"ended"}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/call/"+callID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create end call request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("PATCH /call/%s: %w", callID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PATCH /call/%s returned status %d", callID, resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
