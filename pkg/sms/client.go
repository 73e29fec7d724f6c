package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to an HTTP SMS provider. Each Send is one POST to
// {BaseURL}/messages authenticated with a bearer API key.
type Client struct {
	BaseURL     string
	APIKey      string
	SenderID    string
	CountryCode string
	HTTPClient  *http.Client
}

type SendMessageRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"message_id"`
}

// SendResult is the outcome reported to callers: whether the provider
// accepted the message and whatever text it returned.
type SendResult struct {
	Success         bool
	ProviderMessage string
}

func NewClient(baseURL, apiKey, senderID string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		SenderID: senderID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NormalizePhone strips formatting characters and, when a country code is
// configured, replaces a leading trunk zero with it.
func (c *Client) NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if c.CountryCode != "" && strings.HasPrefix(normalized, "0") {
		return c.CountryCode + normalized[1:]
	}
	return normalized
}

// Send delivers text to phone. A non-nil error means the request itself
// failed (transport, encoding, non-JSON reply); a provider rejection is
// reported as SendResult.Success == false with a nil error.
func (c *Client) Send(ctx context.Context, phone, text string) (*SendResult, error) {
	to := c.NormalizePhone(phone)
	if to == "" {
		return &SendResult{Success: false, ProviderMessage: "invalid phone number"}, nil
	}

	requestData := SendMessageRequest{
		To:      to,
		From:    c.SenderID,
		Message: text,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/messages", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		response.Success = false
		if response.Message == "" {
			response.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}

	providerMessage := response.Message
	if response.Success && response.MessageID != "" {
		providerMessage = strings.TrimSpace(response.Message + " id=" + response.MessageID)
	}
	return &SendResult{Success: response.Success, ProviderMessage: providerMessage}, nil
}

// DisabledGateway stands in for the provider when SMS delivery is switched
// off; every attempt is reported as failed so it still shows in the logs.
type DisabledGateway struct{}

func (DisabledGateway) Send(ctx context.Context, phone, text string) (*SendResult, error) {
	return &SendResult{Success: false, ProviderMessage: "sms delivery disabled"}, nil
}
