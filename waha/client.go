package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/wahax/logx"
)

const (
	// Session states reported by WAHA
	SessionWorking  = "WORKING"
	SessionStarting = "STARTING"
	SessionScanQR   = "SCAN_QR_CODE"
	SessionStopped  = "STOPPED"
	SessionFailed   = "FAILED"

	// StatusUnknown is reported when the session state cannot be determined
	StatusUnknown = "unknown"

	defaultSessionName = "default"
	defaultTimeout     = 15 * time.Second
)

// Config holds the connection settings for one WAHA server
type Config struct {
	// BaseURL is the HTTP(S) origin of the WAHA server, without trailing slash
	BaseURL string `json:"base_url" validatex:"required,url"`

	// APIKey is sent as a bearer token when present; empty means
	// unauthenticated requests
	APIKey string `json:"api_key,omitempty"`

	// SessionName is the WAHA session the client talks to
	SessionName string `json:"session_name,omitempty"`

	// Timeout bounds each HTTP call
	Timeout time.Duration `json:"timeout,omitempty"`

	// RateLimit is the maximum number of sends per minute, 0 disables limiting
	RateLimit int `json:"rate_limit,omitempty"`
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.SessionName == "" {
		c.SessionName = defaultSessionName
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// SendReceipt is returned for a successfully accepted message
type SendReceipt struct {
	MessageID string    `json:"message_id,omitempty"`
	ChatID    string    `json:"chat_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagingClient is the capability the rest of the integration depends on,
// so tests can substitute a fake transport for a real WAHA instance
type MessagingClient interface {
	// SendText sends one text message to a chat
	SendText(ctx context.Context, chatID, text string) (*SendReceipt, error)

	// CheckConnection confirms the server is reachable and the credentials
	// are accepted
	CheckConnection(ctx context.Context) error

	// SessionStatus returns the current WAHA session state
	SessionStatus(ctx context.Context) (string, error)

	// RegisterWebhook asks WAHA to deliver inbound messages to webhookURL
	RegisterWebhook(ctx context.Context, webhookURL string) error

	// Session returns the configured session name
	Session() string
}

// Client is the HTTP implementation of MessagingClient
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rateLimiter
}

// NewClient creates a WAHA client from a connection config
func NewClient(config Config) *Client {
	config = config.withDefaults()
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: newRateLimiter(config.RateLimit),
	}
}

// Session returns the configured session name
func (c *Client) Session() string {
	return c.config.SessionName
}

type sendTextRequest struct {
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	Session string `json:"session"`
}

// SendText sends one text message via POST /api/sendText. A single attempt is
// made per call; failures surface immediately to the caller.
func (c *Client) SendText(ctx context.Context, chatID, text string) (*SendReceipt, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, Registry.NewWithCause(ErrCannotConnect, err).
			WithDetail("operation", "send_text").
			WithDetail("reason", "cancelled while waiting for rate limit")
	}

	payload := sendTextRequest{
		ChatID:  chatID,
		Text:    text,
		Session: c.config.SessionName,
	}

	resp, err := c.post(ctx, "/api/sendText", payload)
	if err != nil {
		return nil, c.transportError("send_text", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError("send_text", resp)
	}

	receipt := &SendReceipt{ChatID: chatID, Timestamp: time.Now()}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Registry.NewWithCause(ErrUnknown, err).
			WithDetail("operation", "send_text")
	}
	if len(bytes.TrimSpace(body)) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, Registry.NewWithCause(ErrUnknown, err).
				WithDetail("operation", "send_text").
				WithDetail("reason", "malformed response body")
		}
		receipt.MessageID = extractMessageID(parsed)
	}

	logx.Debug("Message sent to %s (id=%s)", chatID, receipt.MessageID)
	return receipt, nil
}

// CheckConnection probes GET /api/server/status. Used during setup to confirm
// reachability and credentials before a config entry is persisted.
func (c *Client) CheckConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/server/status", nil)
	if err != nil {
		return Registry.NewWithCause(ErrUnknown, err).
			WithDetail("operation", "check_connection")
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError("check_connection", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError("check_connection", resp)
	}
	return nil
}

// SessionStatus fetches GET /api/sessions/{session} and returns the session
// state string, e.g. WORKING or SCAN_QR_CODE
func (c *Client) SessionStatus(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/api/sessions/%s", c.config.BaseURL, c.config.SessionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", Registry.NewWithCause(ErrUnknown, err).
			WithDetail("operation", "session_status")
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.transportError("session_status", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError("session_status", resp)
	}

	var session struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", Registry.NewWithCause(ErrUnknown, err).
			WithDetail("operation", "session_status").
			WithDetail("reason", "malformed response body")
	}
	if session.Status == "" {
		return StatusUnknown, nil
	}
	return session.Status, nil
}

type setWebhookRequest struct {
	Webhook string `json:"webhook"`
	Session string `json:"session"`
}

// RegisterWebhook asks WAHA to deliver inbound messages for the session to
// webhookURL via POST /api/setWebhook
func (c *Client) RegisterWebhook(ctx context.Context, webhookURL string) error {
	payload := setWebhookRequest{
		Webhook: webhookURL,
		Session: c.config.SessionName,
	}

	resp, err := c.post(ctx, "/api/setWebhook", payload)
	if err != nil {
		return c.transportError("register_webhook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError("register_webhook", resp)
	}

	logx.Info("Webhook registered with WAHA: %s", webhookURL)
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
}

// extractMessageID digs the message id out of a sendText response. WAHA
// versions differ: some return {"id": "..."}, others nest it as
// {"id": {"id": "...", ...}}.
func extractMessageID(parsed map[string]any) string {
	switch id := parsed["id"].(type) {
	case string:
		return id
	case map[string]any:
		if nested, ok := id["id"].(string); ok {
			return nested
		}
	}
	return ""
}
