// Package backend proxies campaign delivery commands to the push backend
// that owns notification fan-out. The admin service never talks to APNs or
// FCM itself.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultRequestTimeout = 30 * time.Second

	adminSecretHeader = "X-Admin-Secret"
)

// Error carries the status code and message the push backend answered
// with so the caller can pass both through unchanged.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("push backend: status %d: %s", e.StatusCode, e.Message)
}

// Client issues broadcast commands to the push backend.
type Client struct {
	baseURL     string
	adminSecret string
	httpClient  *http.Client
}

// NewClient constructs a Client. A nil httpClient gets a default with a
// request timeout.
func NewClient(baseURL, adminSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		adminSecret: adminSecret,
		httpClient:  httpClient,
	}
}

// Configured reports whether a backend base URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// SendBroadcast asks the backend to start delivering the campaign.
func (c *Client) SendBroadcast(ctx context.Context, campaignID uint64) error {
	return c.post(ctx, campaignID, "send")
}

// CancelBroadcast asks the backend to stop delivering the campaign.
func (c *Client) CancelBroadcast(ctx context.Context, campaignID uint64) error {
	return c.post(ctx, campaignID, "cancel")
}

func (c *Client) post(ctx context.Context, campaignID uint64, action string) error {
	if !c.Configured() {
		return fmt.Errorf("push backend: not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	url := fmt.Sprintf("%s/api/admin/broadcasts/%d/%s", c.baseURL, campaignID, action)
	req, errBuild := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if errBuild != nil {
		return fmt.Errorf("push backend: build request: %w", errBuild)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminSecretHeader, c.adminSecret)

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return fmt.Errorf("push backend: request failed: %w", errDo)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("push backend: close response body failed")
		}
	}()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	return &Error{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body, action)}
}

func readErrorMessage(body io.Reader, action string) string {
	raw, errRead := io.ReadAll(io.LimitReader(body, 64*1024))
	if errRead == nil && len(raw) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if errParse := json.Unmarshal(raw, &payload); errParse == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	return fmt.Sprintf("failed to %s broadcast", action)
}
