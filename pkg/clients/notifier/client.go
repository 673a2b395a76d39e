package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client delivers operational notifications to a webhook.
type Client interface {
	Notify(ctx context.Context, req NotifyRequest) error
}

// Config holds the webhook settings.
type Config struct {
	WebhookURL string
	Token      string
	Timeout    time.Duration
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg Config) *WebhookClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        strings.TrimSpace(cfg.WebhookURL),
	}
}

// NotifyRequest is the message payload. Text duplicates the body for chat webhooks
// (Slack, Google Chat) that only read a "text" field.
type NotifyRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Text    string `json:"text"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *WebhookClient) Notify(ctx context.Context, req NotifyRequest) error {
	if c.url == "" {
		return fmt.Errorf("notifier webhook url is not configured")
	}
	if req.Text == "" {
		req.Text = req.Message
		if req.Title != "" {
			req.Text = req.Title + "\n" + req.Message
		}
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("notifier webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}
	return nil
}
