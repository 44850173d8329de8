package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"learnhub/internal/config"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type Mailer interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

// SendError is a non-2xx answer from the mail API.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail api error %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether a failed send may succeed when repeated:
// network failures, throttling and server side errors.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.StatusCode == http.StatusTooManyRequests || sendErr.StatusCode >= 500
	}

	return true
}

type httpMailerImpl struct {
	httpClient *http.Client
	baseURL    string
	domain     string
	apiKey     string
	from       string
}

// NewMailer returns an HTTP mail API client, or a mailer that only logs when no API is configured.
func NewMailer(cfg *config.Mailer, log *zap.Logger) Mailer {
	if cfg.BaseURL == "" {
		return &logMailerImpl{log: log.Named("mailer"), from: cfg.From}
	}

	return &httpMailerImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		domain:  cfg.Domain,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
	}
}

func (c *httpMailerImpl) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	form := url.Values{}
	form.Set("from", c.from)
	form.Set("to", recipient)
	form.Set("subject", subject)
	form.Set("html", htmlBody)

	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.baseURL, c.domain)
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		endpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.SetBasicAuth("api", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &SendError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	return nil
}

type logMailerImpl struct {
	log  *zap.Logger
	from string
}

func (m *logMailerImpl) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	m.log.Info("email",
		zap.String("from", m.from),
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)),
	)
	return nil
}
