package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/pkg/retry"
)

// Webhook POSTs each value as a JSON body.
type Webhook struct {
	url         string
	headers     map[string]string
	contentType string
	client      *http.Client
	retry       retry.Config
}

// NewWebhook creates a webhook outputter. A nil client gets one with the
// configured timeout (default 30s).
func NewWebhook(cfg Config, client *http.Client) *Webhook {
	if client == nil {
		timeout := 30 * time.Second
		if cfg.Timeout > 0 {
			timeout = time.Duration(cfg.Timeout) * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = "application/json"
	}

	backoff := retry.DefaultConfig()
	backoff.MaxAttempts = cfg.RetryCount + 1
	backoff.InitialDelay = 100 * time.Millisecond
	backoff.Retryable = errors.IsTransient

	return &Webhook{
		url:         cfg.URL,
		headers:     cfg.Headers,
		contentType: contentType,
		client:      client,
		retry:       backoff,
	}
}

// Output implements Outputter. Server errors and transport failures are retried;
// other non-2xx responses fail at once.
func (w *Webhook) Output(ctx context.Context, data any) error {
	body, err := Marshal(data, false)
	if err != nil {
		return errors.WrapInvalid(err, "Webhook", "Output", "marshal value")
	}

	return retry.Do(ctx, w.retry, func(ctx context.Context) error {
		return w.post(ctx, body)
	})
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.WrapInvalid(err, "Webhook", "Output", "build request")
	}
	req.Header.Set("Content-Type", w.contentType)
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.WrapTransient(err, "Webhook", "Output", "send request")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return errors.WrapTransient(fmt.Errorf("unexpected status %d", resp.StatusCode),
			"Webhook", "Output", "check response")
	default:
		return errors.WrapInvalid(fmt.Errorf("unexpected status %d", resp.StatusCode),
			"Webhook", "Output", "check response")
	}
}
