// Package sender holds the email transports used by the notification
// dispatcher.
package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vcc/internal/notify/models"
)

const DefaultResendEndpoint = "https://api.resend.com/emails"

// Resend posts messages to the Resend REST API.
type Resend struct {
	endpoint   string
	apiKey     string
	from       string
	httpClient *http.Client
}

type ResendOption func(*Resend)

func WithEndpoint(endpoint string) ResendOption {
	return func(r *Resend) {
		if endpoint != "" {
			r.endpoint = endpoint
		}
	}
}

func WithHTTPClient(c *http.Client) ResendOption {
	return func(r *Resend) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// NewResend returns a Resend transport. Deadlines come from the caller's
// context.
func NewResend(apiKey, from string, opts ...ResendOption) *Resend {
	r := &Resend{
		endpoint:   DefaultResendEndpoint,
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (r *Resend) Send(ctx context.Context, msg models.Message) error {
	if r.apiKey == "" {
		return models.ErrTransportUnconfigured
	}
	body, err := json.Marshal(resendPayload{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Unconfigured stands in when no API key is set so the rest of the pipeline
// still runs and the skip is counted.
type Unconfigured struct{}

func (Unconfigured) Send(context.Context, models.Message) error {
	return models.ErrTransportUnconfigured
}
