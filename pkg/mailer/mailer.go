// Package mailer sends notification email through the external sendmail
// HTTP API. Delivery is best effort: callers dispatch sends in the
// background and only log failures.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Mailer is a thin client for the sendmail API. The zero value is not
// usable; construct with New.
type Mailer struct {
	apiURL string
	apiKey string
	client *http.Client
}

func New(apiURL, apiKey string) *Mailer {
	return &Mailer{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an API endpoint is configured at all. With no
// endpoint, sends are silently skipped rather than failing.
func (m *Mailer) Enabled() bool {
	return m != nil && m.apiURL != ""
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send delivers one message. The API takes its parameters as a query
// string and answers {success, message}.
func (m *Mailer) Send(ctx context.Context, to, subject, message string) error {
	if !m.Enabled() {
		return nil
	}

	q := url.Values{}
	q.Set("api_key", m.apiKey)
	q.Set("to", to)
	q.Set("subject", subject)
	q.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode mail API response: %w", err)
	}
	if !result.Success {
		if result.Message == "" {
			result.Message = "unknown error"
		}
		return fmt.Errorf("mail API error: %s", result.Message)
	}
	return nil
}
