package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BrevoEndpoint is the transactional email endpoint of the Brevo API.
const BrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// ErrBrevoAPIKeyRequired is returned when the API key is missing.
var ErrBrevoAPIKeyRequired = errors.New("brevo api key is required")

// BrevoConfig configures the Brevo HTTP driver.
type BrevoConfig struct {
	APIKey string
	// Endpoint overrides BrevoEndpoint, mainly for tests.
	Endpoint string
	From     string
	Timeout  time.Duration
	Client   *http.Client
}

// Brevo sends email through the Brevo transactional API.
type Brevo struct {
	apiKey      string
	endpoint    string
	defaultFrom string
	client      *http.Client
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Cc          []brevoContact `json:"cc,omitempty"`
	Bcc         []brevoContact `json:"bcc,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
}

// NewBrevo constructs a Brevo driver.
func NewBrevo(cfg BrevoConfig) (*Brevo, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrBrevoAPIKeyRequired
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = BrevoEndpoint
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultSMTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Brevo{
		apiKey:      cfg.APIKey,
		endpoint:    endpoint,
		defaultFrom: cfg.From,
		client:      client,
	}, nil
}

// Send posts the message to Brevo. Any non-2xx answer is an error.
func (b *Brevo) Send(ctx context.Context, msg Message) error {
	if len(msg.recipients()) == 0 {
		return ErrNoRecipients
	}

	from, err := resolveFrom(msg.From, b.defaultFrom)
	if err != nil {
		return err
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      brevoContact{Email: from.Address, Name: from.Name},
		To:          contacts(msg.To),
		Cc:          contacts(msg.Cc),
		Bcc:         contacts(msg.Bcc),
		Subject:     msg.Subject,
		HTMLContent: msg.HTMLBody,
		TextContent: msg.TextBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Close releases idle connections.
func (b *Brevo) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

func contacts(addrs []string) []brevoContact {
	if len(addrs) == 0 {
		return nil
	}

	out := make([]brevoContact, 0, len(addrs))
	for _, a := range addrs {
		name, _, _ := strings.Cut(a, "@")
		out = append(out, brevoContact{Email: a, Name: name})
	}

	return out
}
