package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// Email is one outbound message.
type Email struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends transactional email. Implementations must be safe for
// concurrent use; the dispatcher calls Send from its worker goroutine.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type brevoSendRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	TextContent string         `json:"textContent,omitempty"`
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoClient sends email via the Brevo transactional API. An empty APIKey
// turns every send into a no-op, which keeps local development quiet.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

// NewBrevoClient builds a client with a bounded-timeout HTTP client so that
// Send never has to touch shared state after construction.
func NewBrevoClient(apiKey, mailFrom string) *BrevoClient {
	return &BrevoClient{
		APIKey:   apiKey,
		MailFrom: mailFrom,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@plotsureconnect.rw"
}

func (c *BrevoClient) Send(ctx context.Context, e Email) error {
	if c.APIKey == "" {
		return nil
	}
	body := brevoSendRequest{
		Sender:      brevoAddress{Email: c.from(), Name: "PlotSure Connect"},
		To:          []brevoAddress{{Email: e.To, Name: e.ToName}},
		Subject:     e.Subject,
		HTMLContent: e.HTML,
		TextContent: e.Text,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}
