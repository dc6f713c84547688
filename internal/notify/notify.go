// Package notify sends hot-lead alerts to a Slack-compatible incoming
// webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spdery/coldreach/internal/monitor"
)

// maxLeadsPerAlert keeps the message readable; remaining leads are counted
// in the headline.
const maxLeadsPerAlert = 5

// DefaultTimeout bounds the webhook delivery.
const DefaultTimeout = 10 * time.Second

// Notifier posts alerts to an incoming webhook. A Notifier with an empty URL
// is a no-op, so callers never need to branch on whether alerting is
// configured.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// New returns a Notifier for the given webhook URL. An empty URL yields a
// disabled no-op notifier; an invalid URL is an error.
func New(webhookURL string) (*Notifier, error) {
	if webhookURL != "" {
		u, err := url.Parse(webhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("invalid notification webhook URL: %q", webhookURL)
		}
	}
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// Enabled reports whether alerts will actually be sent.
func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type message struct {
	Text        string       `json:"text"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Color  string  `json:"color"`
	Fields []field `json:"fields"`
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// HotLeads sends an alert for positive replies. It is a no-op when the
// notifier is disabled or the list is empty.
func (n *Notifier) HotLeads(ctx context.Context, hotLeads []monitor.HotLead) error {
	if !n.Enabled() || len(hotLeads) == 0 {
		return nil
	}

	msg := message{Text: fmt.Sprintf("🔥 %d Hot Leads Detected!", len(hotLeads))}
	shown := hotLeads
	if len(shown) > maxLeadsPerAlert {
		shown = shown[:maxLeadsPerAlert]
		msg.Text += fmt.Sprintf(" (showing first %d)", maxLeadsPerAlert)
	}
	for _, h := range shown {
		msg.Attachments = append(msg.Attachments, attachment{
			Color: "good",
			Fields: []field{
				{Title: "Email", Value: h.Email, Short: true},
				{Title: "Campaign", Value: h.CampaignID, Short: true},
				{Title: "Reply", Value: h.Excerpt, Short: false},
			},
		})
	}

	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
