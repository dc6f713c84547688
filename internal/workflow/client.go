// Package workflow implements the icebreaker provider backed by a
// workflow-automation webhook (an n8n-style HTTP endpoint wrapping an LLM).
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/leads"
	internalschemas "github.com/spdery/coldreach/internal/schemas"
	"github.com/spdery/coldreach/internal/worker"
	"github.com/spdery/coldreach/schemas"
)

// DefaultTimeout bounds one webhook call when the caller supplies no deadline.
const DefaultTimeout = 30 * time.Second

// request is the JSON payload posted to the webhook.
type request struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Title       string `json:"title"`
	Website     string `json:"website"`
	Template    string `json:"template,omitempty"`
}

// response is the JSON payload the webhook returns. Validated against
// schemas.WorkflowResponse before use.
type response struct {
	Icebreaker string `json:"icebreaker"`
	Status     string `json:"status"`
	Provider   string `json:"provider"`
	Error      string `json:"error"`
}

// Client calls the icebreaker webhook. It implements icebreaker.Provider.
type Client struct {
	webhookURL string
	template   string
	httpClient *http.Client
}

// New validates the webhook URL and returns a client. template, when
// non-empty, is forwarded so the workflow can steer the generation format.
func New(webhookURL, template string) (*Client, error) {
	u, err := url.Parse(webhookURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid webhook URL %q: must be an absolute http(s) URL", webhookURL)
	}
	return &Client{
		webhookURL: webhookURL,
		template:   template,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// Name implements icebreaker.Provider.
func (c *Client) Name() string { return icebreaker.ProviderWorkflow }

// Generate posts the lead to the webhook and returns its icebreaker text.
// 429 and 5xx responses and network failures come back as transient errors;
// other non-200 statuses and schema-invalid bodies are permanent.
func (c *Client) Generate(ctx context.Context, lead leads.Lead) (string, error) {
	payload := request{
		CompanyName: lead.Company,
		Industry:    lead.Industry,
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		Title:       lead.Title,
		Website:     lead.Website,
		Template:    c.template,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection errors and timeouts are worth retrying.
		return "", worker.Transient(fmt.Errorf("webhook request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", worker.Transient(fmt.Errorf("failed to read webhook response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", worker.Transient(err)
		}
		return "", err
	}

	if err := internalschemas.ValidateJSONString(schemas.WorkflowResponse, string(respBody)); err != nil {
		// A malformed response means the workflow itself is broken; retrying
		// the same payload will not fix it.
		return "", fmt.Errorf("webhook response failed schema validation: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode webhook response: %w", err)
	}
	if parsed.Status == "error" {
		return "", fmt.Errorf("webhook reported error: %s", parsed.Error)
	}

	return strings.TrimSpace(parsed.Icebreaker), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
