// Package instantly is a minimal client for the Instantly campaign API:
// uploading leads into campaigns, listing campaigns, and pulling analytics
// and replies for monitoring.
package instantly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spdery/coldreach/internal/worker"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.instantly.ai/api/v1"

// DefaultTimeout bounds individual API requests.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the campaign API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("instantly API error: status %d: %s", e.Status, e.Body)
}

// Client talks to the Instantly API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("instantly API key is required")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LeadEntry is one lead in an upload batch.
type LeadEntry struct {
	Email           string            `json:"email"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name,omitempty"`
	CompanyName     string            `json:"company_name"`
	Personalization string            `json:"personalization"`
	CustomVariables map[string]string `json:"custom_variables,omitempty"`
}

type addLeadsRequest struct {
	APIKey            string      `json:"api_key"`
	CampaignID        string      `json:"campaign_id"`
	SkipIfInWorkspace bool        `json:"skip_if_in_workspace"`
	SkipIfInCampaign  bool        `json:"skip_if_in_campaign"`
	Leads             []LeadEntry `json:"leads"`
}

// AddLeadsResult reports the outcome of an upload batch.
type AddLeadsResult struct {
	Status       string `json:"status"`
	LeadsAdded   int    `json:"leads_uploaded"`
	LeadsSkipped int    `json:"already_in_workspace,omitempty"`
}

// AddLeads uploads leads into the given campaign. Duplicates already present
// in the workspace are skipped server-side.
func (c *Client) AddLeads(ctx context.Context, campaignID string, entries []LeadEntry) (*AddLeadsResult, error) {
	if campaignID == "" {
		return nil, fmt.Errorf("campaign ID is required")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no leads to upload")
	}

	req := addLeadsRequest{
		APIKey:            c.apiKey,
		CampaignID:        campaignID,
		SkipIfInWorkspace: true,
		SkipIfInCampaign:  true,
		Leads:             entries,
	}

	var result AddLeadsResult
	if err := c.post(ctx, "/lead/add", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Campaign is a campaign summary from the list endpoint.
type Campaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ListCampaigns returns all campaigns in the workspace.
func (c *Client) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	q := url.Values{"api_key": {c.apiKey}}
	if err := c.get(ctx, "/campaign/list", q, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Analytics is the raw per-campaign counters from the analytics endpoint.
type Analytics struct {
	CampaignID   string `json:"campaign_id"`
	Sent         int    `json:"sent"`
	Delivered    int    `json:"delivered"`
	Opened       int    `json:"opened"`
	Clicked      int    `json:"clicked"`
	Replied      int    `json:"replied"`
	Bounced      int    `json:"bounced"`
	Unsubscribed int    `json:"unsubscribed"`
}

// CampaignAnalytics fetches sending counters for one campaign.
func (c *Client) CampaignAnalytics(ctx context.Context, campaignID string) (*Analytics, error) {
	if campaignID == "" {
		return nil, fmt.Errorf("campaign ID is required")
	}
	var a Analytics
	q := url.Values{
		"api_key":     {c.apiKey},
		"campaign_id": {campaignID},
	}
	if err := c.get(ctx, "/analytics/campaign", q, &a); err != nil {
		return nil, err
	}
	a.CampaignID = campaignID
	return &a, nil
}

// Reply is an inbound reply to a campaign email.
type Reply struct {
	LeadEmail  string    `json:"lead_email"`
	CampaignID string    `json:"campaign_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// RecentReplies returns replies received since the given time, across all
// campaigns.
func (c *Client) RecentReplies(ctx context.Context, since time.Time) ([]Reply, error) {
	var replies []Reply
	q := url.Values{
		"api_key": {c.apiKey},
		"since":   {strconv.FormatInt(since.Unix(), 10)},
	}
	if err := c.get(ctx, "/lead/replies", q, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are worth retrying.
		return worker.Transient(fmt.Errorf("instantly request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return worker.Transient(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Body: truncate(string(body), 500)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return worker.Transient(apiErr)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
