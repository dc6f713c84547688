// Package monitor pulls campaign analytics and replies, computes engagement
// rates against benchmarks, and surfaces hot leads from positive replies.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spdery/coldreach/internal/instantly"
	"github.com/spdery/coldreach/internal/llm"
)

// ReplyRateBenchmark is the minimum reply rate (percent) considered healthy
// for cold outreach.
const ReplyRateBenchmark = 1.0

// repliesPerMeeting estimates booked meetings from delivery volume, based on
// typical cold-email conversion.
const repliesPerMeeting = 150

// maxExcerptLen bounds the reply excerpt carried into reports and alerts.
const maxExcerptLen = 150

// API is the slice of the campaign platform the monitor needs.
type API interface {
	ListCampaigns(ctx context.Context) ([]instantly.Campaign, error)
	CampaignAnalytics(ctx context.Context, campaignID string) (*instantly.Analytics, error)
	RecentReplies(ctx context.Context, since time.Time) ([]instantly.Reply, error)
}

// Classifier labels a reply body as positive, negative, or neutral.
type Classifier func(ctx context.Context, replyText string) string

// KeywordClassifier is the offline default, used when no model client is
// configured.
func KeywordClassifier(_ context.Context, replyText string) string {
	return llm.KeywordSentiment(replyText)
}

// ModelClassifier classifies replies with the generative model, falling back
// to keyword matching when the call fails.
func ModelClassifier(client llm.Client) Classifier {
	return func(ctx context.Context, replyText string) string {
		sentiment, err := llm.ClassifySentiment(ctx, client, replyText)
		if err != nil {
			return llm.KeywordSentiment(replyText)
		}
		return sentiment
	}
}

// CampaignMetrics is one campaign's counters with derived rates. Rates are
// percentages.
type CampaignMetrics struct {
	Campaign  instantly.Campaign
	Analytics instantly.Analytics

	DeliveryRate float64
	OpenRate     float64
	ClickRate    float64
	ReplyRate    float64
	BounceRate   float64

	MeetsBenchmark    bool
	EstimatedMeetings int
}

// ClassifiedReply is a reply with its sentiment label.
type ClassifiedReply struct {
	instantly.Reply
	Sentiment string
}

// HotLead is a positive reply worth immediate sales attention.
type HotLead struct {
	Email      string
	CampaignID string
	Excerpt    string
	ReceivedAt time.Time
}

// Snapshot is one monitoring pass over all campaigns.
type Snapshot struct {
	GeneratedAt time.Time
	Campaigns   []CampaignMetrics
	Replies     []ClassifiedReply
	HotLeads    []HotLead
}

// Monitor fetches and aggregates campaign performance.
type Monitor struct {
	api      API
	classify Classifier
}

// New returns a Monitor. classify may be nil, in which case replies are
// labeled by keyword matching.
func New(api API, classify Classifier) *Monitor {
	if classify == nil {
		classify = KeywordClassifier
	}
	return &Monitor{api: api, classify: classify}
}

// Snapshot fetches analytics for every campaign and replies since the given
// time, concurrently, and aggregates them into a report-ready snapshot.
func (m *Monitor) Snapshot(ctx context.Context, since time.Time) (*Snapshot, error) {
	campaigns, err := m.api.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	snap := &Snapshot{GeneratedAt: time.Now()}

	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	metrics := make([]CampaignMetrics, 0, len(campaigns))
	for _, campaign := range campaigns {
		campaign := campaign
		g.Go(func() error {
			analytics, err := m.api.CampaignAnalytics(gctx, campaign.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch analytics for campaign %q: %w", campaign.Name, err)
			}
			mu.Lock()
			metrics = append(metrics, computeMetrics(campaign, *analytics))
			mu.Unlock()
			return nil
		})
	}

	var replies []instantly.Reply
	g.Go(func() error {
		var err error
		replies, err = m.api.RecentReplies(gctx, since)
		if err != nil {
			return fmt.Errorf("failed to fetch replies: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Campaign.Name < metrics[j].Campaign.Name
	})
	snap.Campaigns = metrics

	for _, reply := range replies {
		classified := ClassifiedReply{
			Reply:     reply,
			Sentiment: m.classify(ctx, reply.Body),
		}
		snap.Replies = append(snap.Replies, classified)
		if classified.Sentiment == llm.SentimentPositive {
			snap.HotLeads = append(snap.HotLeads, HotLead{
				Email:      reply.LeadEmail,
				CampaignID: reply.CampaignID,
				Excerpt:    excerpt(reply.Body),
				ReceivedAt: reply.ReceivedAt,
			})
		}
	}

	return snap, nil
}

func computeMetrics(campaign instantly.Campaign, a instantly.Analytics) CampaignMetrics {
	m := CampaignMetrics{Campaign: campaign, Analytics: a}
	m.DeliveryRate = rate(a.Delivered, a.Sent)
	m.OpenRate = rate(a.Opened, a.Delivered)
	m.ClickRate = rate(a.Clicked, a.Delivered)
	m.ReplyRate = rate(a.Replied, a.Delivered)
	m.BounceRate = rate(a.Bounced, a.Sent)
	m.MeetsBenchmark = m.ReplyRate >= ReplyRateBenchmark
	m.EstimatedMeetings = a.Delivered / repliesPerMeeting
	return m
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func excerpt(body string) string {
	if len(body) <= maxExcerptLen {
		return body
	}
	return body[:maxExcerptLen] + "..."
}
