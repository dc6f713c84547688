// Package pipeline orchestrates a full lead processing run: CSV import,
// icebreaker resolution, scoring, campaign assignment, and upload to the
// campaign platform.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/spdery/coldreach/internal/db"
	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/instantly"
	"github.com/spdery/coldreach/internal/leads"
	"github.com/spdery/coldreach/internal/worker"
)

// ProgressEvent reports one lead finishing resolution.
type ProgressEvent struct {
	Email    string
	Company  string
	Provider string
	Score    int
	Campaign string
}

// ProgressCallback is invoked as leads complete, in completion order.
type ProgressCallback func(ProgressEvent)

// Uploader is the slice of the campaign platform the pipeline needs.
type Uploader interface {
	AddLeads(ctx context.Context, campaignID string, entries []instantly.LeadEntry) (*instantly.AddLeadsResult, error)
}

// Options configures one processing run.
type Options struct {
	CSVPath string
	Source  leads.Source

	Workers      int
	RateLimitRPS float64

	Thresholds leads.ScoreThresholds

	// CampaignIDs maps campaign identifiers from score assignment to platform
	// campaign IDs. A missing entry means leads for that campaign are resolved
	// and scored but not uploaded.
	CampaignIDs map[string]string

	// DryRun resolves and scores without uploading.
	DryRun bool

	// DatabaseURL enables run persistence when non-empty. Connection failures
	// degrade to an unpersisted run.
	DatabaseURL string

	Verbose    bool
	OnProgress ProgressCallback
}

// Outcome is the final state of one lead after a run.
type Outcome struct {
	Lead       leads.Lead
	Resolution icebreaker.Result
	Score      int
	Campaign   string
	Uploaded   bool
	Err        error
}

// Processed converts the outcome to its exportable record.
func (o Outcome) Processed() leads.Processed {
	p := leads.Processed{
		Lead:       o.Lead,
		Icebreaker: o.Resolution.Text,
		Provider:   o.Resolution.Provider,
		Score:      o.Score,
		Campaign:   o.Campaign,
		Uploaded:   o.Uploaded,
	}
	if o.Err != nil {
		p.Err = o.Err.Error()
	}
	return p
}

// Stats summarizes a run.
type Stats struct {
	Import     leads.ImportStats
	Processed  int
	Succeeded  int
	Failed     int
	Uploaded   int
	ByCampaign map[string]int
	ByProvider map[string]int
	Duration   time.Duration
	RunID      uuid.UUID
}

// Runner executes processing runs.
type Runner struct {
	resolver *icebreaker.Resolver
	uploader Uploader
	opts     Options
}

// New returns a Runner. uploader may be nil for dry runs.
func New(resolver *icebreaker.Resolver, uploader Uploader, opts Options) *Runner {
	return &Runner{resolver: resolver, uploader: uploader, opts: opts}
}

// Run processes the configured CSV end to end and returns per-lead outcomes
// alongside aggregate stats. Individual lead failures never abort the run.
func (r *Runner) Run(ctx context.Context) (*Stats, []Outcome, error) {
	start := time.Now()

	batch, importStats, err := leads.LoadCSV(r.opts.CSVPath, r.opts.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load leads: %w", err)
	}

	stats := &Stats{
		Import:     importStats,
		Processed:  len(batch),
		ByCampaign: map[string]int{},
		ByProvider: map[string]int{},
	}

	database, runID := r.openRun(ctx, len(batch))
	if database != nil {
		defer database.Close()
		stats.RunID = runID
	}

	thresholds := r.opts.Thresholds
	if thresholds.EducationalCampaign == "" {
		thresholds = leads.DefaultThresholds()
	}

	resolve := func(ctx context.Context, lead leads.Lead) (Outcome, error) {
		res := r.resolver.Resolve(ctx, lead)
		score := leads.Score(lead)
		return Outcome{
			Lead:       lead,
			Resolution: res,
			Score:      score,
			Campaign:   thresholds.AssignCampaign(score),
		}, nil
	}

	var onResult func(worker.Result[leads.Lead, Outcome])
	if r.opts.OnProgress != nil {
		onResult = func(res worker.Result[leads.Lead, Outcome]) {
			r.opts.OnProgress(ProgressEvent{
				Email:    res.Input.Email,
				Company:  res.Input.Company,
				Provider: res.Output.Resolution.Provider,
				Score:    res.Output.Score,
				Campaign: res.Output.Campaign,
			})
		}
	}

	results, err := worker.ProcessAllWithCallback(ctx, batch, resolve, onResult, worker.Options{
		Workers:      r.opts.Workers,
		RateLimitRPS: r.opts.RateLimitRPS,
	})
	if err != nil {
		r.closeRun(database, runID, db.RunStatusFailed, stats)
		return nil, nil, err
	}

	outcomes := make([]Outcome, len(results))
	for i, res := range results {
		outcomes[i] = res.Output
		if res.Err != nil {
			outcomes[i].Err = res.Err
		}
	}

	if !r.opts.DryRun && r.uploader != nil {
		r.upload(ctx, outcomes)
	}

	for i := range outcomes {
		o := &outcomes[i]
		if o.Err != nil {
			stats.Failed++
		} else {
			stats.Succeeded++
			stats.ByCampaign[o.Campaign]++
			stats.ByProvider[o.Resolution.Provider]++
		}
		if o.Uploaded {
			stats.Uploaded++
		}
		r.persistOutcome(database, runID, *o)
	}

	stats.Duration = time.Since(start)
	r.closeRun(database, runID, db.RunStatusCompleted, stats)
	return stats, outcomes, nil
}

// upload groups outcomes by campaign and pushes each group as one batch.
// Upload failures mark every lead in the batch as failed.
func (r *Runner) upload(ctx context.Context, outcomes []Outcome) {
	byCampaign := map[string][]*Outcome{}
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err != nil {
			continue
		}
		byCampaign[o.Campaign] = append(byCampaign[o.Campaign], o)
	}

	for campaign, group := range byCampaign {
		campaignID, ok := r.opts.CampaignIDs[campaign]
		if !ok {
			if r.opts.Verbose {
				log.Printf("[pipeline] no platform campaign configured for %q, skipping upload of %d leads", campaign, len(group))
			}
			continue
		}

		entries := make([]instantly.LeadEntry, len(group))
		for i, o := range group {
			entries[i] = instantly.LeadEntry{
				Email:           o.Lead.Email,
				FirstName:       o.Lead.FirstName,
				LastName:        o.Lead.LastName,
				CompanyName:     o.Lead.Company,
				Personalization: o.Resolution.Text,
				CustomVariables: map[string]string{
					"lead_score":        fmt.Sprintf("%d", o.Score),
					"icebreaker_source": o.Resolution.Provider,
					"assigned_campaign": campaign,
				},
			}
		}

		if _, err := r.uploader.AddLeads(ctx, campaignID, entries); err != nil {
			for _, o := range group {
				o.Err = fmt.Errorf("upload to campaign %q failed: %w", campaign, err)
			}
			continue
		}
		for _, o := range group {
			o.Uploaded = true
		}
	}
}

// openRun connects to the database if configured. Connection failures are
// logged and the run proceeds without persistence.
func (r *Runner) openRun(ctx context.Context, totalLeads int) (*db.DB, uuid.UUID) {
	if r.opts.DatabaseURL == "" {
		return nil, uuid.Nil
	}
	database, err := db.Connect(ctx, r.opts.DatabaseURL)
	if err != nil {
		log.Printf("[pipeline] warning: database unavailable, continuing without persistence: %v", err)
		return nil, uuid.Nil
	}
	if err := database.EnsureSchema(ctx); err != nil {
		log.Printf("[pipeline] warning: %v, continuing without persistence", err)
		database.Close()
		return nil, uuid.Nil
	}
	runID, err := database.CreateRun(ctx, r.opts.CSVPath, totalLeads)
	if err != nil {
		log.Printf("[pipeline] warning: %v, continuing without persistence", err)
		database.Close()
		return nil, uuid.Nil
	}
	return database, runID
}

func (r *Runner) persistOutcome(database *db.DB, runID uuid.UUID, o Outcome) {
	if database == nil {
		return
	}
	result := db.LeadResult{
		Email:      o.Lead.Email,
		Company:    o.Lead.Company,
		Score:      o.Score,
		Campaign:   o.Campaign,
		Provider:   o.Resolution.Provider,
		Icebreaker: o.Resolution.Text,
		Uploaded:   o.Uploaded,
	}
	if o.Err != nil {
		result.Error = o.Err.Error()
	}
	if err := database.SaveLeadResult(context.Background(), runID, result); err != nil {
		log.Printf("[pipeline] warning: %v", err)
	}
}

func (r *Runner) closeRun(database *db.DB, runID uuid.UUID, status string, stats *Stats) {
	if database == nil {
		return
	}
	if err := database.CompleteRun(context.Background(), runID, status, stats.Succeeded, stats.Failed); err != nil {
		log.Printf("[pipeline] warning: %v", err)
	}
}
