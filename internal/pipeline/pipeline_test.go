package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/instantly"
	"github.com/spdery/coldreach/internal/leads"
)

const sampleCSV = `first_name,last_name,email,company_name,industry,website,title
Jane,Doe,jane@consultech.com,ConsuTech Agency,Consulting,https://consultech.com,Founder
Bob,Ray,bob@rayservices.com,Ray Services,Accounting,,Owner
Amy,Lin,amy@linworks.com,Lin Works,Software,,Engineer
,,not-an-email,,,,
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeUploader struct {
	mu      sync.Mutex
	batches map[string][]instantly.LeadEntry
	err     error
}

func (f *fakeUploader) AddLeads(_ context.Context, campaignID string, entries []instantly.LeadEntry) (*instantly.AddLeadsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.batches == nil {
		f.batches = map[string][]instantly.LeadEntry{}
	}
	f.batches[campaignID] = append(f.batches[campaignID], entries...)
	return &instantly.AddLeadsResult{LeadsAdded: len(entries)}, nil
}

// templateOnlyResolver resolves every lead deterministically with no remote
// providers configured.
func templateOnlyResolver() *icebreaker.Resolver {
	return icebreaker.NewResolver(icebreaker.Options{}, nil)
}

func campaignIDs() map[string]string {
	return map[string]string{
		"enterprise-direct-pitch": "camp-ent",
		"professional-nurture":    "camp-pro",
		"educational-sequence":    "camp-edu",
	}
}

func TestRun_EndToEnd(t *testing.T) {
	uploader := &fakeUploader{}
	r := New(templateOnlyResolver(), uploader, Options{
		CSVPath:     writeCSV(t, sampleCSV),
		CampaignIDs: campaignIDs(),
	})

	stats, outcomes, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Succeeded)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 3, stats.Uploaded)
	assert.Equal(t, 1, stats.Import.Skipped)
	assert.Equal(t, 3, stats.ByProvider[icebreaker.ProviderTemplate])

	// Jane scores 90 (keyword, industry, title, website); Amy scores 0.
	require.Len(t, outcomes, 3)
	assert.Equal(t, "enterprise-direct-pitch", outcomes[0].Campaign)
	assert.Equal(t, "educational-sequence", outcomes[2].Campaign)

	assert.NotEmpty(t, uploader.batches["camp-ent"])
	for _, entries := range uploader.batches {
		for _, e := range entries {
			assert.NotEmpty(t, e.Personalization)
			assert.NotEmpty(t, e.CustomVariables["lead_score"])
		}
	}
}

func TestRun_DryRunSkipsUpload(t *testing.T) {
	uploader := &fakeUploader{}
	r := New(templateOnlyResolver(), uploader, Options{
		CSVPath:     writeCSV(t, sampleCSV),
		CampaignIDs: campaignIDs(),
		DryRun:      true,
	})

	stats, outcomes, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Uploaded)
	assert.Empty(t, uploader.batches)
	for _, o := range outcomes {
		assert.False(t, o.Uploaded)
		assert.NotEmpty(t, o.Resolution.Text)
	}
}

func TestRun_UploadFailureMarksLeads(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("platform down")}
	r := New(templateOnlyResolver(), uploader, Options{
		CSVPath:     writeCSV(t, sampleCSV),
		CampaignIDs: campaignIDs(),
	})

	stats, outcomes, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Uploaded)
	assert.Equal(t, 3, stats.Failed)
	for _, o := range outcomes {
		require.Error(t, o.Err)
		assert.Contains(t, o.Err.Error(), "upload to campaign")
	}
}

func TestRun_UnmappedCampaignIsNotUploaded(t *testing.T) {
	uploader := &fakeUploader{}
	r := New(templateOnlyResolver(), uploader, Options{
		CSVPath: writeCSV(t, sampleCSV),
		CampaignIDs: map[string]string{
			"enterprise-direct-pitch": "camp-ent",
		},
	})

	stats, outcomes, err := r.Run(context.Background())
	require.NoError(t, err)

	// Only the enterprise group uploads; the rest stay resolved but local.
	assert.Equal(t, stats.Uploaded, len(uploader.batches["camp-ent"]))
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	var mu sync.Mutex
	var events []ProgressEvent
	r := New(templateOnlyResolver(), nil, Options{
		CSVPath: writeCSV(t, sampleCSV),
		DryRun:  true,
		OnProgress: func(e ProgressEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		},
	})

	_, _, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 3)
	for _, e := range events {
		assert.NotEmpty(t, e.Email)
		assert.Equal(t, icebreaker.ProviderTemplate, e.Provider)
		assert.NotEmpty(t, e.Campaign)
	}
}

func TestOutcome_Processed(t *testing.T) {
	o := Outcome{
		Lead:     leads.Lead{Email: "a@x.com", Company: "X Corp"},
		Score:    70,
		Campaign: "professional-nurture",
		Uploaded: true,
		Err:      errors.New("late failure"),
	}
	o.Resolution.Text = "Nice work on the launch"
	o.Resolution.Provider = "workflow"

	p := o.Processed()
	assert.Equal(t, "a@x.com", p.Lead.Email)
	assert.Equal(t, "Nice work on the launch", p.Icebreaker)
	assert.Equal(t, "workflow", p.Provider)
	assert.Equal(t, 70, p.Score)
	assert.True(t, p.Uploaded)
	assert.Equal(t, "late failure", p.Err)
}

func TestRun_MissingFileFails(t *testing.T) {
	r := New(templateOnlyResolver(), nil, Options{CSVPath: "does-not-exist.csv"})
	_, _, err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_DefaultsThresholds(t *testing.T) {
	r := New(templateOnlyResolver(), nil, Options{
		CSVPath: writeCSV(t, sampleCSV),
		DryRun:  true,
	})
	_, outcomes, err := r.Run(context.Background())
	require.NoError(t, err)
	defaults := leads.DefaultThresholds()
	for _, o := range outcomes {
		assert.Equal(t, defaults.AssignCampaign(o.Score), o.Campaign)
	}
}
