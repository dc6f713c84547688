// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spdery/coldreach/internal/leads"
	"github.com/spdery/coldreach/internal/monitor"
	"github.com/spdery/coldreach/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintImportStats outputs a summary of the CSV import.
func (p *Printer) PrintImportStats(stats leads.ImportStats) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Rows read:    %d\n", stats.Rows))
	sb.WriteString(fmt.Sprintf("Valid leads:  %d\n", stats.Valid))
	sb.WriteString(fmt.Sprintf("Skipped:      %d\n", stats.Skipped))

	if len(stats.Mapping) > 0 {
		sb.WriteString("\nDetected columns:\n")
		fields := make([]string, 0, len(stats.Mapping))
		for field := range stats.Mapping {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		count := min(len(fields), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s ← %s\n", fields[i], stats.Mapping[fields[i]]))
		}
		if len(fields) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(fields)-maxItemsToShow))
		}
	}

	p.printBox("CSV IMPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunStats outputs the aggregate outcome of a processing run.
func (p *Printer) PrintRunStats(stats *pipeline.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed:  %d\n", stats.Processed))
	sb.WriteString(fmt.Sprintf("Succeeded:  %d\n", stats.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", stats.Failed))
	sb.WriteString(fmt.Sprintf("Uploaded:   %d\n", stats.Uploaded))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", stats.Duration.Round(time.Millisecond)))

	if len(stats.ByCampaign) > 0 {
		sb.WriteString("\nBy campaign:\n")
		for _, name := range sortedKeys(stats.ByCampaign) {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", name, stats.ByCampaign[name]))
		}
	}
	if len(stats.ByProvider) > 0 {
		sb.WriteString("\nIcebreaker sources:\n")
		for _, name := range sortedKeys(stats.ByProvider) {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", name, stats.ByProvider[name]))
		}
	}

	p.printBox("PROCESSING RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCampaignMetrics outputs per-campaign engagement rates.
func (p *Printer) PrintCampaignMetrics(metrics []monitor.CampaignMetrics) {
	if len(metrics) == 0 {
		return
	}

	var sb strings.Builder
	for i, m := range metrics {
		sb.WriteString(fmt.Sprintf("%s\n", m.Campaign.Name))
		sb.WriteString(fmt.Sprintf("  Sent %d, delivered %.1f%%\n", m.Analytics.Sent, m.DeliveryRate))
		sb.WriteString(fmt.Sprintf("  Open %.1f%%  Reply %.1f%%  Bounce %.1f%%\n",
			m.OpenRate, m.ReplyRate, m.BounceRate))
		if !m.MeetsBenchmark {
			sb.WriteString("  ⚠ reply rate below benchmark\n")
		}
		if i < len(metrics)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CAMPAIGN METRICS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHotLeads outputs positive replies needing immediate attention.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHotLeads(hotLeads []monitor.HotLead) {
	if len(hotLeads) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO HOT LEADS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	count := min(len(hotLeads), maxItemsToShow)
	for i := 0; i < count; i++ {
		h := hotLeads[i]
		sb.WriteString(fmt.Sprintf("🔥 %s\n", h.Email))
		excerpt := h.Excerpt
		if len(excerpt) > 45 {
			excerpt = excerpt[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("   %s\n", excerpt))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(hotLeads) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(hotLeads)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("HOT LEADS (%d)", len(hotLeads)), sb.String())
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
