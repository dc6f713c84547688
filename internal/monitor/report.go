package monitor

import (
	"fmt"
	"strings"
)

// Report renders the snapshot as a plain-text summary suitable for terminals
// and log aggregation.
func (s *Snapshot) Report() string {
	var sb strings.Builder

	sb.WriteString("CAMPAIGN PERFORMANCE\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	if len(s.Campaigns) == 0 {
		sb.WriteString("No campaigns found.\n")
	}
	for _, m := range s.Campaigns {
		fmt.Fprintf(&sb, "\n%s (%s)\n", m.Campaign.Name, m.Campaign.Status)
		fmt.Fprintf(&sb, "  Sent: %d  Delivered: %d (%.1f%%)\n",
			m.Analytics.Sent, m.Analytics.Delivered, m.DeliveryRate)
		fmt.Fprintf(&sb, "  Opens: %.1f%%  Clicks: %.1f%%  Replies: %.1f%%  Bounces: %.1f%%\n",
			m.OpenRate, m.ClickRate, m.ReplyRate, m.BounceRate)
		benchmark := "below"
		if m.MeetsBenchmark {
			benchmark = "meets"
		}
		fmt.Fprintf(&sb, "  Reply rate %s the %.1f%% benchmark\n", benchmark, ReplyRateBenchmark)
		if m.EstimatedMeetings > 0 {
			fmt.Fprintf(&sb, "  Estimated meetings: ~%d\n", m.EstimatedMeetings)
		}
	}

	if len(s.Replies) > 0 {
		counts := map[string]int{}
		for _, r := range s.Replies {
			counts[r.Sentiment]++
		}
		sb.WriteString("\nREPLY SENTIMENT\n")
		sb.WriteString(strings.Repeat("=", 60) + "\n")
		fmt.Fprintf(&sb, "  %d replies: %d positive, %d neutral, %d negative\n",
			len(s.Replies), counts["positive"], counts["neutral"], counts["negative"])
	}

	if len(s.HotLeads) > 0 {
		fmt.Fprintf(&sb, "\nHOT LEADS (%d)\n", len(s.HotLeads))
		sb.WriteString(strings.Repeat("=", 60) + "\n")
		for _, h := range s.HotLeads {
			fmt.Fprintf(&sb, "  %s: %s\n", h.Email, h.Excerpt)
		}
	}

	return sb.String()
}
