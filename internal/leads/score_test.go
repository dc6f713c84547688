package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_DecisionMakerAtServiceBusiness(t *testing.T) {
	l := Lead{
		Company:  "Brightside Marketing Agency",
		Industry: "Marketing",
		Title:    "Founder",
		Website:  "https://brightside.example",
		LinkedIn: "https://linkedin.com/in/x",
	}
	// 25 (company keyword) + 30 (industry) + 25 (title) + 10 + 10, capped at 100.
	assert.Equal(t, 100, Score(l))
}

func TestScore_LowSignalLead(t *testing.T) {
	l := Lead{
		Company:  "Acme Widgets",
		Industry: "Manufacturing",
		Title:    "Engineer",
	}
	assert.Equal(t, 0, Score(l))
}

func TestScore_PartialSignals(t *testing.T) {
	l := Lead{
		Company:  "Northwind Traders",
		Industry: "Legal",
		Title:    "VP of Operations",
		Website:  "http://northwind.example",
	}
	assert.Equal(t, 65, Score(l))
}

func TestAssignCampaign(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, "enterprise-direct-pitch", th.AssignCampaign(95))
	assert.Equal(t, "enterprise-direct-pitch", th.AssignCampaign(80))
	assert.Equal(t, "professional-nurture", th.AssignCampaign(79))
	assert.Equal(t, "professional-nurture", th.AssignCampaign(60))
	assert.Equal(t, "educational-sequence", th.AssignCampaign(59))
	assert.Equal(t, "educational-sequence", th.AssignCampaign(0))
}

func TestAssignCampaign_CustomCampaignIDs(t *testing.T) {
	th := ScoreThresholds{
		Enterprise:           90,
		Professional:         50,
		EnterpriseCampaign:   "camp-a",
		ProfessionalCampaign: "camp-b",
		EducationalCampaign:  "camp-c",
	}
	assert.Equal(t, "camp-a", th.AssignCampaign(90))
	assert.Equal(t, "camp-b", th.AssignCampaign(60))
	assert.Equal(t, "camp-c", th.AssignCampaign(10))
}
