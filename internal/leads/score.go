package leads

import "strings"

// ScoreThresholds maps score cutoffs to campaign identifiers.
type ScoreThresholds struct {
	// Enterprise is the minimum score for the direct-pitch campaign.
	Enterprise int
	// Professional is the minimum score for the nurture campaign.
	Professional int

	EnterpriseCampaign   string
	ProfessionalCampaign string
	EducationalCampaign  string
}

// DefaultThresholds returns the standard campaign assignment cutoffs.
func DefaultThresholds() ScoreThresholds {
	return ScoreThresholds{
		Enterprise:           80,
		Professional:         60,
		EnterpriseCampaign:   "enterprise-direct-pitch",
		ProfessionalCampaign: "professional-nurture",
		EducationalCampaign:  "educational-sequence",
	}
}

var (
	companyKeywords     = []string{"agency", "consulting", "services"}
	highValueIndustries = []string{"marketing", "consulting", "agency", "services", "legal", "accounting"}
	decisionMakerTitles = []string{"owner", "ceo", "president", "founder", "director", "vp"}
)

// Score rates a lead 0-100 from company keywords, industry, title seniority
// and online presence. Service businesses and decision makers score highest.
func Score(l Lead) int {
	score := 0

	company := strings.ToLower(l.Company)
	for _, kw := range companyKeywords {
		if strings.Contains(company, kw) {
			score += 25
			break
		}
	}

	industry := strings.ToLower(l.Industry)
	for _, kw := range highValueIndustries {
		if strings.Contains(industry, kw) {
			score += 30
			break
		}
	}

	title := strings.ToLower(l.Title)
	for _, kw := range decisionMakerTitles {
		if strings.Contains(title, kw) {
			score += 25
			break
		}
	}

	if strings.Contains(l.Website, "http") {
		score += 10
	}
	if l.LinkedIn != "" {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// AssignCampaign maps a score to a campaign identifier using t.
func (t ScoreThresholds) AssignCampaign(score int) string {
	switch {
	case score >= t.Enterprise:
		return t.EnterpriseCampaign
	case score >= t.Professional:
		return t.ProfessionalCampaign
	default:
		return t.EducationalCampaign
	}
}
