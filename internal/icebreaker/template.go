package icebreaker

import (
	"strings"

	"github.com/spdery/coldreach/internal/leads"
)

// DefaultFallbackTemplate is the terminal icebreaker pattern. Placeholders
// {company_name}, {industry} and {first_name} are substituted per lead.
const DefaultFallbackTemplate = "Impressed by what you're building at {company_name}, particularly your approach in the {industry} space."

// TemplateProvider is the terminal fallback. It performs only string
// substitution on fields the import pass guarantees, so it is pure and total.
type TemplateProvider struct {
	template string
}

// NewTemplateProvider returns a provider over template, or the default
// pattern when template is empty.
func NewTemplateProvider(template string) *TemplateProvider {
	if strings.TrimSpace(template) == "" {
		template = DefaultFallbackTemplate
	}
	return &TemplateProvider{template: template}
}

// Name reports the provider tag recorded on results.
func (p *TemplateProvider) Name() string { return ProviderTemplate }

// Render instantiates the template for lead. Deterministic: identical input
// yields identical output. An empty industry substitutes "business".
func (p *TemplateProvider) Render(lead leads.Lead) string {
	industry := lead.Industry
	if industry == "" {
		industry = "business"
	}
	r := strings.NewReplacer(
		"{company_name}", lead.Company,
		"{industry}", industry,
		"{first_name}", lead.FirstName,
	)
	return r.Replace(p.template)
}
