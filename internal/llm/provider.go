package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/spdery/coldreach/internal/icebreaker"
	"github.com/spdery/coldreach/internal/leads"
)

// icebreakerTemperature keeps generations varied enough to not read as
// boilerplate across a batch.
const icebreakerTemperature = 0.7

// Snippeter supplies optional website context for the prompt. Implementations
// must degrade to an empty snippet on failure.
type Snippeter interface {
	Snippet(ctx context.Context, websiteURL string) string
}

// IcebreakerProvider generates icebreakers with a direct generative-text API
// call. It implements icebreaker.Provider.
type IcebreakerProvider struct {
	client    Client
	template  string
	snippeter Snippeter
}

// NewIcebreakerProvider wraps client as a resolver provider. template steers
// the output format; snippeter may be nil.
func NewIcebreakerProvider(client Client, template string, snippeter Snippeter) *IcebreakerProvider {
	return &IcebreakerProvider{client: client, template: template, snippeter: snippeter}
}

// Name implements icebreaker.Provider.
func (p *IcebreakerProvider) Name() string { return icebreaker.ProviderLLM }

// Generate implements icebreaker.Provider.
func (p *IcebreakerProvider) Generate(ctx context.Context, lead leads.Lead) (string, error) {
	prompt := p.buildPrompt(ctx, lead)

	text, err := p.client.GenerateContent(ctx, prompt, TierStandard, icebreakerTemperature)
	if err != nil {
		return "", err
	}

	text = CleanLine(text)
	if text == "" {
		return "", fmt.Errorf("model returned empty icebreaker")
	}
	return text, nil
}

func (p *IcebreakerProvider) buildPrompt(ctx context.Context, lead leads.Lead) string {
	var sb strings.Builder
	sb.WriteString("You're an expert at writing personalized cold email icebreakers that convert.\n\n")
	sb.WriteString("Write a 1-2 sentence icebreaker for this prospect:\n")
	fmt.Fprintf(&sb, "- Company: %s\n", lead.Company)
	fmt.Fprintf(&sb, "- Industry: %s\n", lead.Industry)
	fmt.Fprintf(&sb, "- Contact: %s\n", lead.FullName())
	if lead.Title != "" {
		fmt.Fprintf(&sb, "- Title: %s\n", lead.Title)
	}
	if lead.Website != "" {
		fmt.Fprintf(&sb, "- Website: %s\n", lead.Website)
	}

	if p.snippeter != nil && lead.Website != "" {
		if snippet := p.snippeter.Snippet(ctx, lead.Website); snippet != "" {
			fmt.Fprintf(&sb, "\nExcerpt from their website:\n%s\n", snippet)
		}
	}

	sb.WriteString("\nThe icebreaker should:\n")
	sb.WriteString("1. Sound like I've been casually following their company\n")
	sb.WriteString("2. Mention something specific about their business (not generic)\n")
	sb.WriteString("3. Be conversational and genuine (not corporate or salesy)\n")
	sb.WriteString("4. Focus on their expertise or business approach\n")
	sb.WriteString("5. Be under 25 words total\n")
	if p.template != "" {
		fmt.Fprintf(&sb, "6. Follow this format: %q\n", p.template)
	}
	sb.WriteString("\nGenerate ONLY the icebreaker text - no quotes, no explanations, just the personalized line.")
	return sb.String()
}
