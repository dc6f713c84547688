// Package icebreaker resolves one personalized opening line per lead through
// an ordered provider chain. The chain ends in a local template provider, so
// resolution never fails outright.
package icebreaker

import (
	"context"
	"log"
	"time"

	"github.com/spdery/coldreach/internal/leads"
	"github.com/spdery/coldreach/internal/worker"
)

// Provider tags, recorded on every Result.
const (
	ProviderWorkflow = "workflow"
	ProviderLLM      = "llm"
	ProviderTemplate = "template"
)

// Provider produces a personalized line for a lead. Remote providers return
// worker.TransientError (or net timeouts) for retryable failures; any other
// error is permanent and causes an immediate fallthrough.
type Provider interface {
	Name() string
	Generate(ctx context.Context, lead leads.Lead) (string, error)
}

// Attempt records one provider's participation in a resolution.
type Attempt struct {
	Provider string `json:"provider"`
	Tries    int    `json:"tries"`
	Err      string `json:"error,omitempty"`
}

// Result is the outcome of one resolution. Text is always non-empty and
// Provider names the provider that produced it.
type Result struct {
	Text     string    `json:"text"`
	Provider string    `json:"provider"`
	Attempts []Attempt `json:"attempts"`
}

// Options bounds remote provider attempts.
type Options struct {
	// MaxRetries is the number of extra attempts per remote provider after
	// the first transient failure.
	MaxRetries int
	// RequestTimeout bounds a single provider attempt.
	RequestTimeout time.Duration

	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	BackoffJitterFrac float64

	// Verbose logs every attempt outcome.
	Verbose bool
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = 500 * time.Millisecond
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 8 * time.Second
	}
	if o.BackoffJitterFrac <= 0 {
		o.BackoffJitterFrac = 0.2
	}
	return o
}

// Resolver tries providers in priority order. The last provider must be
// total; NewResolver appends a TemplateProvider to guarantee it.
type Resolver struct {
	providers []Provider
	terminal  *TemplateProvider
	opts      Options
}

// NewResolver builds a resolver over remote providers in the given priority
// order, terminated by template. Nil providers are skipped, so callers can
// pass unconfigured providers directly.
func NewResolver(opts Options, template *TemplateProvider, providers ...Provider) *Resolver {
	if template == nil {
		template = NewTemplateProvider("")
	}
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Resolver{
		providers: kept,
		terminal:  template,
		opts:      opts.withDefaults(),
	}
}

// Resolve produces exactly one non-empty icebreaker for lead. Remote provider
// failures are retried within budget, then fall through; they never surface
// to the caller.
func (r *Resolver) Resolve(ctx context.Context, lead leads.Lead) Result {
	var attempts []Attempt

	for _, p := range r.providers {
		text, tries, err := r.tryProvider(ctx, p, lead)
		a := Attempt{Provider: p.Name(), Tries: tries}
		if err == nil && text != "" {
			attempts = append(attempts, a)
			return Result{Text: text, Provider: p.Name(), Attempts: attempts}
		}
		if err != nil {
			a.Err = err.Error()
		} else {
			a.Err = "empty response"
		}
		attempts = append(attempts, a)
		if r.opts.Verbose {
			log.Printf("[resolver] provider %s failed for %s after %d tries: %s", p.Name(), lead.Company, tries, a.Err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	// Terminal fallback: pure string substitution, cannot fail.
	text := r.terminal.Render(lead)
	attempts = append(attempts, Attempt{Provider: r.terminal.Name(), Tries: 1})
	return Result{Text: text, Provider: r.terminal.Name(), Attempts: attempts}
}

// tryProvider runs one provider with the per-provider retry budget. Only
// transient errors are retried; the returned count includes the first try.
func (r *Resolver) tryProvider(ctx context.Context, p Provider, lead leads.Lead) (string, int, error) {
	var lastErr error
	tries := 0
	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", tries, err
		}

		reqCtx, cancel := context.WithTimeout(ctx, r.opts.RequestTimeout)
		text, err := p.Generate(reqCtx, lead)
		cancel()
		tries++

		if err == nil {
			return text, tries, nil
		}
		lastErr = err
		if !worker.IsTransient(err) {
			return "", tries, err
		}
		if attempt == r.opts.MaxRetries {
			break
		}

		sleep := worker.Backoff(r.opts.BackoffInitial, r.opts.BackoffMax, r.opts.BackoffJitterFrac, attempt)
		t := time.NewTimer(sleep)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return "", tries, ctx.Err()
		}
	}
	return "", tries, lastErr
}
