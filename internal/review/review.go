// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review runs the literature-review pipeline: it queries the web,
// preprint, and trial-registry adapters in a fixed order, renders their
// records into context blocks, and hands one synthesis prompt to the report
// composer.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/pkg/types"
)

// ErrEmptyTopic is returned by Run when the topic is blank.
var ErrEmptyTopic = errors.New("topic is empty")

// RegistrySource is a trial registry with a fallback scrape tier.
type RegistrySource interface {
	source.Adapter
	Scrape(ctx context.Context, query string, maxResults int) source.Outcome
}

// Composer produces report text from a prompt. It never fails; errors come
// back as text.
type Composer interface {
	Process(ctx context.Context, message string) string
}

// Tier names which registry tier produced the trial records.
type Tier string

const (
	TierAPI    Tier = "api"
	TierScrape Tier = "scrape"
)

// Diagnostic records how one adapter call ended.
type Diagnostic struct {
	Source types.Source `json:"source" yaml:"source"`
	Tier   Tier         `json:"tier,omitempty" yaml:"tier,omitempty"`
	Kind   string       `json:"kind" yaml:"kind"`
	Count  int          `json:"count" yaml:"count"`
	Error  string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Review is the outcome of one pipeline run.
type Review struct {
	ID          uuid.UUID      `json:"id" yaml:"id"`
	Topic       string         `json:"topic" yaml:"topic"`
	Web         []types.Record `json:"web" yaml:"web"`
	Preprints   []types.Record `json:"preprints" yaml:"preprints"`
	Trials      []types.Record `json:"trials" yaml:"trials"`
	TrialTier   Tier           `json:"trial_tier" yaml:"trial_tier"`
	Diagnostics []Diagnostic   `json:"diagnostics" yaml:"diagnostics"`
	Prompt      string         `json:"prompt" yaml:"prompt"`
	Report      string         `json:"report" yaml:"report"`
	Started     time.Time      `json:"started" yaml:"started"`
	Finished    time.Time      `json:"finished" yaml:"finished"`
}

// Records returns every record of the review in pipeline order.
func (r Review) Records() []types.Record {
	out := make([]types.Record, 0, len(r.Web)+len(r.Preprints)+len(r.Trials))
	out = append(out, r.Web...)
	out = append(out, r.Preprints...)
	return append(out, r.Trials...)
}

// Pipeline sequences the adapters and the composer. All fields except
// Logger, LinkBase, and Now are required.
type Pipeline struct {
	Web      source.Adapter
	Preprint source.Adapter
	Registry RegistrySource
	Composer Composer

	// MaxResults is requested from every source (default 2).
	MaxResults int
	// LinkBase prefixes trial citation links (default https://clinicaltrials.gov).
	LinkBase string
	Logger   *zap.Logger
	// Now stamps the review (default time.Now).
	Now func() time.Time
}

// DefaultLinkBase is the registry citation root.
const DefaultLinkBase = "https://clinicaltrials.gov"

// Run executes the pipeline for topic. Sources are queried one after the
// other; the registry scrape tier runs once, only when the API tier yields
// nothing. The composer's reply becomes Review.Report unmodified. Run fails
// only for a blank topic or a context that ends before composition.
func (p *Pipeline) Run(ctx context.Context, topic string) (Review, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Review{}, ErrEmptyTopic
	}
	log := p.logger()
	now := p.now()

	rev := Review{ID: uuid.New(), Topic: topic, Started: now()}
	log = log.With(zap.String("review_id", rev.ID.String()), zap.String("topic", topic))
	log.Info("starting literature review")

	web := p.Web.Fetch(ctx, topic, p.MaxResults)
	rev.Web = web.Records
	rev.Diagnostics = append(rev.Diagnostics, diagnose(log, web, ""))

	pre := p.Preprint.Fetch(ctx, topic, p.MaxResults)
	rev.Preprints = pre.Records
	rev.Diagnostics = append(rev.Diagnostics, diagnose(log, pre, ""))

	trials := p.Registry.Fetch(ctx, topic, p.MaxResults)
	rev.TrialTier = TierAPI
	rev.Diagnostics = append(rev.Diagnostics, diagnose(log, trials, TierAPI))
	if len(trials.Records) == 0 {
		log.Info("registry API returned no studies, falling back to scrape")
		trials = p.Registry.Scrape(ctx, topic, p.MaxResults)
		rev.TrialTier = TierScrape
		rev.Diagnostics = append(rev.Diagnostics, diagnose(log, trials, TierScrape))
	}
	rev.Trials = trials.Records

	if err := ctx.Err(); err != nil {
		return rev, fmt.Errorf("review cancelled before composition: %w", err)
	}

	prompt, err := RenderPrompt(topic, rev, p.linkBase())
	if err != nil {
		return rev, fmt.Errorf("rendering synthesis prompt: %w", err)
	}
	rev.Prompt = prompt

	log.Info("composing report", zap.Int("records", len(rev.Records())))
	rev.Report = p.Composer.Process(ctx, prompt)
	rev.Finished = now()
	log.Info("literature review complete", zap.Duration("elapsed", rev.Finished.Sub(rev.Started)))
	return rev, nil
}

func diagnose(log *zap.Logger, out source.Outcome, tier Tier) Diagnostic {
	d := Diagnostic{
		Source: out.Source,
		Tier:   tier,
		Kind:   out.Kind.String(),
		Count:  len(out.Records),
	}
	if out.Err != nil {
		d.Error = out.Err.Error()
	}
	log.Info("source finished",
		zap.String("source", string(out.Source)),
		zap.String("tier", string(tier)),
		zap.Stringer("kind", out.Kind),
		zap.Int("count", d.Count))
	return d
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Pipeline) now() func() time.Time {
	if p.Now == nil {
		return time.Now
	}
	return p.Now
}

func (p *Pipeline) linkBase() string {
	if p.LinkBase == "" {
		return DefaultLinkBase
	}
	return strings.TrimRight(p.LinkBase, "/")
}
