// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/pkg/types"
)

// Sources bundles the three adapters built from one configuration.
type Sources struct {
	Web      *source.WebSearch
	Preprint *source.Arxiv
	Registry *source.Registry
}

// NewSources builds every adapter. Each adapter gets its own rate limiter.
func NewSources(cfg types.Config, opts source.Options) Sources {
	return Sources{
		Web:      source.NewWebSearch(cfg.Web, opts),
		Preprint: source.NewArxiv(cfg.Preprint, opts),
		Registry: source.NewRegistry(cfg.Registry, opts),
	}
}

// NewPipeline wires the adapters and a composer into a pipeline.
func NewPipeline(cfg types.Config, srcs Sources, c Composer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		Web:        srcs.Web,
		Preprint:   srcs.Preprint,
		Registry:   srcs.Registry,
		Composer:   c,
		MaxResults: cfg.Review.MaxResults,
		LinkBase:   cfg.Registry.LinkBase,
		Logger:     log,
	}
}

// ParseSource maps a user-facing source name onto a types.Source. "trials"
// is accepted for the registry.
func ParseSource(name string) (types.Source, error) {
	switch name {
	case "web", "google":
		return types.SourceWeb, nil
	case "arxiv":
		return types.SourceArxiv, nil
	case "trials", "clinicaltrials":
		return types.SourceRegistry, nil
	default:
		return "", fmt.Errorf("unknown source %q (want web, arxiv, or trials)", name)
	}
}

// Search queries one source. For the registry the scrape tier runs when the
// API tier finds nothing, or directly when scrape is set.
func (s Sources) Search(ctx context.Context, src types.Source, query string, maxResults int, scrape bool) (source.Outcome, Tier) {
	switch src {
	case types.SourceWeb:
		return s.Web.Fetch(ctx, query, maxResults), ""
	case types.SourceArxiv:
		return s.Preprint.Fetch(ctx, query, maxResults), ""
	default:
		if !scrape {
			out := s.Registry.Fetch(ctx, query, maxResults)
			if len(out.Records) > 0 {
				return out, TierAPI
			}
		}
		return s.Registry.Scrape(ctx, query, maxResults), TierScrape
	}
}
