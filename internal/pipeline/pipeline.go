// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one research run: search, identifier
// extraction, metadata enrichment, dedup, relevance scoring, and
// persistence. Only the initial search can fail a run; every
// per-candidate error is logged and the loop moves on.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/servus-altissimi/researcher/internal/identifier"
	"github.com/servus-altissimi/researcher/internal/logbuf"
	"github.com/servus-altissimi/researcher/internal/resolve"
	"github.com/servus-altissimi/researcher/internal/validate"
	"github.com/servus-altissimi/researcher/pkg/types"
)

// usefulAbstractLen is the snippet length at which scraping and registry
// lookups are skipped; shorter text is worth enriching.
const usefulAbstractLen = 100

// minAbstractLen is the floor below which the abstract is abandoned and
// the title alone goes to scoring.
const minAbstractLen = 50

// Searcher produces the raw candidate list for a subject.
type Searcher interface {
	Search(ctx context.Context, subject string, cfg types.SearchConfig) ([]types.Candidate, error)
}

// MetadataResolver enriches a candidate from its landing page and the
// registry chain.
type MetadataResolver interface {
	ScrapePage(ctx context.Context, url string) (abstract, doi string)
	Lookup(ctx context.Context, doi string) (resolve.Metadata, bool)
}

// RelevanceValidator scores a paper against the subject.
type RelevanceValidator interface {
	Validate(ctx context.Context, subject, title, abstract string) types.Verdict
}

// PaperStore is the dedup set plus durable persistence.
type PaperStore interface {
	Contains(id string) bool
	Record(paper types.Paper) error
	Path() string
	Len() int
}

// Pipeline holds everything one run needs. Each run builds its own
// Pipeline; nothing here is shared across concurrently launched runs.
type Pipeline struct {
	Cfg       types.PipelineConfig
	Search    Searcher
	Resolver  MetadataResolver
	Validator RelevanceValidator
	Store     PaperStore
	Log       *logbuf.Logger
}

// Run executes the full pipeline and returns run counters. The error is
// non-nil only when the search itself failed.
func (p *Pipeline) Run(ctx context.Context) (types.RunStats, error) {
	var stats types.RunStats

	p.Log.Logf("Subject: %s", p.Cfg.Subject)
	p.Log.Logf("Instance: %s", p.Cfg.Search.Instance)
	p.Log.Logf("Previously processed: %d identifiers", p.Store.Len())

	candidates, err := p.Search.Search(ctx, p.Cfg.Subject, p.Cfg.Search)
	if err != nil {
		return stats, err
	}
	if max := p.Cfg.Search.MaxResults; max > 0 && len(candidates) > max {
		candidates = candidates[:max]
	}

	p.Log.Logf("\nProcessing results: %d\n", len(candidates))

	for i, cand := range candidates {
		paper, err := p.processCandidate(ctx, cand, i, len(candidates))
		switch {
		case err != nil:
			p.Log.Logf("An error occured: %v", err)
		case paper != nil:
			stats.Validated++
			if err := p.Store.Record(*paper); err != nil {
				p.Log.Logf("Failed to save: %v", err)
			} else {
				stats.Saved++
				p.Log.Logf("SAVED to: %s", p.Store.Path())
			}
		default:
			stats.Skipped++
		}
		stats.Processed++

		if i < len(candidates)-1 {
			sleepCtx(ctx, p.Cfg.CandidateDelay)
		}
	}

	p.Log.Logf("\n%s", strings.Repeat("=", 64))
	p.Log.Log("Results")
	p.Log.Log(strings.Repeat("=", 64))
	p.Log.Logf("Total processed: %d", stats.Processed)
	p.Log.Logf("Validated as relevant: %d", stats.Validated)
	p.Log.Logf("Saved to file: %d", stats.Saved)
	p.Log.Logf("Skipped: %d", stats.Skipped)
	p.Log.Logf("Output: %s\n", p.Store.Path())

	return stats, nil
}

// processCandidate runs one candidate through extraction, enrichment,
// dedup, and scoring. A nil paper with nil error means the candidate
// was skipped (duplicate or rejected).
func (p *Pipeline) processCandidate(ctx context.Context, cand types.Candidate, index, total int) (*types.Paper, error) {
	p.Log.Logf("\n%s", strings.Repeat("=", 64))
	p.Log.Logf("[%d/%d] %s", index+1, total, cand.Title)
	p.Log.Log(strings.Repeat("=", 64))
	p.Log.Logf("URL: %s", cand.URL)

	id := identifier.FromURL(cand.URL)
	abstract := cand.Snippet
	title := cand.Title

	// The landing page can supply both a missing identifier and a
	// better abstract than the search snippet.
	if id == "" || len(abstract) < usefulAbstractLen {
		if p.Cfg.Verbose {
			p.Log.Log("   [FETCH] Scraping page for metadata")
		}
		pageAbstract, pageID := p.Resolver.ScrapePage(ctx, cand.URL)
		if id == "" {
			id = pageID
		}
		if len(pageAbstract) > len(abstract) {
			abstract = pageAbstract
		}
	}

	if id != "" {
		p.Log.Logf("DOI: %s", id)

		if p.Store.Contains(id) {
			p.Log.Log("SKIPPED: Already processed\n")
			return nil, nil
		}

		if len(abstract) < usefulAbstractLen && identifier.IsDOI(id) {
			if p.Cfg.Verbose {
				p.Log.Log("   [API] Fetching metadata from DOI APIs")
			}
			if md, ok := p.Resolver.Lookup(ctx, id); ok {
				if md.Title != "" {
					title = md.Title
				}
				if len(md.Abstract) > len(abstract) {
					abstract = md.Abstract
				}
			}
		}
	} else {
		p.Log.Log("DOI: Not found")
	}

	if len(abstract) > minAbstractLen {
		p.Log.Logf("Abstract: %d chars", len(abstract))
		preview := abstract
		if len(preview) > 200 {
			preview = validate.SafeTruncate(preview, 200) + "..."
		}
		p.Log.Logf("   \"%s\"", preview)
	} else {
		p.Log.Log("Abstract: None found (using title only)")
		abstract = title
	}

	verdict := p.Validator.Validate(ctx, p.Cfg.Subject, title, abstract)
	p.Log.Logf("   Score: %.2f/1.0", verdict.Score)
	p.Log.Logf("   Reason: %s", verdict.Reason)

	if !verdict.Accepted {
		p.Log.Log("NOT Relevant: Skipping")
		return nil, nil
	}
	p.Log.Log("Relevant: Saving")

	// Breathing room for the services just queried.
	sleepCtx(ctx, p.Cfg.AcceptDelay)

	return &types.Paper{
		Title:        title,
		URL:          cand.URL,
		Identifier:   id,
		AbstractText: abstract,
		Score:        verdict.Score,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
