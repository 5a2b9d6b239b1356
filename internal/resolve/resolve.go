// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve fills in missing paper metadata. Two mechanisms feed
// it: scraping the candidate's landing page for embedded identifiers and
// abstracts, and walking a chain of DOI registries until one returns a
// usable record. Every failure here is soft; a candidate with no
// metadata still proceeds on its search snippet and title.
package resolve

import (
	"context"
	"net/http"

	"github.com/servus-altissimi/researcher/internal/logbuf"
)

// Metadata is what a registry lookup yields. Abstract may be empty even
// on success; many DOI records carry no abstract at all.
type Metadata struct {
	Title    string
	Abstract string
}

// Source is one metadata registry in the fallback chain.
type Source interface {
	Name() string
	Lookup(ctx context.Context, doi string) (Metadata, error)
}

// Resolver scrapes landing pages and queries registry sources in order.
type Resolver struct {
	PageClient *http.Client
	Sources    []Source
	Log        *logbuf.Logger
	Verbose    bool
}

// Lookup walks the source chain for doi and returns the first record
// with a non-empty title. Individual source errors are swallowed; the
// boolean reports whether any source answered.
func (r *Resolver) Lookup(ctx context.Context, doi string) (Metadata, bool) {
	for _, src := range r.Sources {
		if r.Verbose {
			r.Log.Logf("      [API] Trying %s for: %s", src.Name(), doi)
		}
		md, err := src.Lookup(ctx, doi)
		if err != nil {
			continue
		}
		if md.Title != "" {
			if r.Verbose {
				r.Log.Logf("      [API] %s success", src.Name())
			}
			return md, true
		}
	}
	return Metadata{}, false
}
