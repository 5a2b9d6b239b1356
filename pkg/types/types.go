// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the researcher pipeline.
package types

// Candidate is one raw search hit as returned by a SearXNG instance.
// Candidates are immutable once received; enrichment happens on Paper.
type Candidate struct {
	// Title is the result title as reported by the search engine.
	Title string `json:"title"`

	// URL is the result link, the starting point for identifier extraction.
	URL string `json:"url"`

	// Snippet is the engine-provided content excerpt. SearXNG calls this
	// field "content" in its JSON output.
	Snippet string `json:"content"`

	// Engine names the upstream engine that produced the hit.
	Engine string `json:"engine,omitempty"`
}

// Paper is a candidate enriched by the resolution stages. Title and
// AbstractText may be overwritten by higher-confidence sources as
// resolution proceeds; the abstract only ever grows in length.
type Paper struct {
	// Title is the best-known title for the work.
	Title string `json:"title"`

	// URL is the original candidate URL.
	URL string `json:"url"`

	// Identifier is the normalized DOI or prefixed arXiv ID ("arXiv:<id>"),
	// or empty when no identifier could be derived.
	Identifier string `json:"identifier,omitempty"`

	// AbstractText is the best available abstract. Never empty by the time
	// the paper reaches scoring: the title substitutes when nothing better
	// was found.
	AbstractText string `json:"abstract_text"`

	// Score is the relevance score assigned by the validator.
	Score float64 `json:"score"`
}

// Verdict is the relevance decision for one paper.
type Verdict struct {
	// Accepted reports whether the paper met the minimum score.
	Accepted bool `json:"accepted"`

	// Score is the model's 0.0-1.0 relevance estimate. The value 1.1 is a
	// sentinel meaning validation was administratively disabled; it is
	// never produced by a model.
	Score float64 `json:"score"`

	// Reason is the model's one-to-two sentence explanation.
	Reason string `json:"reason"`
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	// Processed is the number of candidates examined.
	Processed int `json:"processed"`

	// Validated is the number of candidates accepted as relevant.
	Validated int `json:"validated"`

	// Saved is the number of accepted papers persisted to the store.
	Saved int `json:"saved"`

	// Skipped counts candidates dropped before persistence: already in the
	// dedup store, or rejected by the validator.
	Skipped int `json:"skipped"`
}
