// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Empty
	// means a random browser agent is picked at startup.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// SearchConfig holds settings for the SearXNG query stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Instance is the SearXNG base URL (e.g. "https://searxng.site/").
	Instance string `json:"instance" yaml:"instance"`

	// Category is the SearXNG search category (default "science").
	Category string `json:"category" yaml:"category"`

	// Engines is the comma-separated list of upstream engines to query.
	Engines string `json:"engines" yaml:"engines"`

	// TimeRange restricts results by age: day, week, month, year, or empty
	// for all time. Multi-year values like "5year" fall back to "year".
	TimeRange string `json:"time_range" yaml:"time_range"`

	// MaxResults caps the number of candidates processed per run (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ResolveConfig holds settings for page scraping and the DOI metadata
// fallback chain.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageTimeout bounds a single page-scrape fetch (default 15s).
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout"`

	// APITimeout bounds a single metadata API call (default 10s).
	APITimeout time.Duration `json:"api_timeout" yaml:"api_timeout"`

	// SourceRate caps requests per second to the metadata APIs (default 2).
	SourceRate float64 `json:"source_rate" yaml:"source_rate"`
}

// ValidationConfig holds settings for AI relevance scoring.
type ValidationConfig struct {
	// OllamaURL is the Ollama base address (default "http://localhost:11434").
	OllamaURL string `json:"ollama_url" yaml:"ollama_url"`

	// Model is the Ollama model identifier (default "llama3.2:latest").
	Model string `json:"model" yaml:"model"`

	// Disabled turns AI validation off; every paper is accepted with the
	// sentinel score.
	Disabled bool `json:"disabled" yaml:"disabled"`

	// MinScore is the acceptance threshold, inclusive (default 0.6).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// Timeout bounds one model call (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for result persistence.
type StoreConfig struct {
	// OutputPath is the append-only results file (default "results.txt").
	OutputPath string `json:"output_path" yaml:"output_path"`

	// IndexPath is the SQLite search index rebuilt from the results file.
	// Empty disables the index; the text file remains canonical either way.
	IndexPath string `json:"index_path,omitempty" yaml:"index_path,omitempty"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	// Subject is the research topic queried and scored against.
	Subject string `json:"subject" yaml:"subject"`

	Search     SearchConfig     `json:"search" yaml:"search"`
	Resolve    ResolveConfig    `json:"resolve" yaml:"resolve"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Store      StoreConfig      `json:"store" yaml:"store"`

	// AcceptDelay is the pause after an accepted paper, before persistence
	// (default 300ms).
	AcceptDelay time.Duration `json:"accept_delay" yaml:"accept_delay"`

	// CandidateDelay is the pause between candidates, except after the last
	// (default 500ms). This is the sole pacing mechanism across candidates.
	CandidateDelay time.Duration `json:"candidate_delay" yaml:"candidate_delay"`

	// Verbose enables per-stage diagnostic log lines.
	Verbose bool `json:"verbose" yaml:"verbose"`
}
