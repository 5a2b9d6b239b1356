// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/servus-altissimi/researcher/internal/httputil"
	"github.com/servus-altissimi/researcher/internal/logbuf"
	"github.com/servus-altissimi/researcher/internal/pipeline"
	"github.com/servus-altissimi/researcher/internal/resolve"
	"github.com/servus-altissimi/researcher/internal/searx"
	"github.com/servus-altissimi/researcher/internal/store"
	"github.com/servus-altissimi/researcher/internal/validate"
	"github.com/servus-altissimi/researcher/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one search-resolve-score pass for a subject",
	Long: `Run queries the configured SearXNG instance for the subject, processes
each hit through identifier extraction, metadata enrichment, and AI
relevance scoring, and appends accepted papers to the results file.
Identifiers already present in the results file are skipped.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("subject", "s", "", "research subject to search for")
	runCmd.Flags().String("instance", "", "SearXNG instance base URL")
	runCmd.Flags().Int("max-results", 0, "maximum candidates to process")
	runCmd.Flags().StringP("output", "o", "", "results file path")
	runCmd.Flags().String("model", "", "Ollama model for relevance scoring")
	runCmd.Flags().Bool("no-ai", false, "skip AI validation, accept every candidate")
	runCmd.Flags().String("time-range", "", "restrict result age: day, week, month, year")
	runCmd.Flags().String("category", "", "SearXNG search category")
	runCmd.Flags().String("engines", "", "comma-separated upstream engines")
	runCmd.Flags().Float64("min-score", 0, "minimum relevance score for acceptance")
	runCmd.Flags().String("ollama-url", "", "Ollama base URL")
	runCmd.Flags().String("index", "", "SQLite search index path (empty disables)")
	runCmd.Flags().BoolP("verbose", "v", false, "verbose per-stage logging")

	// Flags override config file and environment values.
	viper.BindPFlag("subject", runCmd.Flags().Lookup("subject"))
	viper.BindPFlag("instance", runCmd.Flags().Lookup("instance"))
	viper.BindPFlag("max_results", runCmd.Flags().Lookup("max-results"))
	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("model", runCmd.Flags().Lookup("model"))
	viper.BindPFlag("time_range", runCmd.Flags().Lookup("time-range"))
	viper.BindPFlag("category", runCmd.Flags().Lookup("category"))
	viper.BindPFlag("engines", runCmd.Flags().Lookup("engines"))
	viper.BindPFlag("min_score", runCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("ollama_url", runCmd.Flags().Lookup("ollama-url"))
	viper.BindPFlag("index", runCmd.Flags().Lookup("index"))

	rootCmd.AddCommand(runCmd)
}

// pipelineConfig assembles the effective run configuration from viper
// (defaults, config file, environment) plus command-specific flags.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	noAI, _ := cmd.Flags().GetBool("no-ai")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return types.PipelineConfig{
		Subject: viper.GetString("subject"),
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 30 * time.Second},
			Instance:   viper.GetString("instance"),
			Category:   viper.GetString("category"),
			Engines:    viper.GetString("engines"),
			TimeRange:  viper.GetString("time_range"),
			MaxResults: viper.GetInt("max_results"),
		},
		Resolve: types.ResolveConfig{
			PageTimeout: 15 * time.Second,
			APITimeout:  10 * time.Second,
			SourceRate:  2,
		},
		Validation: types.ValidationConfig{
			OllamaURL: viper.GetString("ollama_url"),
			Model:     viper.GetString("model"),
			Disabled:  noAI,
			MinScore:  viper.GetFloat64("min_score"),
			Timeout:   30 * time.Second,
		},
		Store: types.StoreConfig{
			OutputPath: viper.GetString("output"),
			IndexPath:  viper.GetString("index"),
		},
		AcceptDelay:    300 * time.Millisecond,
		CandidateDelay: 500 * time.Millisecond,
		Verbose:        verbose,
	}
}

// buildPipeline constructs all stages for one run against cfg.
func buildPipeline(cfg types.PipelineConfig, log *logbuf.Logger) (*pipeline.Pipeline, error) {
	st, err := store.Open(cfg.Store.OutputPath)
	if err != nil {
		return nil, err
	}

	agent := cfg.Search.UserAgent
	if agent == "" {
		agent = httputil.RandomUserAgent()
	}

	apiClient := httputil.NewPacedClient(
		httputil.NewClient(cfg.Resolve.APITimeout, agent),
		cfg.Resolve.SourceRate,
	)

	resolver := &resolve.Resolver{
		PageClient: httputil.NewClient(cfg.Resolve.PageTimeout, agent),
		Sources:    resolve.DefaultSources(apiClient),
		Log:        log,
		Verbose:    cfg.Verbose,
	}

	validator := &validate.Validator{
		Client:   httputil.NewClient(cfg.Validation.Timeout, agent),
		BaseURL:  cfg.Validation.OllamaURL,
		Model:    cfg.Validation.Model,
		MinScore: cfg.Validation.MinScore,
		Disabled: cfg.Validation.Disabled,
		Log:      log,
		Verbose:  cfg.Verbose,
	}

	searcher := &searx.Client{
		HTTP: httputil.NewClient(cfg.Search.Timeout, agent),
		Log:  log,
	}

	return &pipeline.Pipeline{
		Cfg:       cfg,
		Search:    searcher,
		Resolver:  resolver,
		Validator: validator,
		Store:     st,
		Log:       log,
	}, nil
}

// rebuildIndex refreshes the SQLite search index from the results file.
// Index failures are reported but never fail the run; the text file is
// canonical.
func rebuildIndex(ctx context.Context, cfg types.StoreConfig, log *logbuf.Logger) {
	if cfg.IndexPath == "" {
		return
	}
	records, err := store.ReadRecords(cfg.OutputPath)
	if err != nil {
		log.Logf("Index rebuild skipped: %v", err)
		return
	}
	idx, err := store.OpenIndex(cfg.IndexPath)
	if err != nil {
		log.Logf("Index rebuild skipped: %v", err)
		return
	}
	defer idx.Close()
	if err := idx.Rebuild(ctx, records); err != nil {
		log.Logf("Index rebuild failed: %v", err)
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	log := logbuf.New(os.Stdout)

	log.Log(strings.Repeat("=", 64))
	log.Log("researcher")
	log.Log(strings.Repeat("=", 64))
	if cfg.Validation.Disabled {
		log.Log("AI validation: disabled")
	} else {
		log.Logf("Ollama: %s (model %s)", cfg.Validation.OllamaURL, cfg.Validation.Model)
	}

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if _, err := p.Run(ctx); err != nil {
		return fmt.Errorf("querying searxng: %w", err)
	}

	rebuildIndex(ctx, cfg.Store, log)
	return nil
}
