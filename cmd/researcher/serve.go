// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/servus-altissimi/researcher/internal/logbuf"
	"github.com/servus-altissimi/researcher/internal/store"
	"github.com/servus-altissimi/researcher/internal/webui"
	"github.com/servus-altissimi/researcher/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local web control panel",
	Long: `Serve starts a local web interface for browsing saved papers, tailing
run logs, launching searches, and probing the SearXNG and Ollama
services. Searches launched from the panel run in the background; only
one runs at a time.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 6601, "listen port for the web interface")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	outputPath := viper.GetString("output")
	indexPath := viper.GetString("index")

	log := logbuf.New(nil)

	idx := openIndex(indexPath, log)
	if idx != nil {
		defer idx.Close()
	}

	srv := &webui.Server{
		ResultsPath: outputPath,
		Log:         log,
		Index:       idx,
		Run: func(ctx context.Context, req webui.SearchRequest, log *logbuf.Logger) (types.RunStats, error) {
			cfg := webRunConfig(req, outputPath, indexPath)
			p, err := buildPipeline(cfg, log)
			if err != nil {
				return types.RunStats{}, err
			}
			stats, err := p.Run(ctx)
			if err != nil {
				return stats, err
			}
			rebuildIndex(ctx, cfg.Store, log)
			return stats, nil
		},
	}

	fmt.Printf("Web interface running on http://localhost:%d\n", port)
	return srv.Router().Run(fmt.Sprintf("127.0.0.1:%d", port))
}

// openIndex opens the SQLite search index, returning nil when it is
// unavailable (no path configured, or a binary built without FTS5
// support). The web UI falls back to substring filtering on nil.
func openIndex(path string, log *logbuf.Logger) *store.Index {
	if path == "" {
		return nil
	}
	idx, err := store.OpenIndex(path)
	if err != nil {
		log.Logf("Search index unavailable, falling back to substring filtering: %v", err)
		return nil
	}
	return idx
}

// webRunConfig maps a panel request onto a pipeline configuration,
// filling gaps from the CLI defaults.
func webRunConfig(req webui.SearchRequest, outputPath, indexPath string) types.PipelineConfig {
	if req.Instance == "" {
		req.Instance = viper.GetString("instance")
	}
	if req.Engines == "" {
		req.Engines = viper.GetString("engines")
	}
	if req.Category == "" {
		req.Category = viper.GetString("category")
	}
	if req.Model == "" {
		req.Model = viper.GetString("model")
	}
	if req.OllamaURL == "" {
		req.OllamaURL = viper.GetString("ollama_url")
	}
	if req.MaxResults <= 0 {
		req.MaxResults = viper.GetInt("max_results")
	}
	if req.MinScore <= 0 {
		req.MinScore = viper.GetFloat64("min_score")
	}

	return types.PipelineConfig{
		Subject: req.Subject,
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 30 * time.Second},
			Instance:   req.Instance,
			Category:   req.Category,
			Engines:    req.Engines,
			TimeRange:  req.TimeRange,
			MaxResults: req.MaxResults,
		},
		Resolve: types.ResolveConfig{
			PageTimeout: 15 * time.Second,
			APITimeout:  10 * time.Second,
			SourceRate:  2,
		},
		Validation: types.ValidationConfig{
			OllamaURL: req.OllamaURL,
			Model:     req.Model,
			Disabled:  req.NoAI,
			MinScore:  req.MinScore,
			Timeout:   30 * time.Second,
		},
		Store: types.StoreConfig{
			OutputPath: outputPath,
			IndexPath:  indexPath,
		},
		AcceptDelay:    300 * time.Millisecond,
		CandidateDelay: 500 * time.Millisecond,
	}
}
