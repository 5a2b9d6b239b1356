// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the researcher CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the researcher CLI.
var rootCmd = &cobra.Command{
	Use:   "researcher",
	Short: "Discover, score, and collect scientific papers",
	Long: `researcher queries a SearXNG metasearch instance for papers about a
research subject, resolves each hit to a canonical identifier (DOI or
arXiv ID), enriches it with the best available abstract from the
publisher page or DOI registries, scores topical relevance with a local
Ollama model, and appends accepted records to a deduplicated results
file.

Run a one-shot search with 'researcher run', browse and relaunch
searches from a local web panel with 'researcher serve', or inspect the
collected records with 'researcher results'.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for local overrides; absence is normal.
		_ = godotenv.Load()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./researcher.yaml or ~/.config/researcher/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("researcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "researcher"))
		}
	}

	viper.SetEnvPrefix("RESEARCHER")
	viper.AutomaticEnv()

	viper.SetDefault("subject", "machine learning")
	viper.SetDefault("instance", "https://searxng.site/")
	viper.SetDefault("engines", "arxiv,pubmed,google scholar,crossref,openairepublications,openairedatasets,semantic scholar")
	viper.SetDefault("category", "science")
	viper.SetDefault("max_results", 50)
	viper.SetDefault("min_score", 0.6)
	viper.SetDefault("model", "llama3.2:latest")
	viper.SetDefault("ollama_url", "http://localhost:11434")
	viper.SetDefault("output", "results.txt")
	viper.SetDefault("index", "results.db")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
