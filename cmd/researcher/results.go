// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/servus-altissimi/researcher/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect and export collected papers",
	Long: `Results reads the collected papers from the results file. Use
subcommands to list them, search them through the full-text index, or
export them for reference managers.`,
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collected papers",
	RunE:  runResultsList,
}

var resultsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over collected papers",
	Long: `Search rebuilds the SQLite full-text index from the results file and
queries it, ranked by relevance.`,
	Args: cobra.ExactArgs(1),
	RunE: runResultsSearch,
}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export collected papers as CSL-YAML or JSON",
	RunE:  runResultsExport,
}

func init() {
	resultsSearchCmd.Flags().Int("limit", 20, "maximum matches to print")
	resultsExportCmd.Flags().String("format", "csl", "export format: csl or json")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsSearchCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	rootCmd.AddCommand(resultsCmd)
}

func runResultsList(cmd *cobra.Command, args []string) error {
	records, err := store.ReadRecords(viper.GetString("output"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No papers collected yet.")
		return nil
	}

	for _, r := range records {
		printRecord(r)
	}
	fmt.Printf("%d paper(s)\n", len(records))
	return nil
}

func runResultsSearch(cmd *cobra.Command, args []string) error {
	indexPath := viper.GetString("index")
	if indexPath == "" {
		return fmt.Errorf("no index configured: set --index or the 'index' config key")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := store.ReadRecords(viper.GetString("output"))
	if err != nil {
		return err
	}

	idx, err := store.OpenIndex(indexPath)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Rebuild(ctx, records); err != nil {
		return err
	}

	matches, err := idx.Search(ctx, args[0], limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, r := range matches {
		printRecord(r)
	}
	fmt.Printf("%d match(es)\n", len(matches))
	return nil
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	records, err := store.ReadRecords(viper.GetString("output"))
	if err != nil {
		return err
	}

	switch format {
	case "csl":
		return store.WriteCSL(records, os.Stdout)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format %q: use csl or json", format)
	}
}

func printRecord(r store.Record) {
	fmt.Printf("%s  [%.2f]  %s\n", r.DOI, r.Score, r.Title)
	fmt.Printf("    %s\n", r.URL)
	if r.AbstractText != "" {
		abstract := r.AbstractText
		if len(abstract) > 160 {
			abstract = strings.TrimSpace(abstract[:160]) + "..."
		}
		fmt.Printf("    %s\n", abstract)
	}
	fmt.Println()
}
