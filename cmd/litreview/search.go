// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/review"
)

var searchCmd = &cobra.Command{
	Use:   "search <web|arxiv|trials> <query...>",
	Short: "Query a single source without composing a report",
	Long: `Search runs one source adapter and prints the normalized records.
For trials the structured API is tried first and the site scrape is used
when it finds nothing; --scrape goes straight to the scrape tier.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max", 3, "maximum number of results")
	searchCmd.Flags().Bool("scrape", false, "trials only: skip the API and scrape the site")
	searchCmd.Flags().String("format", "table", "output format: table, json, yaml, csl")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	src, err := review.ParseSource(args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")
	max, _ := cmd.Flags().GetInt("max")
	scrape, _ := cmd.Flags().GetBool("scrape")
	format, _ := cmd.Flags().GetString("format")

	srcs := review.NewSources(cfg, sourceOptions())
	out, tier := srcs.Search(cmd.Context(), src, query, max, scrape)

	stderr := cmd.ErrOrStderr()
	if tier != "" {
		fmt.Fprintf(stderr, "%s via %s tier: %s\n", src, tier, out.Kind)
	} else {
		fmt.Fprintf(stderr, "%s: %s\n", src, out.Kind)
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		return review.FormatJSON(out.Records, w)
	case "yaml":
		return review.FormatYAML(out.Records, w)
	case "csl":
		return review.FormatCSL(out.Records, w)
	case "table", "":
		review.FormatTable(out.Records, w)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json, yaml, or csl)", format)
	}
}
