// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/compose"
	"github.com/pdiddy/litreview/internal/review"
	"github.com/pdiddy/litreview/internal/source"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Search all sources and compose a literature review",
	Long: `Review queries Google, arXiv, and ClinicalTrials.gov for the topic, then
asks the report composer to synthesize a structured review with citations.
The report is printed and saved as literature_review_<topic>.md in the
output directory.

Without --topic the topic is read from standard input.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().String("topic", "", "research topic")
	reviewCmd.Flags().Int("max", 0, "results per source (default from config)")
	reviewCmd.Flags().String("output-dir", "", "directory for the report file (default from config)")
	reviewCmd.Flags().String("save", "", "also write the full review (records, diagnostics, report) as YAML to this path")
	reviewCmd.Flags().String("csl", "", "also write CSL-YAML references to this path")
	reviewCmd.Flags().Bool("no-file", false, "print the report without saving it")

	rootCmd.AddCommand(reviewCmd)
}

// wiring holds the components built from cfg.
type wiring struct {
	sources  review.Sources
	pipeline *review.Pipeline
}

func sourceOptions() source.Options {
	return source.Options{Logger: logger}
}

func wire(ctx context.Context) wiring {
	srcs := review.NewSources(cfg, sourceOptions())
	composer := compose.Open(ctx, cfg.Composer, logger)
	return wiring{sources: srcs, pipeline: review.NewPipeline(cfg, srcs, composer, logger)}
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	topic, _ := cmd.Flags().GetString("topic")
	if strings.TrimSpace(topic) == "" {
		t, err := promptTopic(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		topic = t
	}
	if max, _ := cmd.Flags().GetInt("max"); max > 0 {
		cfg.Review.MaxResults = max
	}

	w := wire(ctx)
	fmt.Fprintf(cmd.ErrOrStderr(), "Researching %q...\n", strings.TrimSpace(topic))
	rev, err := w.pipeline.Run(ctx, topic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Research Results:")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out, rev.Report)

	stderr := cmd.ErrOrStderr()
	for _, d := range rev.Diagnostics {
		if d.Count == 0 {
			fmt.Fprintf(stderr, "  %s: no results (%s)\n", d.Source, d.Kind)
		}
	}

	if noFile, _ := cmd.Flags().GetBool("no-file"); !noFile {
		dir, _ := cmd.Flags().GetString("output-dir")
		if dir == "" {
			dir = cfg.Review.OutputDir
		}
		path, err := review.WriteReport(dir, rev)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Results saved to %s\n", path)
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := review.WriteFile(path, rev); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Review saved to %s\n", path)
	}

	if path, _ := cmd.Flags().GetString("csl"); path != "" {
		if err := writeCSL(path, rev); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "References saved to %s\n", path)
	}
	return nil
}

// promptTopic reads one line from in; an empty answer is an error.
func promptTopic(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter your research topic: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading topic: %w", err)
	}
	topic := strings.TrimSpace(line)
	if topic == "" {
		return "", review.ErrEmptyTopic
	}
	return topic, nil
}

func writeCSL(path string, rev review.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return review.FormatCSL(rev.Records(), f)
}
