// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/pkg/types"
)

// File is the on-disk record of a review. A saved review can be reloaded
// to re-render its references without querying the sources again.
type File struct {
	ID          string         `yaml:"id"`
	Topic       string         `yaml:"topic"`
	TrialTier   Tier           `yaml:"trial_tier"`
	Records     []types.Record `yaml:"records"`
	Diagnostics []Diagnostic   `yaml:"diagnostics,omitempty"`
	Report      string         `yaml:"report"`
	Summary     FileSummary    `yaml:"summary"`
}

// FileSummary stores result counts and a timestamp.
type FileSummary struct {
	Web       int       `yaml:"web"`
	Preprints int       `yaml:"preprints"`
	Trials    int       `yaml:"trials"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteFile saves a review to a YAML file at path.
func WriteFile(path string, rev Review) error {
	f := File{
		ID:          rev.ID.String(),
		Topic:       rev.Topic,
		TrialTier:   rev.TrialTier,
		Records:     rev.Records(),
		Diagnostics: rev.Diagnostics,
		Report:      rev.Report,
		Summary: FileSummary{
			Web:       len(rev.Web),
			Preprints: len(rev.Preprints),
			Trials:    len(rev.Trials),
			Timestamp: rev.Finished,
		},
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling review file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a review file saved by WriteFile.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading review file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing review file: %w", err)
	}
	return &f, nil
}

// ReportFilename returns literature_review_<topic>.md, with spaces in the
// topic replaced by underscores and path separators removed.
func ReportFilename(topic string) string {
	name := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '-'
		}
		return r
	}, name)
	return "literature_review_" + name + ".md"
}

// WriteReport writes the report text into dir under ReportFilename and
// returns the path written.
func WriteReport(dir string, rev Review) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, ReportFilename(rev.Topic))
	if err := os.WriteFile(path, []byte(rev.Report), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
