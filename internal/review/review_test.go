// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/pkg/types"
)

// --- stubs ---

type stubAdapter struct {
	name  types.Source
	out   source.Outcome
	calls int
	boom  bool
}

func (s *stubAdapter) Name() types.Source { return s.name }

func (s *stubAdapter) Fetch(_ context.Context, _ string, _ int) source.Outcome {
	s.calls++
	if s.boom {
		panic("adapter exploded")
	}
	return s.out
}

type stubRegistry struct {
	stubAdapter
	scrape      source.Outcome
	scrapeCalls int
}

func (s *stubRegistry) Scrape(_ context.Context, _ string, _ int) source.Outcome {
	s.scrapeCalls++
	return s.scrape
}

type recordingComposer struct {
	reply   string
	prompts []string
}

func (c *recordingComposer) Process(_ context.Context, msg string) string {
	c.prompts = append(c.prompts, msg)
	return c.reply
}

func outcome(src types.Source, recs ...types.Record) source.Outcome {
	if len(recs) == 0 {
		return source.Outcome{Source: src, Records: []types.Record{}, Kind: source.KindEmpty}
	}
	return source.Outcome{Source: src, Records: recs, Kind: source.KindOK}
}

func webRecord(title string) types.Record {
	return types.Record{Source: types.SourceWeb, Title: title, Link: "https://example.com/" + title, Snippet: "s", Body: "b"}
}

func preprintRecord(title, id string) types.Record {
	return types.Record{
		Source:   types.SourceArxiv,
		Title:    title,
		Link:     "https://arxiv.org/abs/" + id,
		Abstract: "abstract of " + title,
		Preprint: &types.PreprintFields{
			Authors:   []string{"Ada Lovelace", "Alan Turing"},
			Published: "2024-03-01",
			SourceURL: "https://arxiv.org/abs/" + id,
		},
	}
}

func trialRecord(title, id string) types.Record {
	return types.Record{
		Source:   types.SourceRegistry,
		Title:    title,
		Link:     "https://clinicaltrials.gov/ct2/show/" + id,
		Abstract: "summary of " + title,
		Trial: &types.TrialFields{
			RegistryID: id,
			Status:     "Recruiting",
			StudyType:  "Interventional",
			Phase:      "Phase 3",
			Conditions: []string{"Diabetes"},
		},
	}
}

type fixture struct {
	web, pre *stubAdapter
	reg      *stubRegistry
	composer *recordingComposer
	pipeline *Pipeline
}

func newFixture() *fixture {
	f := &fixture{
		web: &stubAdapter{name: types.SourceWeb, out: outcome(types.SourceWeb,
			webRecord("Diabetes Overview"), webRecord("Managing Type 2"))},
		pre: &stubAdapter{name: types.SourceArxiv, out: outcome(types.SourceArxiv,
			preprintRecord("Glucose Forecasting", "2401.00001v1"), preprintRecord("Insulin Models", "2401.00002v1"))},
		reg: &stubRegistry{
			stubAdapter: stubAdapter{name: types.SourceRegistry, out: outcome(types.SourceRegistry)},
			scrape: outcome(types.SourceRegistry,
				trialRecord("Metformin Trial", "NCT01234567"), trialRecord("Semaglutide Trial", "NCT07654321")),
		},
		composer: &recordingComposer{reply: "  # Literature Review\n\nraw model output\n"},
	}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.pipeline = &Pipeline{
		Web:        f.web,
		Preprint:   f.pre,
		Registry:   f.reg,
		Composer:   f.composer,
		MaxResults: 2,
		Now:        func() time.Time { return fixed },
	}
	return f
}

// --- Run ---

func TestRunDiabetesScenario(t *testing.T) {
	f := newFixture()

	rev, err := f.pipeline.Run(context.Background(), "diabetes")
	require.NoError(t, err)

	assert.Equal(t, 1, f.web.calls)
	assert.Equal(t, 1, f.pre.calls)
	assert.Equal(t, 1, f.reg.calls)
	assert.Equal(t, 1, f.reg.scrapeCalls)
	assert.Equal(t, TierScrape, rev.TrialTier)

	require.Len(t, f.composer.prompts, 1)
	prompt := f.composer.prompts[0]
	for _, title := range []string{
		"Diabetes Overview", "Managing Type 2",
		"Glucose Forecasting", "Insulin Models",
		"Metformin Trial", "Semaglutide Trial",
	} {
		assert.Contains(t, prompt, "Title: "+title)
	}
	assert.NotContains(t, prompt, "No Google search results found.")
	assert.NotContains(t, prompt, "No Arxiv papers found.")
	assert.NotContains(t, prompt, "No clinical trials found.")
	assert.NotContains(t, prompt, "No results were found in ")
	assert.Contains(t, prompt, "https://clinicaltrials.gov/ct2/show/NCTXXXXXXXX")
	assert.Contains(t, prompt, "https://arxiv.org/abs/XXXX.XXXXX")

	assert.Equal(t, f.composer.reply, rev.Report)
	assert.Equal(t, prompt, rev.Prompt)
	assert.Len(t, rev.Records(), 6)
	assert.NotEqual(t, uuid.Nil, rev.ID)
}

func TestRunSkipsScrapeWhenAPIHasStudies(t *testing.T) {
	f := newFixture()
	f.reg.out = outcome(types.SourceRegistry, trialRecord("API Trial", "NCT00000001"))

	rev, err := f.pipeline.Run(context.Background(), "diabetes")
	require.NoError(t, err)

	assert.Zero(t, f.reg.scrapeCalls)
	assert.Equal(t, TierAPI, rev.TrialTier)
	require.Len(t, rev.Trials, 1)
	assert.Equal(t, "API Trial", rev.Trials[0].Title)
}

func TestRunScrapeRunsOnceEvenWhenEmpty(t *testing.T) {
	f := newFixture()
	f.reg.scrape = outcome(types.SourceRegistry)

	rev, err := f.pipeline.Run(context.Background(), "diabetes")
	require.NoError(t, err)

	assert.Equal(t, 1, f.reg.scrapeCalls)
	assert.Empty(t, rev.Trials)
	assert.Contains(t, rev.Prompt, "No clinical trials found.")
	assert.Contains(t, rev.Prompt, "No results were found in ClinicalTrials.gov.")
}

func TestRunAllSourcesEmpty(t *testing.T) {
	f := newFixture()
	f.web.out = source.Outcome{Source: types.SourceWeb, Records: []types.Record{}, Kind: source.KindMissingCredential, Err: source.ErrMissingCredential}
	f.pre.out = outcome(types.SourceArxiv)
	f.reg.scrape = outcome(types.SourceRegistry)

	rev, err := f.pipeline.Run(context.Background(), "rare topic")
	require.NoError(t, err)

	require.Len(t, f.composer.prompts, 1)
	for _, want := range []string{
		"No Google search results found.",
		"No Arxiv papers found.",
		"No clinical trials found.",
		"No results were found in Google search.",
		"No results were found in arXiv.",
	} {
		assert.Contains(t, rev.Prompt, want)
	}
	require.Len(t, rev.Diagnostics, 4)
	assert.Equal(t, "missing_credential", rev.Diagnostics[0].Kind)
	assert.Equal(t, source.ErrMissingCredential.Error(), rev.Diagnostics[0].Error)
}

func TestRunEmptyTopic(t *testing.T) {
	f := newFixture()
	_, err := f.pipeline.Run(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Zero(t, f.web.calls)
}

func TestRunCancelledSkipsComposer(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Run(ctx, "diabetes")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.composer.prompts)
}

func TestRunIdempotent(t *testing.T) {
	f := newFixture()
	a, err := f.pipeline.Run(context.Background(), "diabetes")
	require.NoError(t, err)
	b, err := f.pipeline.Run(context.Background(), "diabetes")
	require.NoError(t, err)

	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(Review{}, "ID")); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

// --- Start ---

func TestStartDeliversOneResult(t *testing.T) {
	f := newFixture()
	ch := f.pipeline.Start(context.Background(), "diabetes")

	res, ok := <-ch
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, f.composer.reply, res.Review.Report)

	_, ok = <-ch
	assert.False(t, ok, "channel should be closed after one result")
}

func TestStartRecoversPanic(t *testing.T) {
	f := newFixture()
	f.pre.boom = true

	res := <-f.pipeline.Start(context.Background(), "diabetes")

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "adapter exploded")
	assert.Empty(t, f.composer.prompts)
}

// --- blocks ---

func TestTrialBlockSummaryTruncation(t *testing.T) {
	long := trialRecord("Long", "NCT01234567")
	long.Abstract = strings.Repeat("a", 301)
	short := trialRecord("Short", "NCT07654321")
	short.Abstract = strings.Repeat("b", 300)
	short.Trial.Conditions = nil

	block := TrialBlock("diabetes", []types.Record{long, short})

	assert.Contains(t, block, "Summary: "+strings.Repeat("a", 300)+"...\n")
	assert.Contains(t, block, "Summary: "+strings.Repeat("b", 300)+"\n")
	assert.Contains(t, block, "Conditions: Not specified")
	assert.Contains(t, block, "NCT ID: NCT01234567")
}

func TestWebBlockBodyTruncation(t *testing.T) {
	r := webRecord("Page")
	r.Body = strings.Repeat("x", 501)
	block := WebBlock("t", []types.Record{r})
	assert.Contains(t, block, "Content: "+strings.Repeat("x", 500)+"...\n")
}

func TestPreprintBlock(t *testing.T) {
	block := PreprintBlock("t", []types.Record{preprintRecord("Paper", "2401.00001v1")})
	assert.Contains(t, block, "Authors: Ada Lovelace, Alan Turing")
	assert.Contains(t, block, "Published: 2024-03-01")
	assert.Contains(t, block, "URL: https://arxiv.org/abs/2401.00001v1")
}

func TestRenderPromptLinkBase(t *testing.T) {
	p, err := RenderPrompt("t", Review{}, "https://mirror.example")
	require.NoError(t, err)
	assert.Contains(t, p, "https://mirror.example/ct2/show/NCTXXXXXXXX")
}

// --- output ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable([]types.Record{
		webRecord("Web"),
		preprintRecord("Preprint", "2401.00001v1"),
		trialRecord("Trial", "NCT01234567"),
	}, &buf)

	out := buf.String()
	assert.Contains(t, out, "Ada Lovelace et al.")
	assert.Contains(t, out, "NCT01234567")
	assert.Contains(t, out, "3 results")

	buf.Reset()
	FormatTable(nil, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON([]types.Record{trialRecord("Trial", "NCT01234567")}, &buf))

	var got []types.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "NCT01234567", got[0].Trial.RegistryID)
}

func TestFormatCSL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatCSL([]types.Record{
		preprintRecord("Paper", "2401.00001v1"),
		trialRecord("Trial", "NCT01234567"),
	}, &buf))

	out := buf.String()
	assert.Contains(t, out, "id: arXiv:2401.00001v1")
	assert.Contains(t, out, "type: article")
	assert.Contains(t, out, "family: Lovelace")
	assert.Contains(t, out, "id: NCT01234567")
	assert.Contains(t, out, "type: report")
	assert.Contains(t, out, "publisher: ClinicalTrials.gov")
}

func TestParseAuthorName(t *testing.T) {
	assert.Equal(t, CSLName{Given: "Ada", Family: "Lovelace"}, parseAuthorName("Ada Lovelace"))
	assert.Equal(t, CSLName{Literal: "Plato"}, parseAuthorName(" Plato "))
	assert.Equal(t, CSLName{}, parseAuthorName(""))
}

func TestReviewFileRoundTrip(t *testing.T) {
	f := newFixture()
	rev, err := f.pipeline.Run(context.Background(), "diabetes")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "review.yaml")
	require.NoError(t, WriteFile(path, rev))
	got, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "diabetes", got.Topic)
	assert.Equal(t, rev.ID.String(), got.ID)
	assert.Equal(t, TierScrape, got.TrialTier)
	assert.Len(t, got.Records, 6)
	assert.Equal(t, 2, got.Summary.Trials)
	assert.Equal(t, rev.Report, got.Report)
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "literature_review_type_2_diabetes.md", ReportFilename(" type 2 diabetes "))
	assert.Equal(t, "literature_review_a-b.md", ReportFilename("a/b"))
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteReport(dir, Review{Topic: "heart failure", Report: "report body"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "literature_review_heart_failure.md"), path)
}
