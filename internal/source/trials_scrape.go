// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/litreview/internal/extract"
	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/internal/scrape"
	"github.com/pdiddy/litreview/pkg/types"
)

const (
	unknownTitle  = "Unknown Title"
	unknownStatus = "Unknown"
	valueClass    = "ct-data-elem__value"
)

var registryIDPattern = regexp.MustCompile(`\bNCT\d{8}\b`)

// Candidate locators for each field of a study detail page, most specific
// first. The site has shipped several layouts; older ones stay listed.
var (
	resultLinks = scrape.MustCSS(".ct-search-result a.ct-search-result__title-link")

	titleLocators = []scrape.Locator{
		scrape.MustCSS("h1.tr-h1"),
		scrape.MustCSS("h1.ct-title"),
		scrape.MustCSS(".headline-title"),
	}
	statusLocators = []scrape.Locator{
		scrape.MustCSS(".ct-recruitment-status div.ct-recruitment-status__label"),
		scrape.MustCSS(".statusLabel"),
		scrape.Containing{Tag: "p", Text: "Recruitment Status:"},
	}
	summaryLocators = []scrape.Locator{
		scrape.MustCSS("#brief-summary div.tr-indent2"),
		scrape.MustCSS(".ct-body__section div.tr-indent1"),
		scrape.MustCSS("section#brief-summary"),
	}
	studyTypeLocators = []scrape.Locator{
		scrape.LabelValue{Label: "Study Type:", ValueClass: valueClass},
		scrape.HeaderCell{Label: "Study Type"},
	}
	phaseLocators = []scrape.Locator{
		scrape.LabelValue{Label: "Phase:", ValueClass: valueClass},
		scrape.HeaderCell{Label: "Phase"},
	}
	conditionLocators = []scrape.Locator{
		scrape.MustCSS("#conditions"),
		scrape.MustCSS("section#conditions"),
		scrape.Containing{Tag: "section", Text: "Condition"},
	}
	listItems = scrape.MustCSS("li")
)

// Scrape searches the public site and reads each result's detail page. It
// is the fallback tier; fields whose locators all fail keep their defaults
// and a record is still produced.
func (r *Registry) Scrape(ctx context.Context, query string, maxResults int) Outcome {
	maxResults = clampMax(maxResults)
	params := url.Values{
		"term": {query},
		"draw": {"1"},
		"rank": {"1"},
	}
	searchURL := strings.TrimRight(r.cfg.SiteBase, "/") + "/search?" + params.Encode()

	if err := r.limiter.Wait(ctx); err != nil {
		return failure(r.log, types.SourceRegistry, &httputil.TransportError{URL: searchURL, Err: err})
	}
	resp, err := r.site.Get(ctx, searchURL)
	if err != nil {
		return failure(r.log, types.SourceRegistry, err)
	}
	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return failure(r.log, types.SourceRegistry, &ParseError{What: "search page", Err: err})
	}

	var ids []string
	for _, a := range resultLinks.All(doc) {
		if len(ids) == maxResults {
			break
		}
		href := scrape.Attr(a, "href")
		id, ok := RegistryIDFromHref(href)
		if !ok {
			r.log.Debug("search result without registry id", zap.String("href", href))
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		r.log.Info("no registry results on search page", zap.String("query", query))
		return success(types.SourceRegistry, nil, maxResults)
	}

	records := make([]types.Record, 0, len(ids))
	for _, id := range ids {
		if err := r.limiter.Wait(ctx); err != nil {
			return partial(r.log, types.SourceRegistry, records, &httputil.TransportError{URL: searchURL, Err: err})
		}
		rec, err := r.scrapeStudy(ctx, id)
		if err != nil {
			r.log.Warn("study page unavailable",
				zap.String("registry_id", id),
				zap.Stringer("kind", Classify(err)),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	r.log.Info("registry scrape complete", zap.String("query", query), zap.Int("count", len(records)))
	return success(types.SourceRegistry, records, maxResults)
}

// scrapeStudy fetches and parses one detail page.
func (r *Registry) scrapeStudy(ctx context.Context, id string) (types.Record, error) {
	pageURL := strings.TrimRight(r.cfg.SiteBase, "/") + "/ct2/show/" + id
	resp, err := r.site.Get(ctx, pageURL)
	if err != nil {
		return types.Record{}, err
	}
	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return types.Record{}, &ParseError{What: "study page " + id, Err: err}
	}
	return r.parseStudyPage(doc, id), nil
}

// parseStudyPage extracts a record from a detail page document.
func (r *Registry) parseStudyPage(doc *html.Node, id string) types.Record {
	field := func(name string, locs []scrape.Locator) (string, bool) {
		text, ok := scrape.FirstText(doc, locs)
		if !ok {
			r.log.Debug("field not found on study page",
				zap.String("registry_id", id),
				zap.String("field", name),
				zap.Stringer("kind", KindExtractionExhausted))
		}
		return text, ok
	}

	title, ok := field("title", titleLocators)
	if !ok {
		title = unknownTitle
	}
	status, ok := field("status", statusLocators)
	if ok {
		status = stripStatusLabel(status)
	}
	if status == "" {
		status = unknownStatus
	}
	summary, _ := field("summary", summaryLocators)
	studyType, _ := field("study_type", studyTypeLocators)
	phase, _ := field("phase", phaseLocators)

	var conditions []string
	if n, _ := scrape.First(doc, conditionLocators); n != nil {
		conditions = conditionList(n)
	} else {
		field("conditions", conditionLocators)
	}

	return types.Record{
		Source:   types.SourceRegistry,
		Title:    title,
		Link:     r.StudyURL(id),
		Snippet:  trialSnippet(summary),
		Abstract: summary,
		Trial: &types.TrialFields{
			RegistryID: id,
			Status:     status,
			StudyType:  studyType,
			Phase:      phase,
			Conditions: conditions,
		},
	}
}

// stripStatusLabel drops a leading "Recruitment Status:" style label.
func stripStatusLabel(s string) string {
	if _, after, ok := strings.Cut(s, "Status:"); ok {
		s = after
	}
	return strings.TrimSpace(s)
}

// conditionList reads list items when the section has any, otherwise the
// comma-separated text after the first colon.
func conditionList(n *html.Node) []string {
	var out []string
	for _, li := range listItems.All(n) {
		if t := extract.NodeText(li); t != "" {
			out = append(out, t)
		}
	}
	if len(out) > 0 {
		return out
	}
	text := extract.NodeText(n)
	if _, after, ok := strings.Cut(text, ":"); ok {
		text = after
	}
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RegistryIDFromHref extracts a well-formed registry id from a result link.
// It tries the /study/ path segment, then /ct2/show/, then any NCT token in
// the href. Query strings and fragments are ignored.
func RegistryIDFromHref(href string) (string, bool) {
	path := href
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	for _, marker := range []string{"/study/", "/ct2/show/"} {
		if i := strings.LastIndex(path, marker); i >= 0 {
			seg := path[i+len(marker):]
			if j := strings.Index(seg, "/"); j >= 0 {
				seg = seg[:j]
			}
			if types.ValidRegistryID(seg) {
				return seg, true
			}
		}
	}
	if id := registryIDPattern.FindString(path); id != "" && types.ValidRegistryID(id) {
		return id, true
	}
	return "", false
}
