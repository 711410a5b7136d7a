// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/internal/ratelimit"
	"github.com/pdiddy/litreview/pkg/types"
)

const (
	// snippetChars bounds a trial snippet before the ellipsis is added.
	snippetChars = 200
	// phaseNotSpecified is the phase of a study that lists none.
	phaseNotSpecified = "Not Specified"
)

// Registry fetches studies from ClinicalTrials.gov. Fetch uses the
// structured v2 API; Scrape reads the HTML site and is meant as a fallback
// when Fetch returns nothing. Both tiers share one rate limiter.
type Registry struct {
	cfg     types.RegistryConfig
	api     *httputil.Fetcher
	site    *httputil.Fetcher
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

// NewRegistry builds the registry adapter from its configuration.
func NewRegistry(cfg types.RegistryConfig, opts Options) *Registry {
	return &Registry{
		cfg: cfg,
		api: &httputil.Fetcher{
			Client:  opts.Client,
			Timeout: cfg.Timeout,
			Header:  apiHeader(cfg.UserAgent, "application/json"),
		},
		site: &httputil.Fetcher{
			Client:  opts.Client,
			Timeout: cfg.Timeout,
			Header:  httputil.BrowserHeaders(),
		},
		limiter: ratelimit.New(cfg.Delay, opts.Clock),
		log:     orNop(opts.Logger),
	}
}

// Name returns the source identifier.
func (r *Registry) Name() types.Source { return types.SourceRegistry }

// StudyURL returns the public link for a registry id.
func (r *Registry) StudyURL(id string) string {
	return StudyURL(r.cfg.LinkBase, id)
}

// StudyURL returns base + "/ct2/show/" + id.
func StudyURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/ct2/show/" + id
}

// Fetch queries the structured API. An empty studies list is a valid,
// empty outcome. Studies whose summaries are both empty are enriched from
// the single-study endpoint.
func (r *Registry) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	maxResults = clampMax(maxResults)
	params := url.Values{
		"query.term": {query},
		"pageSize":   {strconv.Itoa(maxResults)},
		"format":     {"json"},
	}
	endpoint := strings.TrimRight(r.cfg.APIBase, "/") + "/studies"

	if err := r.limiter.Wait(ctx); err != nil {
		return failure(r.log, types.SourceRegistry, &httputil.TransportError{URL: endpoint, Err: err})
	}
	resp, err := r.api.Get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return failure(r.log, types.SourceRegistry, err)
	}

	var sr ctStudiesResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return failure(r.log, types.SourceRegistry, &ParseError{What: "studies response", Err: err})
	}
	if len(sr.Studies) == 0 {
		r.log.Info("no registry studies found", zap.String("query", query))
		return success(types.SourceRegistry, nil, maxResults)
	}

	var records []types.Record
	for _, study := range sr.Studies {
		if len(records) == maxResults {
			break
		}
		rec, ok := r.studyRecord(study.ProtocolSection)
		if !ok {
			continue
		}

		if rec.Abstract == "" {
			if err := r.limiter.Wait(ctx); err != nil {
				return partial(r.log, types.SourceRegistry, records, &httputil.TransportError{URL: endpoint, Err: err})
			}
			detail, err := r.Detail(ctx, rec.Trial.RegistryID)
			if err != nil {
				r.log.Warn("registry enrichment failed",
					zap.String("registry_id", rec.Trial.RegistryID),
					zap.Stringer("kind", Classify(err)),
					zap.Error(err))
			} else {
				rec.Enrich(detail)
			}
		}
		rec.Snippet = trialSnippet(rec.Abstract)
		records = append(records, rec)
	}

	r.log.Info("registry API search complete", zap.String("query", query), zap.Int("count", len(records)))
	return success(types.SourceRegistry, records, maxResults)
}

// Detail fetches one study from the single-study endpoint. It does not
// consult the rate limiter; callers inside a fetch loop wait first.
func (r *Registry) Detail(ctx context.Context, id string) (types.Record, error) {
	if !types.ValidRegistryID(id) {
		return types.Record{}, &ParseError{What: "registry id", Err: fmt.Errorf("invalid identifier %q", id)}
	}
	endpoint := strings.TrimRight(r.cfg.APIBase, "/") + "/studies/" + id
	resp, err := r.api.Get(ctx, endpoint+"?format=json")
	if err != nil {
		return types.Record{}, err
	}

	var study ctStudy
	if err := json.Unmarshal(resp.Body, &study); err != nil {
		return types.Record{}, &ParseError{What: "study " + id, Err: err}
	}
	p := study.ProtocolSection

	rec := types.Record{
		Source:   types.SourceRegistry,
		Title:    strings.TrimSpace(p.Identification.BriefTitle),
		Link:     r.StudyURL(id),
		Abstract: firstNonEmpty(p.Description.BriefSummary, p.Description.DetailedDescription),
		Trial: &types.TrialFields{
			RegistryID: id,
			Conditions: p.Conditions.Conditions,
		},
	}
	for _, iv := range p.ArmsInterventions.Interventions {
		if name := strings.TrimSpace(iv.Name); name != "" {
			rec.Trial.Interventions = append(rec.Trial.Interventions, name)
		}
	}
	return rec, nil
}

// studyRecord maps one protocol section onto a record. ok is false when the
// study has no well-formed identifier.
func (r *Registry) studyRecord(p ctProtocol) (types.Record, bool) {
	id := strings.TrimSpace(p.Identification.NCTID)
	if id == "" {
		return types.Record{}, false
	}
	if !types.ValidRegistryID(id) {
		r.log.Debug("skipping study with malformed id", zap.String("registry_id", id))
		return types.Record{}, false
	}

	phase := phaseNotSpecified
	if len(p.Design.Phases) > 0 {
		phase = strings.Join(p.Design.Phases, ", ")
	}

	rec := types.Record{
		Source:   types.SourceRegistry,
		Title:    firstNonEmpty(p.Identification.BriefTitle, p.Identification.OfficialTitle),
		Link:     r.StudyURL(id),
		Abstract: firstNonEmpty(p.Description.BriefSummary, p.Description.DetailedDescription),
		Trial: &types.TrialFields{
			RegistryID: id,
			Status:     p.Status.OverallStatus,
			StudyType:  p.Design.StudyType,
			Phase:      phase,
			Conditions: p.Conditions.Conditions,
		},
	}
	if n := p.Design.EnrollmentInfo.Count; n > 0 {
		rec.Trial.Enrollment = n
	}
	for _, loc := range p.ContactsLocations.Locations {
		if s := joinNonEmpty(", ", loc.Facility, loc.City, loc.Country); s != "" {
			rec.Trial.Locations = append(rec.Trial.Locations, s)
		}
	}
	if rec.Title == "" {
		rec.Title = id
	}
	return rec, true
}

// trialSnippet truncates a summary to snippetChars characters, appending
// "..." when anything was cut.
func trialSnippet(summary string) string {
	runes := []rune(summary)
	if len(runes) <= snippetChars {
		return summary
	}
	return string(runes[:snippetChars]) + "..."
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, vals ...string) string {
	var parts []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

// ClinicalTrials.gov v2 JSON structures.
type ctStudiesResponse struct {
	Studies []ctStudy `json:"studies"`
}

type ctStudy struct {
	ProtocolSection ctProtocol `json:"protocolSection"`
}

type ctProtocol struct {
	Identification struct {
		NCTID         string `json:"nctId"`
		BriefTitle    string `json:"briefTitle"`
		OfficialTitle string `json:"officialTitle"`
	} `json:"identificationModule"`
	Status struct {
		OverallStatus string `json:"overallStatus"`
	} `json:"statusModule"`
	Design struct {
		StudyType      string   `json:"studyType"`
		Phases         []string `json:"phases"`
		EnrollmentInfo struct {
			Count int `json:"count"`
		} `json:"enrollmentInfo"`
	} `json:"designModule"`
	Conditions struct {
		Conditions []string `json:"conditions"`
	} `json:"conditionsModule"`
	Description struct {
		BriefSummary        string `json:"briefSummary"`
		DetailedDescription string `json:"detailedDescription"`
	} `json:"descriptionModule"`
	ArmsInterventions struct {
		Interventions []struct {
			Name string `json:"name"`
		} `json:"interventions"`
	} `json:"armsInterventionsModule"`
	ContactsLocations struct {
		Locations []struct {
			Facility string `json:"facility"`
			City     string `json:"city"`
			Country  string `json:"country"`
		} `json:"locations"`
	} `json:"contactsLocationsModule"`
}
