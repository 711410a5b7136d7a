// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the evidence adapters: Google Custom Search,
// arXiv, and ClinicalTrials.gov. Every adapter normalizes its results into
// types.Record and never returns an error past its boundary; failures are
// reported through Outcome.Kind and the logger.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/pkg/types"
)

// DefaultMaxResults is used when a caller passes a non-positive maxResults.
const DefaultMaxResults = 2

// Adapter fetches evidence from one source. Each adapter implements this
// interface per the Strategy pattern.
type Adapter interface {
	Name() types.Source
	Fetch(ctx context.Context, query string, maxResults int) Outcome
}

// Kind classifies why an outcome carries no (or partial) records.
type Kind int

const (
	// KindOK means the fetch produced at least one record.
	KindOK Kind = iota
	// KindEmpty means the source answered successfully with nothing.
	KindEmpty
	// KindMissingCredential means the adapter made no call for lack of a key.
	KindMissingCredential
	// KindTransport means a timeout, connection error, or cancellation.
	KindTransport
	// KindRemote means the source answered with a non-success status.
	KindRemote
	// KindParse means the response body could not be decoded.
	KindParse
	// KindExtractionExhausted means every candidate locator for a field failed.
	KindExtractionExhausted
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindEmpty:
		return "empty"
	case KindMissingCredential:
		return "missing_credential"
	case KindTransport:
		return "transport_failure"
	case KindRemote:
		return "remote_error"
	case KindParse:
		return "parse_failure"
	case KindExtractionExhausted:
		return "extraction_exhausted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one adapter fetch. Records is never nil.
type Outcome struct {
	Source  types.Source
	Records []types.Record
	Kind    Kind
	Err     error
}

// ErrMissingCredential is the Err of a KindMissingCredential outcome.
var ErrMissingCredential = errors.New("missing credential")

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing %s: %v", e.What, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Classify maps an error returned by the fetcher or a decoder onto a Kind.
func Classify(err error) Kind {
	var (
		se *httputil.StatusError
		te *httputil.TransportError
		pe *ParseError
	)
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.As(err, &se):
		return KindRemote
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &pe):
		return KindParse
	default:
		return KindTransport
	}
}

// success wraps records into an outcome, capping them at max.
func success(src types.Source, records []types.Record, max int) Outcome {
	if len(records) > max {
		records = records[:max]
	}
	if len(records) == 0 {
		return Outcome{Source: src, Records: []types.Record{}, Kind: KindEmpty}
	}
	return Outcome{Source: src, Records: records, Kind: KindOK}
}

// failure builds an empty outcome for err and logs it.
func failure(log *zap.Logger, src types.Source, err error) Outcome {
	kind := Classify(err)
	log.Warn("source fetch failed",
		zap.String("source", string(src)),
		zap.Stringer("kind", kind),
		zap.Error(err))
	return Outcome{Source: src, Records: []types.Record{}, Kind: kind, Err: err}
}

// partial keeps the records gathered before err interrupted a fetch loop.
func partial(log *zap.Logger, src types.Source, records []types.Record, err error) Outcome {
	out := failure(log, src, err)
	if len(records) > 0 {
		out.Records = records
	}
	return out
}

// apiHeader is the header policy for structured API calls.
func apiHeader(userAgent, accept string) http.Header {
	h := http.Header{}
	if userAgent != "" {
		h.Set("User-Agent", userAgent)
	}
	if accept != "" {
		h.Set("Accept", accept)
	}
	return h
}

func clampMax(n int) int {
	if n <= 0 {
		return DefaultMaxResults
	}
	return n
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
