// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose turns a synthesis prompt into report text through a
// conversational generative-text session. Process never returns an error:
// service failures come back as diagnostic text so the caller always has a
// report to show.
package compose

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/litreview/pkg/types"
)

const (
	// NotInitialized is returned by every Process call on a composer whose
	// session could not be opened.
	NotInitialized = "Error: report composer not properly initialized"

	// processErrorPrefix prefixes the diagnostic returned when a send fails.
	processErrorPrefix = "Error processing message: "

	// DefaultModel is used when the configuration names none.
	DefaultModel = "gemini-2.0-flash"
)

// ErrMissingKey is returned when no API key is configured.
var ErrMissingKey = errors.New("missing generative-service API key")

// Session is one ongoing conversation. Each Send sees the earlier turns.
type Session interface {
	Send(ctx context.Context, message string) (string, error)
}

// Composer wraps a Session with the fail-soft contract.
type Composer struct {
	session Session
	log     *zap.Logger
}

// New returns a composer over an existing session. A nil session yields a
// composer that answers NotInitialized.
func New(s Session, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{session: s, log: logger}
}

// Open builds the session selected by cfg.Backend. Initialization failures
// are logged and produce an uninitialized composer rather than an error.
func Open(ctx context.Context, cfg types.ComposerConfig, logger *zap.Logger) *Composer {
	s, err := OpenSession(ctx, cfg)
	c := New(s, logger)
	if err != nil {
		c.log.Error("report composer initialization failed",
			zap.String("backend", string(cfg.Backend)),
			zap.Error(err))
	}
	return c
}

// OpenSession builds the configured session without the fail-soft wrapper.
func OpenSession(ctx context.Context, cfg types.ComposerConfig) (Session, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	var (
		s   Session
		err error
	)
	switch cfg.Backend {
	case types.ComposerGenAI, "":
		s, err = NewGenAISession(ctx, cfg)
	case types.ComposerLangchain:
		s, err = NewLangchainSession(ctx, cfg)
	default:
		err = fmt.Errorf("unknown composer backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Ready reports whether the composer has a live session.
func (c *Composer) Ready() bool {
	return c != nil && c.session != nil
}

// Process sends message to the session and returns the reply verbatim.
func (c *Composer) Process(ctx context.Context, message string) string {
	if !c.Ready() {
		return NotInitialized
	}
	reply, err := c.session.Send(ctx, message)
	if err != nil {
		c.log.Warn("report composition failed", zap.Error(err))
		return processErrorPrefix + err.Error()
	}
	return reply
}
