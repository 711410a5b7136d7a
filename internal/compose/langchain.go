// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/pdiddy/litreview/pkg/types"
)

// LangchainSession keeps the conversation history itself and replays it on
// every call to a stateless llms.Model.
type LangchainSession struct {
	mu      sync.Mutex
	llm     llms.Model
	history []llms.MessageContent
}

// NewLangchainSession opens a session on the langchaingo Google AI model.
func NewLangchainSession(ctx context.Context, cfg types.ComposerConfig) (*LangchainSession, error) {
	llm, err := googleai.New(ctx, googleai.WithAPIKey(cfg.APIKey), googleai.WithDefaultModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("creating googleai model: %w", err)
	}
	return ModelSession(llm), nil
}

// ModelSession wraps any llms.Model in a session with empty history.
func ModelSession(llm llms.Model) *LangchainSession {
	return &LangchainSession{llm: llm}
}

// Send implements Session. A failed call leaves the history unchanged.
func (s *LangchainSession) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(slices.Clone(s.history), llms.TextParts(llms.ChatMessageTypeHuman, message))
	resp, err := s.llm.GenerateContent(ctx, msgs)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", errors.New("empty response from model")
	}
	text := resp.Choices[0].Content
	s.history = append(msgs, llms.TextParts(llms.ChatMessageTypeAI, text))
	return text, nil
}

// Turns returns the number of messages in the history.
func (s *LangchainSession) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
