// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/pdiddy/litreview/pkg/types"
)

// GenAISession is a Gemini chat session from google.golang.org/genai. The
// chat object accumulates history on its own.
type GenAISession struct {
	mu   sync.Mutex
	chat *genai.Chat
}

// NewGenAISession opens a chat against cfg.Model.
func NewGenAISession(ctx context.Context, cfg types.ComposerConfig) (*GenAISession, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	chat, err := client.Chats.Create(ctx, cfg.Model, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating chat session: %w", err)
	}
	return &GenAISession{chat: chat}, nil
}

// Send implements Session.
func (s *GenAISession) Send(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
