package qa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medclarify/clarify"
	"medclarify/claude"
	"medclarify/domain"
)

// Conversation sends guardrail-constrained follow-up questions. It holds no
// session state; callers must not ask twice on the same session at once.
type Conversation struct {
	sender    clarify.Sender
	model     string
	maxTokens int
	logger    zerolog.Logger
}

// Option configures a Conversation
type Option func(*Conversation)

// WithModel overrides the client's default model.
func WithModel(model string) Option {
	return func(c *Conversation) {
		c.model = model
	}
}

// WithMaxTokens overrides the client's default token limit.
func WithMaxTokens(n int) Option {
	return func(c *Conversation) {
		c.maxTokens = n
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Conversation) {
		c.logger = l
	}
}

// NewConversation creates a Conversation sending through sender.
func NewConversation(sender clarify.Sender, opts ...Option) *Conversation {
	c := &Conversation{
		sender: sender,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends question about the session's document and returns the session
// with the question and answer appended. On error the session is unchanged
// and nothing is appended.
func (c *Conversation) Ask(ctx context.Context, s *Session, question string) (*Session, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ValidationError("question cannot be empty", domain.ErrEmptyQuestion)
	}

	docJSON, err := s.Document.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document context: %w", err)
	}

	start := time.Now()
	resp, err := c.sender.Send(ctx, &claude.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    SystemPrompt(docJSON, s.History()),
		Messages:  []claude.Message{claude.UserText(question)},
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("session", s.ID).Msg("question failed")
		return nil, err
	}

	answer, ok := resp.FirstText()
	if !ok {
		return nil, domain.MalformedOutputError("response has no content", nil)
	}
	answer = strings.TrimSpace(answer)

	c.logger.Info().
		Str("session", s.ID).
		Int("turns", s.Len()+2).
		Dur("elapsed", time.Since(start)).
		Msg("question answered")

	return s.WithExchange(question, answer), nil
}
