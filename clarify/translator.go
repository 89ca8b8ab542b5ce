// Package clarify turns one medical document into a structured,
// plain-language TranslationResult.
package clarify

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medclarify/claude"
	"medclarify/domain"
	"medclarify/imageprep"
)

// Sender is the part of claude.Client the orchestrators need.
type Sender interface {
	Send(ctx context.Context, req *claude.MessageRequest) (*claude.MessageResponse, error)
}

// Translator builds translation requests and parses their results. Each
// call makes exactly one upstream request; a MalformedModelOutput error is
// never retried here.
type Translator struct {
	sender    Sender
	model     string
	maxTokens int
	logger    zerolog.Logger
}

// Option configures a Translator
type Option func(*Translator)

// WithModel overrides the client's default model.
func WithModel(model string) Option {
	return func(t *Translator) {
		t.model = model
	}
}

// WithMaxTokens overrides the client's default token limit.
func WithMaxTokens(n int) Option {
	return func(t *Translator) {
		t.maxTokens = n
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(t *Translator) {
		t.logger = l
	}
}

// NewTranslator creates a Translator sending through sender.
func NewTranslator(sender Sender, opts ...Option) *Translator {
	t := &Translator{
		sender: sender,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateFromText translates raw document text.
func (t *Translator) TranslateFromText(ctx context.Context, text string) (*TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ValidationError("document text is empty", domain.ErrEmptyText)
	}
	return t.translate(ctx, "text", claude.UserText(text))
}

// TranslateFromImage translates a prepared image, asking the model to
// extract the text first.
func (t *Translator) TranslateFromImage(ctx context.Context, payload *imageprep.Payload) (*TranslationResult, error) {
	if payload == nil || payload.Base64 == "" {
		return nil, domain.ValidationError("image payload is empty", domain.ErrNoDocumentSelected)
	}

	mediaType := payload.MediaType
	if mediaType == "" {
		mediaType = imageprep.MediaTypeJPEG
	}

	return t.translate(ctx, "image", claude.UserBlocks(
		claude.ImageBlock(mediaType, payload.Base64),
		claude.TextBlock(ImageInstruction),
	))
}

func (t *Translator) translate(ctx context.Context, source string, msg claude.Message) (*TranslationResult, error) {
	start := time.Now()

	resp, err := t.sender.Send(ctx, &claude.MessageRequest{
		Model:     t.model,
		MaxTokens: t.maxTokens,
		System:    SystemPrompt,
		Messages:  []claude.Message{msg},
	})
	if err != nil {
		return nil, err
	}

	text, ok := resp.FirstText()
	if !ok {
		return nil, domain.MalformedOutputError("response has no content", nil)
	}

	result, err := ParseTranslation(text)
	if err != nil {
		t.logger.Warn().Err(err).Str("source", source).Int("length", len(text)).Msg("could not parse translation")
		return nil, err
	}

	t.logger.Info().
		Str("source", source).
		Str("document_type", result.DocumentType).
		Int("sections", len(result.Sections)).
		Dur("elapsed", time.Since(start)).
		Msg("document translated")

	return result, nil
}
