package clarify

import (
	"context"

	"github.com/rs/zerolog"

	"medclarify/document"
	"medclarify/domain"
	"medclarify/imageprep"
)

// Pipeline runs a document from validation to translation.
type Pipeline struct {
	prep       *imageprep.Preprocessor
	translator *Translator
	logger     zerolog.Logger
}

// NewPipeline wires a Preprocessor and a Translator together.
func NewPipeline(prep *imageprep.Preprocessor, translator *Translator, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		prep:       prep,
		translator: translator,
		logger:     logger,
	}
}

// Translator returns the pipeline's translator.
func (p *Pipeline) Translator() *Translator {
	return p.translator
}

// Process validates asset, prepares it and translates it. crop is optional.
// Derived image files are removed before returning; the asset itself is
// left alone.
func (p *Pipeline) Process(ctx context.Context, asset *document.Asset, crop *imageprep.Rect) (*TranslationResult, error) {
	if err := document.Validate(asset); err != nil {
		return nil, err
	}

	if asset.Kind == document.KindPDF || asset.MIMEType == "application/pdf" {
		return nil, domain.ValidationError(
			"PDF processing is not available. Please use the camera to scan individual pages of your document.",
			domain.ErrPDFNotSupported,
		)
	}

	payload, err := p.prep.Prepare(ctx, asset.URI, crop)
	if err != nil {
		return nil, err
	}
	defer document.RemoveAll(payload.Intermediates, p.logger)

	p.logger.Debug().
		Str("document", asset.Name()).
		Str("size", document.FormatSize(payload.EncodedSizeBytes)).
		Bool("recompressed", payload.Recompressed).
		Msg("payload ready")

	return p.translator.TranslateFromImage(ctx, payload)
}

// ProcessText translates pasted or extracted document text.
func (p *Pipeline) ProcessText(ctx context.Context, text string) (*TranslationResult, error) {
	return p.translator.TranslateFromText(ctx, text)
}
