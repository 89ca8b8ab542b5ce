// Package imageprep turns a captured or picked image into a payload the model
// service accepts: crop, normalize width, keep under the size budget, encode.
package imageprep

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"

	"medclarify/document"
	"medclarify/domain"
)

const (
	// SizeBudget is the largest encoded image the model service accepts (5 MiB).
	SizeBudget = 5 * 1024 * 1024

	CropQuality    = 0.8
	EnhanceWidth   = 2000
	EnhanceQuality = 0.9
	FallbackWidth  = 1500
	// MaxFallbackQuality caps the quality of the corrective pass.
	MaxFallbackQuality = 0.7

	MediaTypeJPEG = "image/jpeg"
)

// Payload is a transport-ready image. It belongs to the call that produced it.
type Payload struct {
	Base64           string
	MediaType        string
	EncodedSizeBytes int64
	SourceURI        string
	ProcessedURI     string
	Recompressed     bool
	// Intermediates are the derived files written while preparing the
	// payload. The caller removes them once the payload has been sent.
	Intermediates []string
}

// Preprocessor runs the image preparation pipeline.
type Preprocessor struct {
	manip  Manipulator
	budget int64
	logger zerolog.Logger
}

// Option configures the Preprocessor
type Option func(*Preprocessor)

// WithManipulator replaces the image transform backend.
func WithManipulator(m Manipulator) Option {
	return func(p *Preprocessor) {
		p.manip = m
	}
}

// WithBudget overrides the encoded size budget.
func WithBudget(bytes int64) Option {
	return func(p *Preprocessor) {
		if bytes > 0 {
			p.budget = bytes
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(p *Preprocessor) {
		p.logger = l
	}
}

// New creates a Preprocessor writing JPEGs to the system temp directory.
func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		manip:  &JPEGManipulator{},
		budget: SizeBudget,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare converts the image at src into a Payload. crop is optional. The
// source file is never modified. If the single corrective pass still leaves
// the image over budget it is returned as is.
func (p *Preprocessor) Prepare(ctx context.Context, src string, crop *Rect) (*Payload, error) {
	if !document.Exists(src) {
		return nil, domain.ImageProcessingError(fmt.Sprintf("image %s not found", src), domain.ErrSourceUnavailable)
	}

	payload := &Payload{
		MediaType: MediaTypeJPEG,
		SourceURI: src,
	}
	current := src

	step := func(name string, op Operation) error {
		out, err := p.manip.Manipulate(ctx, current, op)
		if err != nil {
			return domain.ImageProcessingError(name+" failed", err)
		}
		payload.Intermediates = append(payload.Intermediates, out)
		current = out
		return nil
	}

	fail := func(err error) (*Payload, error) {
		document.RemoveAll(payload.Intermediates, p.logger)
		return nil, err
	}

	if crop != nil {
		if err := step("crop", Operation{Crop: crop, Quality: CropQuality}); err != nil {
			return fail(err)
		}
	}

	if err := step("enhance", Operation{MaxWidth: EnhanceWidth, Quality: EnhanceQuality}); err != nil {
		return fail(err)
	}

	size, err := fileSize(current)
	if err != nil {
		return fail(err)
	}

	if size > p.budget {
		quality := math.Min(MaxFallbackQuality, float64(p.budget)/float64(size))
		p.logger.Info().
			Int64("size", size).
			Int64("budget", p.budget).
			Float64("quality", quality).
			Msg("image over budget, recompressing")

		if err := step("recompress", Operation{MaxWidth: FallbackWidth, Quality: quality}); err != nil {
			return fail(err)
		}
		payload.Recompressed = true

		if size, err = fileSize(current); err != nil {
			return fail(err)
		}
		if size > p.budget {
			p.logger.Warn().
				Int64("size", size).
				Int64("budget", p.budget).
				Msg("image still over budget after recompression, sending anyway")
		}
	}

	data, err := os.ReadFile(current)
	if err != nil {
		return fail(domain.ImageProcessingError("read failed", err))
	}

	payload.Base64 = base64.StdEncoding.EncodeToString(data)
	payload.EncodedSizeBytes = int64(len(data))
	payload.ProcessedURI = current

	p.logger.Debug().
		Str("source", src).
		Str("processed", current).
		Int64("size", payload.EncodedSizeBytes).
		Bool("recompressed", payload.Recompressed).
		Msg("image prepared")

	return payload, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, domain.ImageProcessingError("size check failed", err)
	}
	return info.Size(), nil
}
