package clarify

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medclarify/document"
	"medclarify/domain"
	"medclarify/imageprep"
)

func writeScan(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		img.SetGray(x, 15, color.Gray{Y: 0})
	}
	path := filepath.Join(dir, "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTestPipeline(t *testing.T, sender *fakeSender) (*Pipeline, string) {
	t.Helper()
	work := t.TempDir()
	prep := imageprep.New(imageprep.WithManipulator(&imageprep.JPEGManipulator{Dir: work}))
	return NewPipeline(prep, NewTranslator(sender), zerolog.Nop()), work
}

func TestPipelineProcessImage(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}
	p, work := newTestPipeline(t, sender)

	src := writeScan(t, t.TempDir())
	asset, err := document.FromPath(src)
	require.NoError(t, err)

	r, err := p.Process(context.Background(), asset, &imageprep.Rect{Width: 20, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, "Lab Results", r.DocumentType)

	require.Len(t, sender.requests, 1)
	blocks := sender.requests[0].Messages[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, imageprep.MediaTypeJPEG, blocks[0].Source.MediaType)
	assert.NotEmpty(t, blocks[0].Source.Data)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries, "derived files are cleaned up")
	assert.True(t, document.Exists(src), "the original is untouched")
}

func TestPipelineRejectsInvalidBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		asset *document.Asset
		want  error
	}{
		{"nothing selected", nil, domain.ErrNoDocumentSelected},
		{"too large", &document.Asset{URI: "big.png", MIMEType: "image/png", SizeBytes: 11_000_000}, domain.ErrDocumentTooLarge},
		{"unsupported", &document.Asset{URI: "a.gif", MIMEType: "image/gif"}, domain.ErrUnsupportedType},
		{"pdf", &document.Asset{URI: "a.pdf", MIMEType: "application/pdf", Kind: document.KindPDF}, domain.ErrPDFNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{text: sampleJSON}
			p, _ := newTestPipeline(t, sender)

			_, err := p.Process(context.Background(), tt.asset, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, sender.requests)
		})
	}
}

func TestPipelineMissingSource(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}
	p, _ := newTestPipeline(t, sender)

	asset := &document.Asset{URI: filepath.Join(t.TempDir(), "gone.jpg"), MIMEType: "image/jpeg", Kind: document.KindImage}
	_, err := p.Process(context.Background(), asset, nil)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Empty(t, sender.requests)
}

func TestPipelineCleansUpOnTranslationFailure(t *testing.T) {
	sender := &fakeSender{text: "{not json"}
	p, work := newTestPipeline(t, sender)

	asset, err := document.FromPath(writeScan(t, t.TempDir()))
	require.NoError(t, err)

	_, err = p.Process(context.Background(), asset, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeMalformedOutput))

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPipelineProcessText(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}
	p, _ := newTestPipeline(t, sender)

	r, err := p.ProcessText(context.Background(), "eGFR >90")
	require.NoError(t, err)
	assert.Len(t, r.Sections, 2)
	assert.Same(t, p.translator, p.Translator())
}
