package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"medclarify/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		asset   *Asset
		wantErr error
	}{
		{"nil asset", nil, domain.ErrNoDocumentSelected},
		{"empty uri", &Asset{URI: "  "}, domain.ErrNoDocumentSelected},
		{"too large", &Asset{URI: "scan.png", SizeBytes: 11_000_000, MIMEType: "image/png"}, domain.ErrDocumentTooLarge},
		{"too large wins over type", &Asset{URI: "scan.gif", SizeBytes: 11_000_000, MIMEType: "image/gif"}, domain.ErrDocumentTooLarge},
		{"unsupported type", &Asset{URI: "scan.gif", SizeBytes: 1000, MIMEType: "image/gif"}, domain.ErrUnsupportedType},
		{"png under limit", &Asset{URI: "scan.png", SizeBytes: 9_000_000, MIMEType: "image/png"}, nil},
		{"exactly 10 MiB", &Asset{URI: "scan.jpg", SizeBytes: MaxSizeBytes, MIMEType: "image/jpeg"}, nil},
		{"image/jpg alias", &Asset{URI: "scan.jpg", MIMEType: "image/jpg"}, nil},
		{"pdf", &Asset{URI: "lab.pdf", MIMEType: "application/pdf", Kind: KindPDF}, nil},
		{"unknown size and type", &Asset{URI: "content://capture/1"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.asset)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	asset := &Asset{URI: "scan.png", SizeBytes: 11_000_000, MIMEType: "image/png"}
	first := Validate(asset)
	second := Validate(asset)

	assert.Equal(t, first.Error(), second.Error())
	assert.Equal(t, int64(11_000_000), asset.SizeBytes)
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "scan.PNG")
	require.NoError(t, os.WriteFile(png, []byte("not really a png"), 0o644))

	asset, err := FromPath(png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.MIMEType)
	assert.Equal(t, int64(16), asset.SizeBytes)
	assert.Equal(t, KindImage, asset.Kind)
	assert.Equal(t, "scan.PNG", asset.Name())

	pdf := filepath.Join(dir, "labs")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7\n"), 0o644))

	asset, err = FromPath(pdf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", asset.MIMEType)
	assert.Equal(t, KindPDF, asset.Kind)

	txt := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(txt, []byte("plain words"), 0o644))

	asset, err = FromPath(txt)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", asset.MIMEType)
	assert.ErrorIs(t, Validate(asset), domain.ErrUnsupportedType)
}

func TestFromPathErrors(t *testing.T) {
	_, err := FromPath("")
	assert.ErrorIs(t, err, domain.ErrNoDocumentSelected)

	_, err = FromPath(filepath.Join(t.TempDir(), "gone.jpg"))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	_, err = FromPath(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoDocumentSelected)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 bytes"},
		{512, "512 bytes"},
		{1024, "1.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestRemove(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	path := filepath.Join(t.TempDir(), "derived.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	Remove(path, logger)
	assert.False(t, Exists(path))
	assert.Equal(t, "debug", gjson.Get(buf.String(), "level").String())
	buf.Reset()

	// Missing files and empty paths are silently skipped.
	Remove(path, logger)
	Remove("", logger)
	assert.Empty(t, buf.String())
}

func TestRemoveFailureIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	path := filepath.Join(t.TempDir(), "derived.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	orig := removeFile
	removeFile = func(string) error { return errors.New("device busy") }
	t.Cleanup(func() { removeFile = orig })

	assert.NotPanics(t, func() { Remove(path, logger) })
	assert.True(t, Exists(path))

	line := buf.String()
	assert.Equal(t, "warn", gjson.Get(line, "level").String())
	assert.Equal(t, "device busy", gjson.Get(line, "error").String())
	assert.Equal(t, path, gjson.Get(line, "path").String())
}

func TestRemoveAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.jpg", "b.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		paths = append(paths, p)
	}

	RemoveAll(paths, zerolog.Nop())

	for _, p := range paths {
		assert.False(t, Exists(p))
	}
}
