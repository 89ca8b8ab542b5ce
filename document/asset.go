// Package document describes the patient-provided documents that enter the
// pipeline and the checks they must pass before any network call.
package document

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"medclarify/domain"
)

// Kind is the broad class of a document.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Asset is a document handed over by a camera or picker. It is never mutated
// by the pipeline; every transform produces a new file.
type Asset struct {
	URI       string
	MIMEType  string // empty when unknown
	SizeBytes int64  // 0 when unknown
	Kind      Kind
}

// Name returns the base file name of the asset.
func (a *Asset) Name() string {
	return filepath.Base(a.URI)
}

// FromPath inspects a local file and builds an Asset from it. The MIME type is
// taken from the extension and falls back to content sniffing.
func FromPath(path string) (*Asset, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ValidationError("no path given", domain.ErrNoDocumentSelected)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ValidationError(fmt.Sprintf("%s does not exist", path), domain.ErrSourceUnavailable)
		}
		return nil, fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return nil, domain.ValidationError(fmt.Sprintf("%s is a directory, not a file", path), domain.ErrNoDocumentSelected)
	}

	mimeType := MIMETypeForExt(filepath.Ext(path))
	if mimeType == "" {
		mimeType, err = sniff(path)
		if err != nil {
			return nil, err
		}
	}

	return &Asset{
		URI:       path,
		MIMEType:  mimeType,
		SizeBytes: info.Size(),
		Kind:      KindFor(mimeType),
	}, nil
}

// MIMETypeForExt returns the MIME type for a document extension, or "" when
// the extension is not recognized.
func MIMETypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".heic":
		return "image/heic"
	default:
		return ""
	}
}

// KindFor maps a MIME type onto a document kind.
func KindFor(mimeType string) Kind {
	if mimeType == "application/pdf" {
		return KindPDF
	}
	return KindImage
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := http.DetectContentType(head[:n])
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType, nil
}

// FormatSize formats a byte size as a human-readable string
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
