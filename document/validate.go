package document

import (
	"strings"

	"medclarify/domain"
)

// MaxSizeBytes is the largest document accepted (10 MiB).
const MaxSizeBytes = 10 * 1024 * 1024

// SupportedMIMETypes lists the document types the pipeline accepts.
var SupportedMIMETypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/jpg",
	"image/png",
}

// Validate checks an asset's metadata before any work is done on it. Rules
// run in order and the first failure wins; unknown size or type is not an
// error. It touches neither disk nor network.
func Validate(asset *Asset) error {
	if asset == nil || strings.TrimSpace(asset.URI) == "" {
		return domain.ValidationError("No document selected", domain.ErrNoDocumentSelected)
	}

	if asset.SizeBytes > MaxSizeBytes {
		return domain.ValidationError(
			"Document is too large. Please select a file smaller than 10MB.",
			domain.ErrDocumentTooLarge,
		)
	}

	if asset.MIMEType != "" && !IsSupported(asset.MIMEType) {
		return domain.ValidationError(
			"Unsupported file type. Please select a PDF or image file (JPEG, PNG).",
			domain.ErrUnsupportedType,
		)
	}

	return nil
}

// IsSupported reports whether mimeType is one of SupportedMIMETypes.
func IsSupported(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, supported := range SupportedMIMETypes {
		if mimeType == supported {
			return true
		}
	}
	return false
}
