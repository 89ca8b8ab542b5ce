package document

import (
	"os"

	"github.com/rs/zerolog"
)

// removeFile deletes a file; tests replace it to simulate failures
var removeFile = os.Remove

// Exists reports whether a regular file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a temporary file if it is still there. Failures are logged
// and otherwise ignored; cleanup never fails a workflow.
func Remove(path string, logger zerolog.Logger) {
	if path == "" || !Exists(path) {
		return
	}
	if err := removeFile(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to delete document")
		return
	}
	logger.Debug().Str("path", path).Msg("deleted temporary document")
}

// RemoveAll deletes every path in paths using Remove.
func RemoveAll(paths []string, logger zerolog.Logger) {
	for _, p := range paths {
		Remove(p, logger)
	}
}
