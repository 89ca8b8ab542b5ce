package clarify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportOptions configures markdown output
type ExportOptions struct {
	// Overwrite allows overwriting existing files
	Overwrite bool

	// AddFrontMatter adds YAML front matter to the markdown file
	AddFrontMatter bool

	// Source names the document the translation came from
	Source string

	// Generated is the timestamp written to the front matter (now when zero)
	Generated time.Time
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Source      string `yaml:"source,omitempty"`
	Generated   string `yaml:"generated"`
	Sections    int    `yaml:"sections"`
	Urgent      bool   `yaml:"urgent"`
	ActionItems int    `yaml:"action_items"`
	Disclaimer  string `yaml:"disclaimer"`
}

// BuildMarkdown renders a translation as a markdown document.
func BuildMarkdown(r *TranslationResult, opts ExportOptions) (string, error) {
	var sb strings.Builder

	if opts.AddFrontMatter {
		generated := opts.Generated
		if generated.IsZero() {
			generated = time.Now()
		}
		fm, err := yaml.Marshal(frontMatter{
			Title:       r.DocumentType,
			Source:      opts.Source,
			Generated:   generated.Format(time.RFC3339),
			Sections:    len(r.Sections),
			Urgent:      r.HasUrgent(),
			ActionItems: len(r.ActionItems),
			Disclaimer:  Disclaimer,
		})
		if err != nil {
			return "", fmt.Errorf("failed to build front matter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", r.DocumentType))
	sb.WriteString(fmt.Sprintf("> %s\n\n", Disclaimer))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(strings.TrimSpace(r.OverallSummary))
	sb.WriteString("\n\n")

	if len(r.ActionItems) > 0 {
		sb.WriteString("## Action Items\n\n")
		for _, item := range r.ActionItems {
			sb.WriteString(fmt.Sprintf("- [ ] %s\n", item))
		}
		sb.WriteString("\n")
	}

	if len(r.Uncertainties) > 0 {
		sb.WriteString("## Areas to Clarify with Your Doctor\n\n")
		for _, item := range r.Uncertainties {
			sb.WriteString(fmt.Sprintf("- %s\n", item))
		}
		sb.WriteString("\n")
	}

	if len(r.Sections) > 0 {
		sb.WriteString("## Detailed Breakdown\n\n")
	}
	for _, s := range r.Sections {
		sb.WriteString(fmt.Sprintf("### %s\n\n", s.Title))
		sb.WriteString(fmt.Sprintf("**%s** · %s (%d%%)\n\n", s.Urgency.Label(), LevelFor(s.Confidence).Label(), s.Confidence))
		sb.WriteString(strings.TrimSpace(s.Simplified))
		sb.WriteString("\n\n")

		if original := strings.TrimSpace(s.Original); original != "" {
			for _, line := range strings.Split(original, "\n") {
				sb.WriteString("> " + line + "\n")
			}
			sb.WriteString("\n")
		}

		if len(s.KeyTerms) > 0 {
			sb.WriteString("**Key terms**\n\n")
			for _, kt := range s.KeyTerms {
				sb.WriteString(fmt.Sprintf("- **%s**: %s\n", kt.Term, kt.Definition))
			}
			sb.WriteString("\n")
		}
	}

	content := sb.String()
	content = strings.TrimRight(content, "\n") + "\n"
	return content, nil
}

// WriteMarkdown writes the translation to path and returns the number of
// bytes written.
func WriteMarkdown(path string, r *TranslationResult, opts ExportOptions) (int64, error) {
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return 0, fmt.Errorf("file exists: %s (use --overwrite to replace)", path)
		}
	}

	content, err := BuildMarkdown(r, opts)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return int64(len(content)), nil
}

// WriteJSON writes the translation as indented JSON.
func WriteJSON(w io.Writer, r *TranslationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// SuggestedFilename derives a markdown file name from the document type.
func SuggestedFilename(r *TranslationResult) string {
	return sanitizeFilename(r.DocumentType) + ".md"
}

// sanitizeFilename creates a safe filename from a title
func sanitizeFilename(title string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	result := replacer.Replace(title)

	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.Trim(result, "_")

	if runes := []rune(result); len(runes) > 50 {
		result = strings.TrimRight(string(runes[:50]), "_")
	}
	if result == "" {
		result = "document"
	}

	return strings.ToLower(result)
}
