package clarify

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"medclarify/domain"
)

// Urgency tags a section. Anything unrecognized is UrgencyNormal.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyImportant Urgency = "important"
	UrgencyUrgent    Urgency = "urgent"
)

// ParseUrgency normalizes a model-provided urgency tag.
func ParseUrgency(s string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case UrgencyUrgent:
		return UrgencyUrgent
	case UrgencyImportant:
		return UrgencyImportant
	default:
		return UrgencyNormal
	}
}

// Label is the badge text for the urgency.
func (u Urgency) Label() string {
	switch u {
	case UrgencyUrgent:
		return "URGENT"
	case UrgencyImportant:
		return "Important"
	default:
		return "Normal"
	}
}

// ConfidenceLevel buckets a 0-100 confidence score.
type ConfidenceLevel int

const (
	ConfidenceLow ConfidenceLevel = iota
	ConfidenceMedium
	ConfidenceHigh
)

// LevelFor returns the bucket for a confidence score.
func LevelFor(confidence int) ConfidenceLevel {
	switch {
	case confidence >= 80:
		return ConfidenceHigh
	case confidence >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (l ConfidenceLevel) Label() string {
	switch l {
	case ConfidenceHigh:
		return "High Confidence"
	case ConfidenceMedium:
		return "Medium Confidence"
	default:
		return "Low Confidence - Verify with Doctor"
	}
}

// KeyTerm is a medical term with a plain-language definition.
type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Section is one part of the document in document order.
type Section struct {
	Title      string    `json:"title"`
	Original   string    `json:"original"`
	Simplified string    `json:"simplified"`
	Confidence int       `json:"confidence"`
	Urgency    Urgency   `json:"urgency"`
	KeyTerms   []KeyTerm `json:"keyTerms"`
}

// TranslationResult is the structured translation of one document.
type TranslationResult struct {
	DocumentType   string    `json:"documentType"`
	Sections       []Section `json:"simplifiedSections"`
	ActionItems    []string  `json:"actionItems"`
	OverallSummary string    `json:"overallSummary"`
	Uncertainties  []string  `json:"uncertainties"`
}

// DocumentContext is the part of a translation handed to follow-up questions.
type DocumentContext struct {
	DocumentType string    `json:"documentType"`
	Sections     []Section `json:"sections"`
	Summary      string    `json:"summary"`
	ActionItems  []string  `json:"actionItems"`
}

// Context derives the follow-up question context from the result.
func (r *TranslationResult) Context() DocumentContext {
	return DocumentContext{
		DocumentType: r.DocumentType,
		Sections:     r.Sections,
		Summary:      r.OverallSummary,
		ActionItems:  r.ActionItems,
	}
}

// HasUrgent reports whether any section is tagged urgent.
func (r *TranslationResult) HasUrgent() bool {
	for _, s := range r.Sections {
		if s.Urgency == UrgencyUrgent {
			return true
		}
	}
	return false
}

// JSON serializes the context compactly for inclusion in a prompt.
func (c DocumentContext) JSON() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type wireSection struct {
	Title      *string         `json:"title"`
	Original   string          `json:"original"`
	Simplified *string         `json:"simplified"`
	Confidence json.RawMessage `json:"confidence"`
	Urgency    string          `json:"urgency"`
	KeyTerms   []KeyTerm       `json:"keyTerms"`
}

type wireResult struct {
	DocumentType   *string       `json:"documentType"`
	Sections       []wireSection `json:"simplifiedSections"`
	ActionItems    []string      `json:"actionItems"`
	OverallSummary *string       `json:"overallSummary"`
	Uncertainties  []string      `json:"uncertainties"`
}

// ParseTranslation parses model output into a TranslationResult. Surrounding
// markdown code fences are tolerated. Missing critical fields (document type,
// summary, section title or simplified text) fail closed; missing optional
// arrays become empty.
func ParseTranslation(text string) (*TranslationResult, error) {
	cleaned := cleanJSONResponse(text)
	if cleaned == "" {
		return nil, domain.MalformedOutputError("response is empty", nil)
	}

	var w wireResult
	if err := json.Unmarshal([]byte(cleaned), &w); err != nil {
		return nil, domain.MalformedOutputError("response is not valid JSON", err)
	}

	if w.DocumentType == nil || strings.TrimSpace(*w.DocumentType) == "" {
		return nil, domain.MalformedOutputError("response is missing documentType", nil)
	}
	if w.OverallSummary == nil || strings.TrimSpace(*w.OverallSummary) == "" {
		return nil, domain.MalformedOutputError("response is missing overallSummary", nil)
	}

	result := &TranslationResult{
		DocumentType:   strings.TrimSpace(*w.DocumentType),
		Sections:       make([]Section, 0, len(w.Sections)),
		ActionItems:    nonNil(w.ActionItems),
		OverallSummary: *w.OverallSummary,
		Uncertainties:  nonNil(w.Uncertainties),
	}

	for i, ws := range w.Sections {
		if ws.Title == nil {
			return nil, domain.MalformedOutputError("section "+strconv.Itoa(i+1)+" is missing title", nil)
		}
		if ws.Simplified == nil {
			return nil, domain.MalformedOutputError("section "+strconv.Itoa(i+1)+" is missing simplified text", nil)
		}

		terms := make([]KeyTerm, 0, len(ws.KeyTerms))
		for _, kt := range ws.KeyTerms {
			if strings.TrimSpace(kt.Term) != "" {
				terms = append(terms, kt)
			}
		}

		result.Sections = append(result.Sections, Section{
			Title:      *ws.Title,
			Original:   ws.Original,
			Simplified: *ws.Simplified,
			Confidence: parseConfidence(ws.Confidence),
			Urgency:    ParseUrgency(ws.Urgency),
			KeyTerms:   terms,
		})
	}

	return result, nil
}

// parseConfidence accepts a number or a numeric string (optionally with a
// percent sign), rounds it and clamps it to [0,100]. Anything else is 0.
func parseConfidence(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}

	switch {
	case math.IsNaN(f):
		return 0
	case f > 100:
		return 100
	case f < 0:
		return 0
	}
	return int(math.Round(f))
}

// ClampConfidence limits c to [0,100].
func ClampConfidence(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}

// cleanJSONResponse removes markdown code blocks if present
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
