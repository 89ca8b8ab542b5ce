package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"medclarify/clarify"
)

// UrgencyColor returns the color used for an urgency tag.
func UrgencyColor(u clarify.Urgency) lipgloss.AdaptiveColor {
	switch u {
	case clarify.UrgencyUrgent:
		return ColorError
	case clarify.UrgencyImportant:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// ConfidenceColor returns the color used for a confidence score.
func ConfidenceColor(confidence int) lipgloss.AdaptiveColor {
	switch clarify.LevelFor(confidence) {
	case clarify.ConfidenceHigh:
		return ColorSuccess
	case clarify.ConfidenceMedium:
		return ColorWarning
	default:
		return ColorError
	}
}

// UrgencyBadge renders the urgency label as a colored badge.
func UrgencyBadge(u clarify.Urgency) string {
	switch u {
	case clarify.UrgencyUrgent:
		return BadgeErrorStyle.Render(u.Label())
	case clarify.UrgencyImportant:
		return BadgeWarningStyle.Render(u.Label())
	default:
		return BadgeSuccessStyle.Render(u.Label())
	}
}

// ConfidenceIndicator renders the confidence label, score and a bar.
func ConfidenceIndicator(confidence int) string {
	confidence = clarify.ClampConfidence(confidence)
	color := ConfidenceColor(confidence)

	label := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(clarify.LevelFor(confidence).Label())

	return label + "  " + ProgressBar(confidence, 100, 20, color)
}

// DisclaimerBanner renders the not-medical-advice banner.
func DisclaimerBanner(width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorWarning).
		Foreground(ColorWarning).
		PaddingLeft(1).
		Width(width).
		Render("⚠️  " + clarify.Disclaimer)
}

// RenderTranslation renders a full translation: document type, summary,
// action items, uncertainties and the section breakdown.
func RenderTranslation(r *clarify.TranslationResult, width int) string {
	if width < 40 {
		width = 40
	}

	var b strings.Builder

	b.WriteString(DisclaimerBanner(width))
	b.WriteString("\n\n")

	b.WriteString(MutedStyle.Render("Document Type"))
	b.WriteString("\n")
	header := TitleStyle.Render(r.DocumentType)
	if r.HasUrgent() {
		header += " " + UrgencyBadge(clarify.UrgencyUrgent)
	}
	b.WriteString(header)
	b.WriteString("\n")

	b.WriteString(Card("Summary", r.OverallSummary, width))
	b.WriteString("\n")

	if len(r.ActionItems) > 0 {
		b.WriteString(Card("⚡ Action Items", bulletList(r.ActionItems, "→"), width))
		b.WriteString("\n")
	}

	if len(r.Uncertainties) > 0 {
		b.WriteString(Card("⚠️ Areas to Clarify with Your Doctor", bulletList(r.Uncertainties, "?"), width))
		b.WriteString("\n")
	}

	if len(r.Sections) > 0 {
		b.WriteString("\n")
		b.WriteString(SubtitleStyle.Render("Detailed Breakdown"))
		b.WriteString("\n")
		for _, s := range r.Sections {
			b.WriteString(RenderSection(s, width))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderSection renders one section card.
func RenderSection(s clarify.Section, width int) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText)

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title) + " " + UrgencyBadge(s.Urgency))
	b.WriteString("\n")
	b.WriteString(ConfidenceIndicator(s.Confidence))
	b.WriteString("\n\n")
	b.WriteString(BodyStyle.Render(s.Simplified))

	if original := strings.TrimSpace(s.Original); original != "" {
		b.WriteString("\n\n")
		b.WriteString(MutedStyle.Render("Original: " + original))
	}

	if len(s.KeyTerms) > 0 {
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Bold(true).Render("Key Terms"))
		for _, kt := range s.KeyTerms {
			b.WriteString("\n")
			b.WriteString(InfoStyle.Render(kt.Term) + MutedStyle.Render(": ") + BodyStyle.Render(kt.Definition))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(UrgencyColor(s.Urgency)).
		Padding(0, 2).
		Width(width).
		Render(b.String())
}

func bulletList(items []string, bullet string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s %s", bullet, item)
	}
	return strings.Join(lines, "\n")
}
