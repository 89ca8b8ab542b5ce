package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medclarify/claude"
)

// ActivityEntry is one line of the API activity feed.
type ActivityEntry struct {
	Timestamp time.Time
	Kind      claude.EventKind
	Title     string
	Detail    string
}

// ActivityFeed shows what the client is doing: attempts, retries, responses
// and failures.
type ActivityFeed struct {
	// Entries in the feed
	Entries []ActivityEntry

	// Viewport for scrolling
	Viewport viewport.Model

	// Model name shown in request lines
	Model string

	// MaxEntries limits the number of entries kept (0 = unlimited)
	MaxEntries int
}

// NewActivityFeed creates a feed with the given dimensions
func NewActivityFeed(width, height int, model string) *ActivityFeed {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	f := &ActivityFeed{
		Viewport:   vp,
		Model:      model,
		MaxEntries: 100,
	}
	f.Viewport.SetContent(f.Render())
	return f
}

// AddEvent translates a client event into a feed entry.
func (f *ActivityFeed) AddEvent(e claude.Event) {
	entry := ActivityEntry{Timestamp: e.Time, Kind: e.Kind}

	switch e.Kind {
	case claude.EventAttempt:
		entry.Title = "REQUEST to Claude"
		if f.Model != "" {
			entry.Title += fmt.Sprintf(" (%s)", f.Model)
		}
		if e.Attempt > 1 {
			entry.Detail = fmt.Sprintf("attempt %d", e.Attempt)
		}
	case claude.EventRetry:
		entry.Title = fmt.Sprintf("Retrying in %s", e.Delay)
		entry.Detail = truncateString(e.Message, 80)
	case claude.EventResponse:
		entry.Title = fmt.Sprintf("RESPONSE from Claude (%.1fs)", e.Elapsed.Seconds())
		if total := e.Usage.InputTokens + e.Usage.OutputTokens; total > 0 {
			entry.Detail = fmt.Sprintf("%d tokens", total)
		}
	case claude.EventFailure:
		entry.Title = "Request failed"
		entry.Detail = truncateString(e.Message, 80)
	default:
		entry.Title = string(e.Kind)
	}

	f.Add(entry)
}

// Add appends an entry and scrolls to it
func (f *ActivityFeed) Add(entry ActivityEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	f.Entries = append(f.Entries, entry)
	if f.MaxEntries > 0 && len(f.Entries) > f.MaxEntries {
		f.Entries = f.Entries[len(f.Entries)-f.MaxEntries:]
	}

	f.Viewport.SetContent(f.Render())
	f.Viewport.GotoBottom()
}

// SetSize updates the feed dimensions
func (f *ActivityFeed) SetSize(width, height int) {
	f.Viewport.Width = width
	f.Viewport.Height = height
	f.Viewport.SetContent(f.Render())
}

// View returns the viewport view for Bubble Tea
func (f *ActivityFeed) View() string {
	return f.Viewport.View()
}

// Render renders all entries to a string
func (f *ActivityFeed) Render() string {
	if len(f.Entries) == 0 {
		return MutedStyle.Render("  No API activity yet")
	}

	lines := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		lines = append(lines, renderEntry(e))
	}
	return strings.Join(lines, "\n")
}

func renderEntry(e ActivityEntry) string {
	icon, style := entryStyle(e.Kind)

	var suffix string
	if e.Detail != "" {
		if e.Kind == claude.EventFailure {
			suffix = " " + lipgloss.NewStyle().Foreground(ColorError).Render("- "+e.Detail)
		} else {
			suffix = " " + MutedStyle.Render("("+e.Detail+")")
		}
	}

	return fmt.Sprintf("%s %s %s%s",
		lipgloss.NewStyle().Foreground(ColorMuted).Render(e.Timestamp.Format("15:04:05")),
		style.Render(icon),
		style.Render(e.Title),
		suffix,
	)
}

func entryStyle(kind claude.EventKind) (string, lipgloss.Style) {
	switch kind {
	case claude.EventAttempt:
		return "[>]", lipgloss.NewStyle().Foreground(ColorSecondary)
	case claude.EventResponse:
		return "[<]", lipgloss.NewStyle().Foreground(ColorSuccess)
	case claude.EventRetry:
		return "[.]", lipgloss.NewStyle().Foreground(ColorWarning)
	case claude.EventFailure:
		return "[!]", lipgloss.NewStyle().Foreground(ColorError)
	default:
		return "[-]", lipgloss.NewStyle().Foreground(ColorPrimary)
	}
}

func truncateString(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// ActivityChannel returns a buffered event channel and an Observer that
// feeds it without ever blocking the client; events are dropped when the
// buffer is full.
func ActivityChannel(buffer int) (chan claude.Event, claude.Observer) {
	ch := make(chan claude.Event, buffer)
	return ch, func(e claude.Event) {
		select {
		case ch <- e:
		default:
		}
	}
}

// activityMsg carries one client event into a Bubble Tea program
type activityMsg claude.Event

// listenActivity waits for the next event on ch until ctx ends
func listenActivity(ctx context.Context, ch <-chan claude.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			return activityMsg(e)
		}
	}
}

// drainActivity discards events already buffered on ch
func drainActivity(ch <-chan claude.Event) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
