package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medclarify/claude"
	"medclarify/domain"
	"medclarify/qa"
)

// Asker answers a question about a session's document.
type Asker interface {
	Ask(ctx context.Context, s *qa.Session, question string) (*qa.Session, error)
}

// ChatModel is the Bubble Tea model for follow-up questions about one
// document. Only one question is in flight at a time.
type ChatModel struct {
	asker   Asker
	session *qa.Session
	title   string

	// UI Components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	feed     *ActivityFeed
	events   <-chan claude.Event

	pending      bool
	errorMessage string

	// Dimensions
	width  int
	height int

	quitting bool

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
}

// answerMsg is sent when a question completes
type answerMsg struct {
	question string
	session  *qa.Session
	err      error
}

// ChatOption configures a ChatModel
type ChatOption func(*ChatModel)

// WithActivity shows an activity feed fed from events. Events buffered
// before the chat opens are dropped.
func WithActivity(events <-chan claude.Event, model string) ChatOption {
	return func(m *ChatModel) {
		drainActivity(events)
		m.events = events
		m.feed = NewActivityFeed(m.width-4, 5, model)
	}
}

// WithChatTitle sets the header shown above the conversation.
func WithChatTitle(title string) ChatOption {
	return func(m *ChatModel) {
		m.title = title
	}
}

// NewChatModel creates a chat over session.
func NewChatModel(asker Asker, session *qa.Session, opts ...ChatOption) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about your document..."
	ti.CharLimit = 500
	ti.Width = 70
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"·  ", "·· ", "···", " ··", "  ·", "   "},
		FPS:    time.Second / 8,
	}
	s.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	ctx, cancel := context.WithCancel(context.Background())

	m := ChatModel{
		asker:    asker,
		session:  session,
		title:    "Ask About Your Document",
		input:    ti,
		viewport: viewport.New(76, 14),
		spinner:  s,
		width:    80,
		height:   24,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		listenActivity(m.ctx, m.events),
	)
}

// Update handles messages
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case answerMsg:
		m.pending = false
		if msg.err != nil {
			m.session = m.session.WithNotice(msg.question, qa.ErrorNotice)
			m.errorMessage = domain.UserMessage(msg.err)
		} else {
			m.session = msg.session
			m.errorMessage = ""
		}
		m.refresh()
		return m, nil

	case activityMsg:
		if m.feed != nil {
			m.feed.AddEvent(claude.Event(msg))
		}
		return m, listenActivity(m.ctx, m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// submit sends the typed question unless it is blank or another question
// is still pending.
func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.pending {
		return m, nil
	}

	m.pending = true
	m.errorMessage = ""
	m.input.Reset()
	m.refresh()

	asker, session, ctx := m.asker, m.session, m.ctx
	return m, func() tea.Msg {
		next, err := asker.Ask(ctx, session, question)
		return answerMsg{question: question, session: next, err: err}
	}
}

func (m *ChatModel) resize() {
	m.viewport.Width = m.width - 4
	h := m.height - 12
	if m.feed != nil {
		m.feed.SetSize(m.width-4, 5)
		h -= 8
	}
	if h < 5 {
		h = 5
	}
	m.viewport.Height = h
	m.input.Width = m.width - 10
	m.refresh()
}

// refresh re-renders the conversation into the viewport
func (m *ChatModel) refresh() {
	m.viewport.SetContent(renderTurns(m.session.Turns(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderTurns(turns []qa.Turn, width int) string {
	if width < 20 {
		width = 20
	}

	userLabel := lipgloss.NewStyle().Bold(true).Foreground(ColorSecondary)
	botLabel := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	text := lipgloss.NewStyle().Foreground(ColorText).Width(width - 2).PaddingLeft(2)

	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		label := botLabel.Render("MedClarify")
		if t.Role == qa.RoleUser {
			label = userLabel.Render("You")
		}
		body := text.Render(t.Content)
		if t.Local && t.Content == qa.ErrorNotice {
			body = text.Foreground(ColorError).Render(t.Content)
		}
		blocks = append(blocks, label+"\n"+body)
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the UI
func (m ChatModel) View() string {
	if m.quitting {
		return MutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(DisclaimerBanner(m.width - 4))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.pending {
		b.WriteString(m.spinner.View() + " " + MutedStyle.Render("Looking through your document..."))
		b.WriteString("\n")
	} else if m.errorMessage != "" {
		b.WriteString(ErrorStyle.Render("! " + m.errorMessage))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.feed != nil {
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render("API activity"))
		b.WriteString("\n")
		b.WriteString(m.feed.View())
		b.WriteString("\n")
	}

	b.WriteString(KeyHelp(
		KeyBinding{"enter", "ask"},
		KeyBinding{"pgup/pgdn", "scroll"},
		KeyBinding{"esc", "done"},
	))

	return b.String()
}

// Session returns the current session
func (m ChatModel) Session() *qa.Session { return m.session }

// IsPending reports whether a question is in flight
func (m ChatModel) IsPending() bool { return m.pending }

// IsQuitting reports whether the user left the chat
func (m ChatModel) IsQuitting() bool { return m.quitting }
