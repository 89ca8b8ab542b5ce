package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"medclarify/clarify"
	"medclarify/claude"
	"medclarify/domain"
	"medclarify/qa"
)

// fakeAsker answers with a canned reply or error and counts calls
type fakeAsker struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (f *fakeAsker) Ask(_ context.Context, s *qa.Session, question string) (*qa.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return s.WithExchange(question, f.answer), nil
}

func newSession() *qa.Session {
	return qa.NewSession(clarify.DocumentContext{DocumentType: "Lab Results", Summary: "All normal."})
}

func typeText(m ChatModel, text string) ChatModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(ChatModel)
}

func pressEnter(m ChatModel) (ChatModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(ChatModel), cmd
}

func TestNewChatModel(t *testing.T) {
	m := NewChatModel(&fakeAsker{}, newSession())

	if m.width != 80 || m.height != 24 {
		t.Errorf("unexpected default size %dx%d", m.width, m.height)
	}
	if m.pending {
		t.Error("new chat should not be pending")
	}
	if m.Init() == nil {
		t.Error("Expected Init to return a non-nil command")
	}
	if !strings.Contains(m.View(), "Hi! I can help answer questions") {
		t.Error("View should show the greeting")
	}
	if !strings.Contains(m.View(), "This is not medical advice") {
		t.Error("View should show the disclaimer")
	}
}

func TestChatAsk(t *testing.T) {
	asker := &fakeAsker{answer: "HbA1c measures average blood sugar."}
	m := NewChatModel(asker, newSession())

	m = typeText(m, "What is HbA1c?")
	m, cmd := pressEnter(m)

	if !m.IsPending() {
		t.Fatal("Expected a pending question after enter")
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.input.Value())
	}
	if cmd == nil {
		t.Fatal("Expected a command to send the question")
	}

	next, _ := m.Update(cmd())
	m = next.(ChatModel)

	if m.IsPending() {
		t.Error("should not be pending after the answer")
	}
	if m.Session().Len() != 3 {
		t.Errorf("Expected 3 turns, got %d", m.Session().Len())
	}
	if m.Session().Last().Content != "HbA1c measures average blood sugar." {
		t.Errorf("unexpected last turn %q", m.Session().Last().Content)
	}
	if !strings.Contains(m.viewport.View(), "HbA1c measures average blood sugar.") {
		t.Error("answer should be rendered")
	}
}

func TestChatIgnoresBlankAndPending(t *testing.T) {
	asker := &fakeAsker{answer: "ok"}
	m := NewChatModel(asker, newSession())

	m = typeText(m, "   ")
	m, cmd := pressEnter(m)
	if cmd != nil || m.IsPending() {
		t.Error("blank input should be ignored")
	}

	m = typeText(m, "first")
	m, cmd = pressEnter(m)
	if cmd == nil {
		t.Fatal("Expected first question to be sent")
	}

	m = typeText(m, "second")
	m, second := pressEnter(m)
	if second != nil {
		t.Error("a second question must not be sent while one is pending")
	}
	if m.input.Value() != "second" {
		t.Errorf("pending input should be kept, got %q", m.input.Value())
	}

	next, _ := m.Update(cmd())
	m = next.(ChatModel)
	if asker.calls != 1 {
		t.Errorf("Expected exactly 1 call, got %d", asker.calls)
	}
}

func TestChatFailureShowsNotice(t *testing.T) {
	asker := &fakeAsker{err: domain.RateLimitedError(429, "slow down")}
	m := NewChatModel(asker, newSession())

	m = typeText(m, "What is eGFR?")
	m, cmd := pressEnter(m)
	next, _ := m.Update(cmd())
	m = next.(ChatModel)

	turns := m.Session().Turns()
	if len(turns) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(turns))
	}
	if turns[1].Content != "What is eGFR?" || !turns[1].Local {
		t.Errorf("failed question should be kept locally: %+v", turns[1])
	}
	if turns[2].Content != qa.ErrorNotice || !turns[2].Local {
		t.Errorf("notice should follow the question: %+v", turns[2])
	}
	if m.Session().History() != "" {
		t.Errorf("failed exchange must not reach upstream history, got %q", m.Session().History())
	}
	if !strings.Contains(m.View(), "The service is busy right now") {
		t.Error("View should show the error message")
	}
}

func TestChatQuit(t *testing.T) {
	m := NewChatModel(&fakeAsker{}, newSession())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(ChatModel)

	if !m.IsQuitting() {
		t.Error("esc should quit")
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel in-flight requests")
	}
}

func TestChatWindowResize(t *testing.T) {
	m := NewChatModel(&fakeAsker{}, newSession())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(ChatModel)

	if m.width != 120 || m.height != 40 {
		t.Errorf("size not applied: %dx%d", m.width, m.height)
	}
	if m.viewport.Width != 116 || m.viewport.Height != 28 {
		t.Errorf("viewport not resized: %dx%d", m.viewport.Width, m.viewport.Height)
	}
}

func TestChatActivityFeed(t *testing.T) {
	events, observe := ActivityChannel(4)
	m := NewChatModel(&fakeAsker{}, newSession(), WithActivity(events, "claude-test"), WithChatTitle("Lab Results"))

	observe(claude.Event{Kind: claude.EventAttempt, Attempt: 1, Time: time.Now()})

	cmd := listenActivity(m.ctx, events)
	next, again := m.Update(cmd())
	m = next.(ChatModel)

	if again == nil {
		t.Error("should keep listening for activity")
	}
	if len(m.feed.Entries) != 1 {
		t.Fatalf("Expected 1 feed entry, got %d", len(m.feed.Entries))
	}
	view := m.View()
	if !strings.Contains(view, "REQUEST to Claude (claude-test)") {
		t.Error("feed entry should be rendered")
	}
	if !strings.Contains(view, "Lab Results") {
		t.Error("title should be rendered")
	}
}

func TestChatDropsStaleActivity(t *testing.T) {
	events, observe := ActivityChannel(4)
	observe(claude.Event{Kind: claude.EventAttempt})
	observe(claude.Event{Kind: claude.EventResponse})

	m := NewChatModel(&fakeAsker{}, newSession(), WithActivity(events, "claude-test"))

	if len(events) != 0 {
		t.Errorf("Expected buffered events to be dropped, %d left", len(events))
	}
	if len(m.feed.Entries) != 0 {
		t.Errorf("Expected an empty feed, got %d entries", len(m.feed.Entries))
	}
}

func TestChatQuitReleasesActivityListener(t *testing.T) {
	events, observe := ActivityChannel(4)
	m := NewChatModel(&fakeAsker{}, newSession(), WithActivity(events, "claude-test"))
	cmd := listenActivity(m.ctx, events)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if msg != nil {
			t.Errorf("Expected nil message after quit, got %#v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener still blocked after quit")
	}

	// The next event stays available for the next chat
	observe(claude.Event{Kind: claude.EventAttempt})
	if len(events) != 1 {
		t.Errorf("Expected the event to stay buffered, got %d", len(events))
	}
}
