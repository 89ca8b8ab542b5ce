// Package qa answers follow-up questions about a translated document while
// keeping the model inside the document's content.
package qa

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"medclarify/clarify"
)

// Role is who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session. Local turns are shown to the patient but
// never sent upstream.
type Turn struct {
	Role    Role
	Content string
	Local   bool
	At      time.Time
}

// Session is the ordered turn history for one open document. Turns are only
// ever appended; methods that add turns return a new Session and leave the
// receiver untouched.
type Session struct {
	ID       string
	Document clarify.DocumentContext
	Started  time.Time
	turns    []Turn
}

// NewSession starts a session for doc, seeded with the greeting.
func NewSession(doc clarify.DocumentContext) *Session {
	now := time.Now()
	return &Session{
		ID:       uuid.NewString(),
		Document: doc,
		Started:  now,
		turns: []Turn{
			{Role: RoleAssistant, Content: Greeting, Local: true, At: now},
		},
	}
}

// Turns returns a copy of every turn, greeting included.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	return len(s.turns)
}

// Last returns the most recent turn.
func (s *Session) Last() Turn {
	return s.turns[len(s.turns)-1]
}

// History renders the upstream-visible turns as Patient:/Assistant: lines.
func (s *Session) History() string {
	lines := make([]string, 0, len(s.turns))
	for _, t := range s.turns {
		if t.Local {
			continue
		}
		speaker := "Assistant"
		if t.Role == RoleUser {
			speaker = "Patient"
		}
		lines = append(lines, speaker+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// WithExchange returns a copy of s with a question and its answer appended.
func (s *Session) WithExchange(question, answer string) *Session {
	return s.with(
		Turn{Role: RoleUser, Content: question},
		Turn{Role: RoleAssistant, Content: answer},
	)
}

// WithNotice returns a copy of s with a failed question and a notice shown in
// place of the answer. Both turns are local.
func (s *Session) WithNotice(question, notice string) *Session {
	return s.with(
		Turn{Role: RoleUser, Content: question, Local: true},
		Turn{Role: RoleAssistant, Content: notice, Local: true},
	)
}

func (s *Session) with(turns ...Turn) *Session {
	now := time.Now()
	next := *s
	next.turns = make([]Turn, len(s.turns), len(s.turns)+len(turns))
	copy(next.turns, s.turns)
	for _, t := range turns {
		t.At = now
		next.turns = append(next.turns, t)
	}
	return &next
}
