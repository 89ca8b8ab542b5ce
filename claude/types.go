// Package claude is the single point of contact with the Messages API. It
// owns authentication headers, retry policy and error classification.
package claude

import (
	"encoding/json"
	"time"
)

// Roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block types
const (
	BlockText  = "text"
	BlockImage = "image"
)

// ImageSource is inline image data.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ContentBlock is one part of a message's content.
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ImageBlock builds a base64 image content block.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{
		Type: BlockImage,
		Source: &ImageSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      data,
		},
	}
}

// Message is one conversation message. Its content is sent as a plain string
// unless Blocks is set.
type Message struct {
	Role   string
	Text   string
	Blocks []ContentBlock
}

// UserText builds a user message with string content.
func UserText(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// UserBlocks builds a user message with block content.
func UserBlocks(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Blocks: blocks}
}

func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Blocks) > 0 {
		return json.Marshal(struct {
			Role    string         `json:"role"`
			Content []ContentBlock `json:"content"`
		}{m.Role, m.Blocks})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{m.Role, m.Text})
}

// MessageRequest is the request body for the Messages API
type MessageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// Usage reports token counts
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// MessageResponse is the response body for the Messages API
type MessageResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// FirstText returns the text of the first content element. Callers treat it
// as the whole payload of the response.
func (r *MessageResponse) FirstText() (string, bool) {
	if r == nil || len(r.Content) == 0 {
		return "", false
	}
	return r.Content[0].Text, true
}

// EventKind identifies what happened during a Send call.
type EventKind string

const (
	EventAttempt  EventKind = "attempt"
	EventRetry    EventKind = "retry"
	EventResponse EventKind = "response"
	EventFailure  EventKind = "failure"
)

// Event describes one step of a Send call, for activity feeds.
type Event struct {
	Kind       EventKind
	Attempt    int
	StatusCode int
	Delay      time.Duration
	Elapsed    time.Duration
	Message    string
	Usage      Usage
	Time       time.Time
}

// Observer receives Events. It is called synchronously and must not block.
type Observer func(Event)
