package clarify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medclarify/claude"
	"medclarify/domain"
	"medclarify/imageprep"
)

// fakeSender records requests and replies with canned text or an error.
type fakeSender struct {
	text     string
	noText   bool
	err      error
	requests []*claude.MessageRequest
}

func (f *fakeSender) Send(_ context.Context, req *claude.MessageRequest) (*claude.MessageResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.noText {
		return &claude.MessageResponse{}, nil
	}
	return &claude.MessageResponse{Content: []claude.ContentBlock{claude.TextBlock(f.text)}}, nil
}

func TestTranslateFromText(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}
	tr := NewTranslator(sender, WithModel("claude-test"), WithMaxTokens(1234))

	r, err := tr.TranslateFromText(context.Background(), "HbA1c 6.9% (H)")
	require.NoError(t, err)
	assert.Equal(t, "Lab Results", r.DocumentType)

	require.Len(t, sender.requests, 1)
	req := sender.requests[0]
	assert.Equal(t, SystemPrompt, req.System)
	assert.Equal(t, "claude-test", req.Model)
	assert.Equal(t, 1234, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, claude.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "HbA1c 6.9% (H)", req.Messages[0].Text)
	assert.Empty(t, req.Messages[0].Blocks)
}

func TestTranslateFromTextRejectsEmpty(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}

	_, err := NewTranslator(sender).TranslateFromText(context.Background(), " \n\t")
	assert.ErrorIs(t, err, domain.ErrEmptyText)
	assert.Empty(t, sender.requests)
}

func TestTranslateFromImage(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}

	_, err := NewTranslator(sender).TranslateFromImage(context.Background(), &imageprep.Payload{
		Base64:    "QUJD",
		MediaType: "image/jpeg",
	})
	require.NoError(t, err)

	require.Len(t, sender.requests, 1)
	blocks := sender.requests[0].Messages[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, claude.BlockImage, blocks[0].Type)
	assert.Equal(t, "QUJD", blocks[0].Source.Data)
	assert.Equal(t, "image/jpeg", blocks[0].Source.MediaType)
	assert.Equal(t, claude.TextBlock(ImageInstruction), blocks[1])
}

func TestTranslateFromImageRejectsEmptyPayload(t *testing.T) {
	sender := &fakeSender{text: sampleJSON}
	tr := NewTranslator(sender)

	_, err := tr.TranslateFromImage(context.Background(), nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	_, err = tr.TranslateFromImage(context.Background(), &imageprep.Payload{})
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Empty(t, sender.requests)
}

func TestTranslateMalformedOutput(t *testing.T) {
	sender := &fakeSender{text: "{not json"}

	r, err := NewTranslator(sender).TranslateFromText(context.Background(), "text")
	assert.Nil(t, r)
	assert.True(t, domain.IsType(err, domain.ErrorTypeMalformedOutput))
	assert.Len(t, sender.requests, 1, "never re-asks on its own")
}

func TestTranslateNoContent(t *testing.T) {
	sender := &fakeSender{noText: true}

	_, err := NewTranslator(sender).TranslateFromText(context.Background(), "text")
	assert.True(t, domain.IsType(err, domain.ErrorTypeMalformedOutput))
}

func TestTranslateForwardsClientErrors(t *testing.T) {
	upstream := domain.RateLimitedError(429, "slow down")
	sender := &fakeSender{err: upstream}

	_, err := NewTranslator(sender).TranslateFromText(context.Background(), "text")
	assert.True(t, errors.Is(err, upstream))
	assert.Same(t, upstream, err)
}
