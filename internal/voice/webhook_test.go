package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func kinds(events []interview.Event) []interview.EventKind {
	out := make([]interview.EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestParseServerMessageStatus(t *testing.T) {
	callID, events, err := ParseServerMessage([]byte(`{"message":{"type":"status-update","status":"in-progress","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Equal(t, "c1", callID)
	assert.Equal(t, []interview.EventKind{interview.EventStarted}, kinds(events))
	assert.Equal(t, now, events[0].At)
	assert.Equal(t, "c1", events[0].CallID)

	_, events, err = ParseServerMessage([]byte(`{"message":{"type":"status-update","status":"ended","endedReason":"customer-ended-call","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Equal(t, []interview.EventKind{interview.EventEnded}, kinds(events))

	_, events, err = ParseServerMessage([]byte(`{"message":{"type":"status-update","status":"ended","endedReason":"pipeline-error-openai-llm-failed","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Equal(t, []interview.EventKind{interview.EventError, interview.EventEnded}, kinds(events))
	assert.Equal(t, "pipeline-error-openai-llm-failed", events[0].Reason)

	_, events, err = ParseServerMessage([]byte(`{"message":{"type":"status-update","status":"ringing","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseServerMessageSpeech(t *testing.T) {
	_, events, err := ParseServerMessage([]byte(`{"message":{"type":"speech-update","status":"started","role":"assistant","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Equal(t, []interview.EventKind{interview.EventSpeechStart}, kinds(events))

	_, events, err = ParseServerMessage([]byte(`{"message":{"type":"speech-update","status":"stopped","role":"assistant","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Equal(t, []interview.EventKind{interview.EventSpeechEnd}, kinds(events))

	_, events, err = ParseServerMessage([]byte(`{"message":{"type":"speech-update","status":"started","role":"user","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseServerMessageTranscript(t *testing.T) {
	_, events, err := ParseServerMessage([]byte(`{"message":{"type":"transcript","role":"user","transcriptType":"final","transcript":" I build APIs in Go. ","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, interview.EventTranscript, events[0].Kind)
	assert.Equal(t, models.RoleUser, events[0].Role)
	assert.Equal(t, "I build APIs in Go.", events[0].Text)
	assert.NotEmpty(t, events[0].ID)

	_, events, err = ParseServerMessage([]byte(`{"message":{"type":"transcript","role":"assistant","transcript":"Tell me more.","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.RoleAssistant, events[0].Role)

	for _, body := range []string{
		`{"message":{"type":"transcript","role":"user","transcriptType":"partial","transcript":"I bui","call":{"id":"c1"}}}`,
		`{"message":{"type":"transcript","role":"user","transcriptType":"final","transcript":"   ","call":{"id":"c1"}}}`,
		`{"message":{"type":"transcript","role":"system","transcriptType":"final","transcript":"x","call":{"id":"c1"}}}`,
		`{"message":{"type":"end-of-call-report","call":{"id":"c1"}}}`,
	} {
		_, events, err = ParseServerMessage([]byte(body), now)
		require.NoError(t, err)
		assert.Empty(t, events, body)
	}
}

func TestParseServerMessageErrors(t *testing.T) {
	_, _, err := ParseServerMessage([]byte(`not json`), now)
	assert.Error(t, err)

	_, _, err = ParseServerMessage([]byte(`{"message":{"type":"hang"}}`), now)
	assert.ErrorIs(t, err, ErrNoCallID)

	_, events, err := ParseServerMessage([]byte(`{"message":{"type":"hang","call":{"id":"c1"}}}`), now)
	require.NoError(t, err)
	assert.Equal(t, []interview.EventKind{interview.EventError}, kinds(events))
}
