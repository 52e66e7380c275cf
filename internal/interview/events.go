package interview

import (
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/yoointerview/internal/models"
)

type EventKind string

const (
	EventStarted     EventKind = "started"
	EventEnded       EventKind = "ended"
	EventSpeechStart EventKind = "speech_start" // agent started talking
	EventSpeechEnd   EventKind = "speech_end"   // candidate's turn
	EventTranscript  EventKind = "transcript"
	EventError       EventKind = "error"
)

// Event is what the voice transport reports. At and ID are filled in by the
// adapter so that Reduce stays free of clocks and ID generation. CallID,
// when set, must match the controller's bound call.
type Event struct {
	Kind   EventKind   `json:"kind"`
	CallID string      `json:"call_id,omitempty"`
	Role   models.Role `json:"role,omitempty"`
	Text   string      `json:"text,omitempty"`
	Reason string      `json:"reason,omitempty"`
	At     time.Time   `json:"at"`
	ID     string      `json:"id"`
}

func NewEvent(kind EventKind) Event {
	return Event{Kind: kind, At: time.Now().UTC(), ID: newEntryID()}
}

func TranscriptEvent(role models.Role, text string) Event {
	ev := NewEvent(EventTranscript)
	ev.Role = role
	ev.Text = text
	return ev
}

func ErrorEvent(reason string) Event {
	ev := NewEvent(EventError)
	ev.Reason = reason
	return ev
}

// UUIDv7 sorts by creation time.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
