package voice

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
)

var ErrNoCallID = errors.New("server message carries no call id")

// serverMessage is the subset of a Vapi server-URL payload we act on.
type serverMessage struct {
	Message struct {
		Type           string `json:"type"`
		Status         string `json:"status"`
		EndedReason    string `json:"endedReason"`
		Role           string `json:"role"`
		TranscriptType string `json:"transcriptType"`
		Transcript     string `json:"transcript"`
		Call           struct {
			ID string `json:"id"`
		} `json:"call"`
	} `json:"message"`
}

// ParseServerMessage translates one webhook payload into controller events.
// Messages that do not affect the session yield no events.
func ParseServerMessage(body []byte, now time.Time) (string, []interview.Event, error) {
	var sm serverMessage
	if err := json.Unmarshal(body, &sm); err != nil {
		return "", nil, err
	}
	m := sm.Message
	if m.Call.ID == "" {
		return "", nil, ErrNoCallID
	}

	stamp := func(ev interview.Event) interview.Event {
		ev.At = now.UTC()
		ev.CallID = m.Call.ID
		return ev
	}

	var events []interview.Event
	switch m.Type {
	case "status-update":
		switch m.Status {
		case "in-progress":
			events = append(events, stamp(interview.NewEvent(interview.EventStarted)))
		case "ended":
			if isErrorReason(m.EndedReason) {
				events = append(events, stamp(interview.ErrorEvent(m.EndedReason)))
			}
			events = append(events, stamp(interview.NewEvent(interview.EventEnded)))
		}

	case "speech-update":
		// only the agent's speech drives turn taking
		if m.Role != "assistant" {
			break
		}
		switch m.Status {
		case "started":
			events = append(events, stamp(interview.NewEvent(interview.EventSpeechStart)))
		case "stopped":
			events = append(events, stamp(interview.NewEvent(interview.EventSpeechEnd)))
		}

	case "transcript":
		if m.TranscriptType != "" && m.TranscriptType != "final" {
			break
		}
		text := strings.TrimSpace(m.Transcript)
		if text == "" {
			break
		}
		switch m.Role {
		case "user":
			events = append(events, stamp(interview.TranscriptEvent(models.RoleUser, text)))
		case "assistant":
			events = append(events, stamp(interview.TranscriptEvent(models.RoleAssistant, text)))
		}

	case "hang":
		events = append(events, stamp(interview.ErrorEvent("the assistant stopped responding")))
	}

	return m.Call.ID, events, nil
}

func isErrorReason(reason string) bool {
	r := strings.ToLower(reason)
	return strings.Contains(r, "error") || strings.Contains(r, "failed")
}
