package interview

import (
	"github.com/yoockh/yoointerview/internal/models"
)

// Reduce applies one voice event to s. It is pure: the returned record, when
// non-nil, is the interview that must be persisted for the session that just
// ended. user is the identity at the time the event is handled.
func Reduce(s State, ev Event, user *models.User) (State, *models.Interview) {
	s = s.clone()

	switch ev.Kind {
	case EventStarted:
		if s.Active {
			return s, nil
		}
		at := ev.At
		s.Active = true
		s.Connecting = false
		s.Finalized = false
		s.StartTime = &at
		s.Status = Status{Kind: StatusInProgress, Message: msgInProgress}
		s.Transcript = append(s.Transcript, Entry{
			ID:        ev.ID,
			Role:      models.RoleAssistant,
			Message:   OpeningLine,
			Timestamp: ev.At,
		})

	case EventSpeechStart:
		s.Listening = false
		s.Status = Status{Kind: StatusAgentSpeaking, Message: msgAgentSpeaking}

	case EventSpeechEnd:
		s.Listening = true
		s.Status = Status{Kind: StatusYourTurn, Message: msgYourTurn}

	case EventTranscript:
		s.Transcript = append(s.Transcript, Entry{
			ID:        ev.ID,
			Role:      ev.Role,
			Message:   ev.Text,
			Timestamp: ev.At,
		})

	case EventError:
		s.Active = false
		s.Connecting = false
		s.Listening = false
		s.Status = Status{Kind: StatusError, Message: "Error: " + ev.Reason}

	case EventEnded:
		if s.Finalized {
			return s, nil
		}
		s.Active = false
		s.Connecting = false
		s.Listening = false
		s.Finalized = true

		switch {
		case user == nil:
			s.Status = Status{Kind: StatusSignInToSave, Message: msgSignInToSave}
		case s.StartTime == nil || len(s.Transcript) == 0:
			s.Status = Status{Kind: StatusReview, Message: msgReview}
		default:
			return s, BuildRecord(user.ID, s.Transcript, *s.StartTime, ev.At)
		}
	}

	return s, nil
}
