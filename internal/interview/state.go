package interview

import (
	"time"

	"github.com/yoockh/yoointerview/internal/models"
)

type StatusKind string

const (
	StatusIdle           StatusKind = "idle"
	StatusConfigError    StatusKind = "config_error"
	StatusSignInRequired StatusKind = "sign_in_required"
	StatusConnecting     StatusKind = "connecting"
	StatusInProgress     StatusKind = "in_progress"
	StatusAgentSpeaking  StatusKind = "agent_speaking"
	StatusYourTurn       StatusKind = "your_turn"
	StatusEnding         StatusKind = "ending"
	StatusSaving         StatusKind = "saving"
	StatusSaved          StatusKind = "saved"
	StatusSaveFailed     StatusKind = "save_failed"
	StatusSignInToSave   StatusKind = "sign_in_to_save"
	StatusReview         StatusKind = "review"
	StatusError          StatusKind = "error"
)

const (
	msgIdle           = "Ready to start your interview"
	msgConfigError    = "Configuration error: voice service keys are missing."
	msgSignInRequired = "Please sign in to start an interview"
	msgConnecting     = "Connecting to your AI interviewer..."
	msgInProgress     = "Interview in progress - Good luck!"
	msgAgentSpeaking  = "AI Interviewer is speaking..."
	msgYourTurn       = "Your turn to speak..."
	msgEnding         = "Ending interview..."
	msgSaving         = "Saving interview..."
	msgSaved          = "Interview saved successfully!"
	msgSaveFailed     = "Interview completed but failed to save"
	msgSignInToSave   = "Interview completed. Sign in to save your progress."
	msgReview         = "Interview completed. Review your performance below."
	msgConnectFailed  = "Failed to connect. "
	msgConnectHint    = "Please check your network and voice service configuration."
)

// OpeningLine is appended as the interviewer's first utterance when a call starts.
const OpeningLine = "Hello! I'm your AI interviewer. Let's begin your practice interview. Tell me about yourself."

type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

// Entry is one captured utterance. Entries are never modified after append.
type Entry struct {
	ID        string      `json:"id"`
	Role      models.Role `json:"role"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// State is the live record of one user's interview attempt.
type State struct {
	Active     bool `json:"active"`
	Connecting bool `json:"connecting"`
	Listening  bool `json:"listening"`
	Saving     bool `json:"saving"`

	// Finalized is set once an end event was handled for the current
	// session; further end events are ignored until the next start.
	Finalized bool `json:"finalized"`

	StartTime  *time.Time `json:"start_time,omitempty"`
	Transcript []Entry    `json:"transcript"`
	Status     Status     `json:"status"`
	CallID     string     `json:"call_id,omitempty"`
}

func idleState() State {
	return State{Transcript: []Entry{}, Status: Status{Kind: StatusIdle, Message: msgIdle}}
}

func (s State) clone() State {
	out := s
	out.Transcript = append(make([]Entry, 0, len(s.Transcript)), s.Transcript...)
	if s.StartTime != nil {
		t := *s.StartTime
		out.StartTime = &t
	}
	return out
}
