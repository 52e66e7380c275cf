package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
)

// TranscriptArchiver keeps a readable copy of every saved interview at
// transcripts/<user>/<interview>.txt.
type TranscriptArchiver struct {
	up Uploader
}

func NewTranscriptArchiver(up Uploader) *TranscriptArchiver {
	return &TranscriptArchiver{up: up}
}

func (a *TranscriptArchiver) ArchiveTranscript(ctx context.Context, rec *models.Interview) (string, error) {
	if rec.ID == "" {
		return "", fmt.Errorf("archive transcript: interview has no id")
	}
	name := fmt.Sprintf("transcripts/%s/%s.txt", rec.UserID, rec.ID)
	return a.up.Upload(ctx, name, "text/plain; charset=utf-8", strings.NewReader(RenderTranscript(rec)))
}

// RenderTranscript formats an interview as plain text, one line per message.
func RenderTranscript(rec *models.Interview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", rec.Company, rec.TechStack)
	fmt.Fprintf(&b, "Started: %s\n", rec.StartTime.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Duration: %d minutes\n", rec.Duration)
	fmt.Fprintf(&b, "Conclusion: %s\n\n", rec.Conclusion)

	for _, m := range rec.Transcript {
		speaker := "Candidate"
		if m.Role == models.RoleAssistant {
			speaker = "Interviewer"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", m.Timestamp, speaker, m.Message)
	}
	return b.String()
}
