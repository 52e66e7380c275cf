package interview

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/yoockh/yoointerview/internal/models"
)

const (
	ConclusionShort     = "Short interview session - consider longer practice sessions."
	ConclusionLimited   = "Limited interaction - practice answering more questions."
	ConclusionBrief     = "Brief responses - try to provide more detailed answers."
	ConclusionExcellent = "Excellent practice session with good engagement."
	ConclusionGood      = "Good practice session - keep practicing regularly."
)

type Metrics struct {
	Total       int
	Candidate   int
	Interviewer int

	// AvgCandidateLength is in characters; 0 when the candidate never spoke.
	AvgCandidateLength float64
}

func Measure(entries []Entry) Metrics {
	var m Metrics
	var chars int
	for _, e := range entries {
		m.Total++
		switch e.Role {
		case models.RoleUser:
			m.Candidate++
			chars += utf8.RuneCountInString(e.Message)
		case models.RoleAssistant:
			m.Interviewer++
		}
	}
	if m.Candidate > 0 {
		m.AvgCandidateLength = float64(chars) / float64(m.Candidate)
	}
	return m
}

// DurationMinutes rounds the elapsed time to whole minutes, half up, never below 1.
func DurationMinutes(start, end time.Time) int {
	d := int(math.Floor(end.Sub(start).Minutes() + 0.5))
	if d < 1 {
		return 1
	}
	return d
}

// Conclusion applies the rule table top to bottom; the first match wins.
func Conclusion(duration, candidateCount int, avgCandidateLength float64) string {
	switch {
	case duration < 5:
		return ConclusionShort
	case candidateCount < 5:
		return ConclusionLimited
	case avgCandidateLength < 50:
		return ConclusionBrief
	case duration > 15 && candidateCount > 10:
		return ConclusionExcellent
	default:
		return ConclusionGood
	}
}

// BuildRecord derives the stored interview from a finished transcript.
func BuildRecord(userID string, entries []Entry, start, end time.Time) *models.Interview {
	m := Measure(entries)
	duration := DurationMinutes(start, end)

	transcript := make([]models.TranscriptMessage, 0, len(entries))
	for _, e := range entries {
		transcript = append(transcript, models.TranscriptMessage{
			ID:        e.ID,
			Role:      e.Role,
			Message:   e.Message,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}

	return &models.Interview{
		UserID:            userID,
		Transcript:        transcript,
		StartTime:         start.UTC(),
		EndTime:           end.UTC(),
		Duration:          duration,
		TotalMessages:     m.Total,
		UserMessages:      m.Candidate,
		AssistantMessages: m.Interviewer,
		TechStack:         models.DefaultTechStack,
		Company:           models.DefaultCompany,
		Conclusion:        Conclusion(duration, m.Candidate, m.AvgCandidateLength),
	}
}
