package interview

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/yoointerview/internal/models"
)

func TestDurationMinutes(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"zero", 0, 1},
		{"seconds", 20 * time.Second, 1},
		{"rounds down", 2*time.Minute + 29*time.Second, 2},
		{"rounds half up", 2*time.Minute + 30*time.Second, 3},
		{"sixteen", 16 * time.Minute, 16},
		{"clock skew", -time.Minute, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DurationMinutes(t0, t0.Add(tc.elapsed)))
		})
	}
}

func TestConclusionRuleOrder(t *testing.T) {
	cases := []struct {
		name      string
		duration  int
		candidate int
		avg       float64
		want      string
	}{
		{"short beats everything", 4, 20, 200, ConclusionShort},
		{"limited interaction", 10, 4, 200, ConclusionLimited},
		{"brief answers", 10, 6, 49.9, ConclusionBrief},
		{"excellent", 16, 11, 80, ConclusionExcellent},
		{"long but few answers", 16, 6, 80, ConclusionGood},
		{"many answers but not long", 15, 11, 80, ConclusionGood},
		{"boundary five minutes", 5, 5, 50, ConclusionGood},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Conclusion(tc.duration, tc.candidate, tc.avg))
		})
	}
}

func TestConclusionIsTotal(t *testing.T) {
	labels := map[string]bool{
		ConclusionShort: true, ConclusionLimited: true, ConclusionBrief: true,
		ConclusionExcellent: true, ConclusionGood: true,
	}
	for d := 0; d <= 30; d++ {
		for n := 0; n <= 15; n++ {
			for _, avg := range []float64{0, 10, 49.99, 50, 120} {
				got := Conclusion(d, n, avg)
				require.True(t, labels[got], "d=%d n=%d avg=%v got %q", d, n, avg, got)
			}
		}
	}
}

func TestMeasure(t *testing.T) {
	entries := []Entry{
		{Role: models.RoleAssistant, Message: OpeningLine},
		{Role: models.RoleUser, Message: "abcd"},
		{Role: models.RoleUser, Message: "héllo!"},
		{Role: models.RoleAssistant, Message: "ok"},
	}
	m := Measure(entries)
	assert.Equal(t, 4, m.Total)
	assert.Equal(t, 2, m.Candidate)
	assert.Equal(t, 2, m.Interviewer)
	assert.InDelta(t, 5.0, m.AvgCandidateLength, 0.001)

	assert.Zero(t, Measure(nil).AvgCandidateLength)
}

func TestBuildRecord(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", Role: models.RoleAssistant, Message: OpeningLine, Timestamp: start},
		{ID: "b", Role: models.RoleUser, Message: strings.Repeat("x", 60), Timestamp: start.Add(time.Minute)},
	}

	rec := BuildRecord("u1", entries, start, start.Add(90*time.Second))

	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, 2, rec.Duration)
	assert.Equal(t, 2, rec.TotalMessages)
	assert.Equal(t, 1, rec.UserMessages)
	assert.Equal(t, 1, rec.AssistantMessages)
	assert.Equal(t, models.DefaultTechStack, rec.TechStack)
	assert.Equal(t, models.DefaultCompany, rec.Company)
	assert.Equal(t, ConclusionShort, rec.Conclusion)
	require.Len(t, rec.Transcript, 2)
	assert.Equal(t, "2026-03-01T10:01:00Z", rec.Transcript[1].Timestamp)
	assert.Equal(t, models.RoleUser, rec.Transcript[1].Role)
	assert.True(t, rec.CreatedAt.IsZero())
}

func TestSummarize(t *testing.T) {
	end := time.Date(2026, 3, 1, 10, 16, 0, 0, time.UTC)
	rec := &models.Interview{
		ID: "i1", Company: models.DefaultCompany, TechStack: models.DefaultTechStack,
		EndTime: end, Duration: 16, Conclusion: ConclusionGood,
	}
	s := Summarize(rec)
	assert.Equal(t, "i1", s.InterviewID)
	assert.Equal(t, 16, s.Duration)
	assert.Equal(t, "Practice Session - General\nCompleted on 2026-03-01\nDuration: 16 minutes\nConclusion: "+ConclusionGood, s.Text)
}
