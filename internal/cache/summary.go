package cache

import (
	"context"
	"time"

	"github.com/yoockh/yoointerview/internal/models"
)

func summaryKey(userID string) string { return "interview:last_summary:" + userID }

// SummaryCache keeps one summary per user; the latest write wins.
type SummaryCache struct {
	c   Cache
	ttl time.Duration
}

func NewSummaryCache(c Cache, ttl time.Duration) *SummaryCache {
	return &SummaryCache{c: c, ttl: ttl}
}

func (s *SummaryCache) PutSummary(ctx context.Context, userID string, sum models.InterviewSummary) error {
	return s.c.SetJSON(ctx, summaryKey(userID), sum, s.ttl)
}

// GetSummary returns nil without error on a miss.
func (s *SummaryCache) GetSummary(ctx context.Context, userID string) (*models.InterviewSummary, error) {
	var sum models.InterviewSummary
	hit, err := s.c.GetJSON(ctx, summaryKey(userID), &sum)
	if err != nil || !hit {
		return nil, err
	}
	return &sum, nil
}

func (s *SummaryCache) DeleteSummary(ctx context.Context, userID string) error {
	return s.c.Del(ctx, summaryKey(userID))
}
