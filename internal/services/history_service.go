package services

import (
	"context"
	"errors"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

// InterviewReader is the read side of the interview store.
type InterviewReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Interview, error)
	GetByID(ctx context.Context, id string) (*models.Interview, error)
}

type SummaryReader interface {
	GetSummary(ctx context.Context, userID string) (*models.InterviewSummary, error)
}

type HistoryService interface {
	List(ctx context.Context, userID string) ([]models.Interview, error)
	Get(ctx context.Context, userID, interviewID string) (*models.Interview, error)
	LastSummary(ctx context.Context, userID string) (*models.InterviewSummary, error)
}

type historyService struct {
	interviews InterviewReader
	summaries  SummaryReader // optional
}

func NewHistoryService(interviews InterviewReader, summaries SummaryReader) HistoryService {
	return &historyService{interviews: interviews, summaries: summaries}
}

// List returns the user's interviews, newest first. No interviews yields an
// empty, non-nil slice.
func (s *historyService) List(ctx context.Context, userID string) ([]models.Interview, error) {
	const op = "HistoryService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "sign in to view your interviews", nil)
	}
	list, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(op, "failed to load interviews", err)
	}
	if list == nil {
		list = []models.Interview{}
	}
	return list, nil
}

func (s *historyService) Get(ctx context.Context, userID, interviewID string) (*models.Interview, error) {
	const op = "HistoryService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "sign in to view your interviews", nil)
	}
	if interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview id is required", nil)
	}

	rec, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, storeError(op, "failed to load interview", err)
	}
	if rec.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return rec, nil
}

// LastSummary returns nil, nil when nothing is cached.
func (s *historyService) LastSummary(ctx context.Context, userID string) (*models.InterviewSummary, error) {
	const op = "HistoryService.LastSummary"

	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "sign in to view your interviews", nil)
	}
	if s.summaries == nil {
		return nil, nil
	}
	sum, err := s.summaries.GetSummary(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "summary cache unavailable", err)
	}
	return sum, nil
}

func storeError(op, msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.E(utils.CodeTimeout, op, msg, err)
	}
	return utils.E(utils.CodeInternal, op, msg, err)
}
