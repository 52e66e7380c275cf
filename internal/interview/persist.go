package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/models"
)

// Repository is the durable side of persistence.
type Repository interface {
	Append(ctx context.Context, rec *models.Interview) (string, error)
}

// SummaryStore holds the latest interview digest per user. Best effort.
type SummaryStore interface {
	PutSummary(ctx context.Context, userID string, s models.InterviewSummary) error
}

// Archiver keeps a plain-text copy of a saved transcript. Best effort.
type Archiver interface {
	ArchiveTranscript(ctx context.Context, rec *models.Interview) (string, error)
}

// Saver writes finished interviews. Only the repository write decides success.
type Saver struct {
	Repo      Repository
	Summaries SummaryStore // optional
	Archive   Archiver     // optional
	Logger    *logrus.Logger
	Timeout   time.Duration
}

func (s *Saver) Save(ctx context.Context, rec *models.Interview) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	log := logger.WithFields(logrus.Fields{
		"user_id":  rec.UserID,
		"messages": rec.TotalMessages,
		"duration": rec.Duration,
	})

	id, err := s.Repo.Append(ctx, rec)
	if err != nil {
		log.WithError(err).Error("interview save failed")
		return "", err
	}
	rec.ID = id
	log = log.WithField("interview_id", id)
	log.Info("interview saved")

	if s.Summaries != nil {
		if err := s.Summaries.PutSummary(ctx, rec.UserID, Summarize(rec)); err != nil {
			log.WithError(err).Warn("summary cache write failed")
		}
	}
	if s.Archive != nil {
		if path, err := s.Archive.ArchiveTranscript(ctx, rec); err != nil {
			log.WithError(err).Warn("transcript archive failed")
		} else {
			log.WithField("archive", path).Debug("transcript archived")
		}
	}
	return id, nil
}

// Summarize renders the short digest shown outside the interview page.
func Summarize(rec *models.Interview) models.InterviewSummary {
	text := fmt.Sprintf("%s - %s\nCompleted on %s\nDuration: %d minutes\nConclusion: %s",
		rec.Company, rec.TechStack, rec.EndTime.Format("2006-01-02"), rec.Duration, rec.Conclusion)
	return models.InterviewSummary{
		InterviewID: rec.ID,
		Company:     rec.Company,
		TechStack:   rec.TechStack,
		CompletedOn: rec.EndTime,
		Duration:    rec.Duration,
		Conclusion:  rec.Conclusion,
		Text:        text,
	}
}
