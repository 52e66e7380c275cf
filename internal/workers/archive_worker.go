package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

const (
	DefaultArchiveStream = "interview:archive"
	DefaultArchiveGroup  = "archive-workers"
)

// ArchiveQueue defers transcript archiving to the worker pool so that a slow
// bucket never holds up the save path. It satisfies interview.Archiver.
type ArchiveQueue struct {
	Redis  *redis.Client
	Stream string
}

func (q *ArchiveQueue) ArchiveTranscript(ctx context.Context, rec *models.Interview) (string, error) {
	stream := q.Stream
	if stream == "" {
		stream = DefaultArchiveStream
	}
	id, err := q.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]any{
			"interview_id": rec.ID,
			"user_id":      rec.UserID,
			"queued_unix":  strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Result()
	if err != nil {
		return "", err
	}
	return "queued:" + id, nil
}

type RecordLoader interface {
	GetByID(ctx context.Context, id string) (*models.Interview, error)
}

// ArchiveWorkerPool consumes the archive stream with a consumer group and
// uploads each interview's transcript.
type ArchiveWorkerPool struct {
	Redis      *redis.Client
	Records    RecordLoader
	Archiver   interview.Archiver
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *ArchiveWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Records == nil || p.Archiver == nil {
		return errors.New("ArchiveWorkerPool missing dependency: Redis/Records/Archiver must be set")
	}
	p.defaults()

	// BUSYGROUP on restart is expected
	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err()

	for i := 0; i < p.NumWorkers; i++ {
		go p.runConsumer(ctx, p.ConsumerPrefix+"-"+strconv.Itoa(i+1))
	}
	return nil
}

func (p *ArchiveWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = DefaultArchiveStream
	}
	if p.Group == "" {
		p.Group = DefaultArchiveGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "archiver"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

func (p *ArchiveWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				p.Logger.WithError(err).Warn("archive stream read failed")
				time.Sleep(500 * time.Millisecond)
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				// failed uploads stay pending for a later claim
				if err := p.handle(ctx, msg); err == nil {
					_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
				}
			}
		}
	}
}

// handle archives one queued interview. A nil return means the message is
// done with, including messages that can never succeed.
func (p *ArchiveWorkerPool) handle(ctx context.Context, msg redis.XMessage) error {
	interviewID, _ := msg.Values["interview_id"].(string)
	log := p.Logger.WithFields(logrus.Fields{"redis_id": msg.ID, "interview_id": interviewID})
	if interviewID == "" {
		log.Warn("archive message without interview id")
		return nil
	}

	rec, err := p.Records.GetByID(ctx, interviewID)
	if errors.Is(err, utils.ErrNotFound) {
		log.Warn("archived interview no longer exists")
		return nil
	}
	if err != nil {
		log.WithError(err).Error("load interview for archive failed")
		return err
	}

	path, err := p.Archiver.ArchiveTranscript(ctx, rec)
	if err != nil {
		log.WithError(err).Error("transcript upload failed")
		return err
	}
	log.WithField("path", path).Info("transcript archived")
	return nil
}
