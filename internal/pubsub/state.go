// Package pubsub fans interview state out to every socket a user has open,
// across server instances, through Redis channels.
package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/interview"
)

func StateChannel(userID string) string { return "interview:" + userID + ":state" }

// StateMessage is what sockets receive on every change.
type StateMessage struct {
	Type  string          `json:"type"`
	State interview.State `json:"state"`
}

type StatePublisher struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewStatePublisher(rdb *redis.Client, log *logrus.Logger) *StatePublisher {
	return &StatePublisher{rdb: rdb, log: log}
}

// Notify publishes the state. Delivery is best effort; a failed publish only
// costs the browser one update.
func (p *StatePublisher) Notify(ctx context.Context, userID string, st interview.State) {
	if userID == "" {
		return
	}
	b, err := json.Marshal(StateMessage{Type: "state", State: st})
	if err != nil {
		p.log.WithError(err).Error("encode state")
		return
	}
	if err := p.rdb.Publish(ctx, StateChannel(userID), b).Err(); err != nil {
		p.log.WithError(err).WithField("user_id", userID).Warn("publish state failed")
	}
}

// Follow subscribes to the user's state channel and yields raw payloads
// until ctx ends or stop is called.
func (p *StatePublisher) Follow(ctx context.Context, userID string) (<-chan string, func() error, error) {
	ps := p.rdb.Subscribe(ctx, StateChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		for m := range ps.Channel() {
			select {
			case out <- m.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, ps.Close, nil
}
