package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const Channel = "marketplace-events"

const (
	ApplicationCreated  = "application.created"
	ApplicationAccepted = "application.accepted"
	ApplicationDeclined = "application.declined"
	SubmissionSaved     = "submission.saved"
	ReviewAdded         = "review.added"
)

// Event is what gets published for other processes to react to.
type Event struct {
	Name       string    `json:"name"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ItemID     string    `json:"item_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers events best-effort. Emit never fails the caller.
type Publisher interface {
	Emit(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

type RedisPublisher struct {
	c   *redis.Client
	log *zap.Logger
}

func NewRedisPublisher(c *redis.Client, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{c: c, log: log}
}

func (p *RedisPublisher) Emit(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		p.log.Warn("marshal event", zap.String("event", e.Name), zap.Error(err))
		return
	}
	if err := p.c.Publish(ctx, Channel, data).Err(); err != nil {
		p.log.Warn("publish event", zap.String("event", e.Name), zap.Error(err))
		return
	}
	p.log.Debug("event published", zap.String("event", e.Name), zap.String("entity", e.EntityID))
}

// New picks the Redis publisher when a client is available.
func New(c *redis.Client, log *zap.Logger) Publisher {
	if c == nil {
		return Nop{}
	}
	return NewRedisPublisher(c, log)
}
