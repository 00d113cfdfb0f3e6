package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EventSurveyCreated     = "survey.created"
	EventResponseSubmitted = "response.submitted"
	EventSurveyDeleted     = "survey.deleted"
)

type SurveyEvent struct {
	Type       string    `json:"type"`
	SurveyID   string    `json:"surveyId"`
	ResponseID string    `json:"responseId,omitempty"`
	UserRef    string    `json:"userRef,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event SurveyEvent) error
}

// RedisEventPublisher 通过 Redis Pub/Sub 广播问卷事件
type RedisEventPublisher struct {
	Redis   *redis.Client
	Channel string
}

func (p *RedisEventPublisher) Publish(ctx context.Context, event SurveyEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Redis.Publish(ctx, p.Channel, payload).Err()
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, SurveyEvent) error { return nil }

// NewEventPublisher Redis 未启用时退化为 Noop
func NewEventPublisher(rdb *redis.Client, channel string) EventPublisher {
	if rdb == nil {
		return NoopEventPublisher{}
	}
	return &RedisEventPublisher{Redis: rdb, Channel: channel}
}
