package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"adhok_platform/internal/config"
)

// Channel carries refresh signals. An event tells workspace clients to
// re-fetch the named resource; it never carries the changed data itself.
const Channel = "adhok.refresh"

type Event struct {
	ProjectId string `json:"projectId"`
	Resource  string `json:"resource"`
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type Publisher struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewPublisher(rdb *redis.Client, log *slog.Logger) *Publisher {
	return &Publisher{rdb: rdb, log: log}
}

// Refresh publishes a re-fetch signal. Delivery is best effort: a failed
// publish is logged and never fails the operation that triggered it.
func (p *Publisher) Refresh(ctx context.Context, projectId, resource string) {
	payload, err := json.Marshal(Event{ProjectId: projectId, Resource: resource})
	if err != nil {
		p.log.Error("failed to encode refresh event", slog.String("error", err.Error()))
		return
	}

	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		p.log.Error("failed to publish refresh event",
			slog.String("project_id", projectId),
			slog.String("error", err.Error()))
	}
}
