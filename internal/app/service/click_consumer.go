package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkhub-app/linkhub/internal/app/model"
	infraprom "github.com/linkhub-app/linkhub/internal/infra/prometheus"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	rollupKeyPrefix = "linkhub:rollup:daily:"
	// Daily rollup keys outlive the longest supported analytics window.
	rollupTTL = 400 * 24 * time.Hour
)

// ClickConsumer drains the click stream and maintains telemetry derived from
// it: Prometheus counters and Redis daily rollups. Delivery is at-least-once;
// redeliveries may overcount telemetry, which is acceptable because the
// Postgres event log stays the analytics source of truth.
type ClickConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	redis  *redis.Client
}

// NewClickConsumer creates a new click event consumer. redisClient may be
// nil; rollups are then skipped.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, redisClient *redis.Client) *ClickConsumer {
	return &ClickConsumer{js: js, logger: logger, redis: redisClient}
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (c *ClickConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ClickStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ClickEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal click event", zap.Error(err))
				msg.Nak()
				continue
			}

			infraprom.RedirectsTotal.
				WithLabelValues(event.CountryCode, event.DeviceClass).
				Inc()

			c.rollup(ctx, &event)

			c.logger.Debug("click event consumed",
				zap.String("id", event.ID),
				zap.String("link_id", event.LinkID),
				zap.String("country", event.CountryCode),
				zap.String("device", event.DeviceClass),
			)

			msg.Ack()
		}
	}
}

func (c *ClickConsumer) rollup(ctx context.Context, event *model.ClickEvent) {
	if c.redis == nil {
		return
	}

	key := rollupKeyPrefix + event.AccountID + ":" + event.ClickedAt.UTC().Format("2006-01-02")
	count, err := c.redis.Incr(ctx, key).Result()
	if err != nil {
		c.logger.Warn("daily rollup increment failed", zap.Error(err))
		return
	}
	if count == 1 {
		c.redis.Expire(ctx, key, rollupTTL)
	}
}
