package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	URL           string
	Password      string
	StreamKey     string
	ConsumerGroup string
	ConsumerName  string
	// BlockTime bounds one XREADGROUP call.
	BlockTime time.Duration
	BatchSize int64
}

// RedisSource consumes book events from a Redis stream through a consumer
// group. Each stream entry carries the event JSON in its "data" field and is
// acknowledged once queued.
type RedisSource struct {
	client *redis.Client
	cfg    RedisConfig
	q      QueueAdder
	errs   ErrorRecorder
}

func NewRedisSource(cfg RedisConfig, q QueueAdder, errs ErrorRecorder) (*RedisSource, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.Password != "" {
		opt.Password = cfg.Password
	}

	if cfg.BlockTime <= 0 {
		cfg.BlockTime = 5 * time.Second
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &RedisSource{
		client: redis.NewClient(opt),
		cfg:    cfg,
		q:      q,
		errs:   errs,
	}, nil
}

func (s *RedisSource) Run(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	err := s.client.XGroupCreateMkStream(ctx, s.cfg.StreamKey, s.cfg.ConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	slog.Info("Consuming book events", "stream", s.cfg.StreamKey, "group", s.cfg.ConsumerGroup, "consumer", s.cfg.ConsumerName)

	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.cfg.ConsumerGroup,
			Consumer: s.cfg.ConsumerName,
			Streams:  []string{s.cfg.StreamKey, ">"},
			Count:    s.cfg.BatchSize,
			Block:    s.cfg.BlockTime,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}

			slog.Error("Error on reading stream", "stream", s.cfg.StreamKey, "Error", err)

			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}

			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				if err := s.handle(ctx, msg); err != nil {
					return nil
				}
			}
		}
	}
}

// handle queues one entry and acknowledges it. An entry that could not be
// queued before ctx ended stays pending for redelivery.
func (s *RedisSource) handle(ctx context.Context, msg redis.XMessage) error {
	event, err := decodeMessage(msg)
	if err != nil {
		slog.Error("Dropping stream entry", "id", msg.ID, "Error", err)
		s.errs.RecordParseError("redis")
	} else if err := s.q.AddToQueue(ctx, event); err != nil {
		return err
	}

	// malformed entries are acknowledged too, a redelivery would fail again
	if err := s.client.XAck(ctx, s.cfg.StreamKey, s.cfg.ConsumerGroup, msg.ID).Err(); err != nil {
		slog.Error("Error on acknowledging stream entry", "id", msg.ID, "Error", err)
	}

	return nil
}

func (s *RedisSource) Close() error {
	return s.client.Close()
}
