package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	analysisStream = "folio:analysis"
	analysisGroup  = "analysis-workers"

	blockTimeout = 5 * time.Second
	streamMaxLen = 100000
)

// RedisProducer publishes jobs to the analysis stream.
type RedisProducer struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisProducer creates a producer on the given client.
func NewRedisProducer(client *redis.Client, logger *slog.Logger) *RedisProducer {
	return &RedisProducer{client: client, logger: logger}
}

var _ Enqueuer = (*RedisProducer)(nil)

func (p *RedisProducer) EnqueueChapterAnalysis(ctx context.Context, projectID, chapterID string) error {
	msg := &Message{
		ID:         uuid.NewString(),
		Type:       TypeChapterAnalysis,
		ProjectID:  projectID,
		ChapterID:  chapterID,
		EnqueuedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: analysisStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}

	p.logger.Debug("analysis job enqueued",
		"job_id", msg.ID,
		"stream_id", id,
		"chapter_id", chapterID)
	return nil
}

// RedisConsumer reads the analysis stream through a consumer group and
// dispatches messages to handlers by type. Messages are acked only
// after the handler succeeds; a crashed worker's pending messages are
// redelivered to the group.
type RedisConsumer struct {
	client       *redis.Client
	consumerName string
	handlers     map[string]Handler
	logger       *slog.Logger
}

// NewRedisConsumer creates a consumer with the given group member name.
func NewRedisConsumer(client *redis.Client, consumerName string, logger *slog.Logger) *RedisConsumer {
	return &RedisConsumer{
		client:       client,
		consumerName: consumerName,
		handlers:     make(map[string]Handler),
		logger:       logger,
	}
}

// RegisterHandler sets the handler for a job type.
func (c *RedisConsumer) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// Start creates the consumer group if needed and runs the read loop
// until the context ends.
func (c *RedisConsumer) Start(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, analysisStream, analysisGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}

	go c.run(ctx)
	return nil
}

func (c *RedisConsumer) run(ctx context.Context) {
	c.logger.Info("analysis consumer started", "consumer", c.consumerName)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("analysis consumer stopped")
			return
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    analysisGroup,
			Consumer: c.consumerName,
			Streams:  []string{analysisStream, ">"},
			Count:    10,
			Block:    blockTimeout,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			c.logger.Error("read analysis stream", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, entry := range stream.Messages {
				c.process(ctx, entry)
			}
		}
	}
}

func (c *RedisConsumer) process(ctx context.Context, entry redis.XMessage) {
	raw, _ := entry.Values["data"].(string)

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		// Malformed payloads can never succeed; ack to drop them.
		c.logger.Error("drop malformed job", "stream_id", entry.ID, "error", err)
		c.ack(ctx, entry.ID)
		return
	}

	handler, ok := c.handlers[msg.Type]
	if !ok {
		c.logger.Warn("drop job with no handler", "type", msg.Type, "job_id", msg.ID)
		c.ack(ctx, entry.ID)
		return
	}

	if err := handler(ctx, &msg); err != nil {
		// Leave unacked; the group redelivers it.
		c.logger.Error("analysis job failed", "job_id", msg.ID, "error", err)
		return
	}

	c.ack(ctx, entry.ID)
}

func (c *RedisConsumer) ack(ctx context.Context, entryID string) {
	if err := c.client.XAck(ctx, analysisStream, analysisGroup, entryID).Err(); err != nil {
		c.logger.Error("ack analysis job", "stream_id", entryID, "error", err)
	}
}
