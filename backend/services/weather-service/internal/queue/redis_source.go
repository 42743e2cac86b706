package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisQueue is the list collectors push readings onto.
const DefaultRedisQueue = "weather_data_queue"

// RedisListSource pops readings from a Redis list with BLPOP.
// Popping removes the message, so Ack is a no-op.
type RedisListSource struct {
	client *redis.Client
	queue  string
	block  time.Duration
}

// NewRedisListSource returns redis-backed source. block bounds each BLPOP call.
func NewRedisListSource(client *redis.Client, queue string, block time.Duration) *RedisListSource {
	if queue == "" {
		queue = DefaultRedisQueue
	}
	if block <= 0 {
		block = 30 * time.Second
	}
	return &RedisListSource{client: client, queue: queue, block: block}
}

// Next blocks until a message arrives, the block interval passes or ctx is done.
func (s *RedisListSource) Next(ctx context.Context) (Delivery, error) {
	result, err := s.client.BLPop(ctx, s.block, s.queue).Result()
	if err != nil {
		return Delivery{}, mapRedisError(err)
	}
	if len(result) != 2 {
		return Delivery{}, fmt.Errorf("redis blpop %s: unexpected reply %v", s.queue, result)
	}
	return Delivery{Payload: []byte(result[1]), Ack: noAck}, nil
}

// Close closes the underlying client.
func (s *RedisListSource) Close() error {
	return s.client.Close()
}

func mapRedisError(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrNoMessage
	}
	return fmt.Errorf("redis blpop: %w", err)
}
