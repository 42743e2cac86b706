package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRedisError(t *testing.T) {
	assert.ErrorIs(t, mapRedisError(redis.Nil), ErrNoMessage)

	cause := errors.New("connection reset")
	err := mapRedisError(cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNoMessage)
}

func TestNewRedisListSourceDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	s := NewRedisListSource(client, "", 0)
	assert.Equal(t, DefaultRedisQueue, s.queue)
	assert.Positive(t, s.block)
}

func TestMapMessageCommitsOnAck(t *testing.T) {
	msg := kafkago.Message{Topic: "weather-readings", Partition: 1, Offset: 7, Value: []byte(`{"city":"Recife"}`)}

	var committed []kafkago.Message
	d := mapMessage(msg, func(_ context.Context, msgs ...kafkago.Message) error {
		committed = append(committed, msgs...)
		return nil
	})

	assert.JSONEq(t, `{"city":"Recife"}`, string(d.Payload))
	assert.Empty(t, committed)
	require.NoError(t, d.Ack(context.Background()))
	require.Len(t, committed, 1)
	assert.Equal(t, int64(7), committed[0].Offset)
}

func TestNewKafkaSourceRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaSource(KafkaConfig{Topic: "weather-readings"})
	assert.Error(t, err)

	_, err = NewKafkaSource(KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}
