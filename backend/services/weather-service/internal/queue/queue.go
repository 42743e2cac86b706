// Package queue adapts message brokers that carry collector readings.
package queue

import (
	"context"
	"errors"
)

// ErrNoMessage means the source waited its block interval without receiving anything.
var ErrNoMessage = errors.New("queue: no message")

// Delivery is one message taken from a source. Ack confirms it was handled.
type Delivery struct {
	Payload []byte
	Ack     func(ctx context.Context) error
}

// Source yields collector messages one at a time.
type Source interface {
	Next(ctx context.Context) (Delivery, error)
	Close() error
}

func noAck(context.Context) error { return nil }
