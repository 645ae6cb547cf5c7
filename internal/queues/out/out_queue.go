package outqueues

import (
	"context"

	"ob-engine/internal/dtos"
)

const defaultQueueSize = 40000

type Queue struct {
	q chan *dtos.BookEvent
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}

	return &Queue{
		q: make(chan *dtos.BookEvent, size),
	}
}

// AddToOutQ blocks while the queue is full, until ctx is done.
func (q *Queue) AddToOutQ(ctx context.Context, event *dtos.BookEvent) error {
	select {
	case q.q <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) OutQ() <-chan *dtos.BookEvent {
	return q.q
}
