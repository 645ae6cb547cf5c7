package inqueues

import (
	"context"
	"sync"

	"ob-engine/internal/dtos"
)

const (
	defaultQueueSize = 10000
)

// InQManager holds one buffered queue per currency pair so events of a pair
// keep their arrival order.
type InQManager struct {
	mu     sync.Mutex
	size   int
	queues map[string]chan *dtos.BookEvent
}

func NewQManager(size int) *InQManager {
	if size <= 0 {
		size = defaultQueueSize
	}

	return &InQManager{
		size:   size,
		queues: make(map[string]chan *dtos.BookEvent),
	}
}

// AddToQueue blocks while the pair's queue is full. It gives up with the
// context error once ctx is done.
func (m *InQManager) AddToQueue(ctx context.Context, event *dtos.BookEvent) error {
	select {
	case m.queue(event.Symbol) <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue returns the queue of a pair, creating it on first use.
func (m *InQManager) Queue(symbol string) <-chan *dtos.BookEvent {
	return m.queue(symbol)
}

func (m *InQManager) queue(currency string) chan *dtos.BookEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[currency]
	if !ok {
		q = make(chan *dtos.BookEvent, m.size)
		m.queues[currency] = q
	}

	return q
}
