package processors

import (
	"context"
	"log/slog"
	"sync"

	"ob-engine/internal/dtos"
	"ob-engine/internal/marketdata"
	"ob-engine/internal/metrics"

	"golang.org/x/sync/errgroup"
)

type DeQueuer interface {
	Queue(symbol string) <-chan *dtos.BookEvent
}

type OutQ interface {
	AddToOutQ(ctx context.Context, event *dtos.BookEvent) error
}

// BookStore is the part of the order book store the processors write to.
type BookStore interface {
	InitOrderBook(currency string)
	Apply(currency string, fn func(book *marketdata.OrderBook)) error
}

type Manager struct {
	DeQueuer
	OutQ

	store      BookStore
	metrics    *metrics.Metrics
	mu         sync.RWMutex
	processors map[string]*Processor
}

func NewManager(deQueuer DeQueuer, outQ OutQ, store BookStore, m *metrics.Metrics) *Manager {
	return &Manager{
		DeQueuer:   deQueuer,
		OutQ:       outQ,
		store:      store,
		metrics:    m,
		processors: make(map[string]*Processor),
	}
}

// StartProcessor creates the book of currency and starts its processor on g.
// Starting an already running pair is a no-op.
func (m *Manager) StartProcessor(ctx context.Context, g *errgroup.Group, currency string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.processors[currency]; ok {
		return
	}

	m.store.InitOrderBook(currency)

	pctx, cancel := context.WithCancel(ctx)
	proc := NewProcessor(currency, m.store, m.OutQ, m.DeQueuer, m.metrics)
	proc.cancel = cancel
	m.processors[currency] = proc

	g.Go(func() error {
		return proc.Run(pctx)
	})
}

func (m *Manager) Processor(currency string) *Processor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.processors[currency]
}

// StopProcessor stops the processor of a pair. Its book stays in the store.
func (m *Manager) StopProcessor(currency string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.processors[currency]; ok {
		p.cancel()
		delete(m.processors, currency)
	}
}

// ResetProcessors stops every processor.
func (m *Manager) ResetProcessors() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.processors {
		p.cancel()
		slog.Info("Processor Stopped.", "Currency", p.currency)
	}

	clear(m.processors)
	slog.Info("Processors reset")
}
