package processors

import (
	"context"
	"log/slog"
	"time"

	"ob-engine/internal/dtos"
	"ob-engine/internal/metrics"
)

type Processor struct {
	DeQueuer
	OutQ

	store    BookStore
	metrics  *metrics.Metrics
	currency string
	cancel   context.CancelFunc
}

func NewProcessor(currency string, store BookStore, outQ OutQ, deQueuer DeQueuer, m *metrics.Metrics) *Processor {
	return &Processor{
		currency: currency,
		store:    store,
		DeQueuer: deQueuer,
		OutQ:     outQ,
		metrics:  m,
	}
}

// Run drains the pair's queue until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	queue := p.Queue(p.currency)

	slog.Info("Processor Started.", "curr", p.currency)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Processor Stopped.", "curr", p.currency)

			return nil
		case event, ok := <-queue:
			if !ok {
				return nil
			}

			if err := p.Process(ctx, event); err != nil {
				slog.Info("Processor Stopped.", "curr", p.currency, "Error", err)

				return nil
			}
		}
	}
}

// Process applies one event to the book, records it and forwards it
// downstream. A malformed event is dropped; the only error is ctx ending
// while the out-queue is full.
func (p *Processor) Process(ctx context.Context, event *dtos.BookEvent) error {
	start := time.Now()

	res, err := p.updateOrderBook(event)
	if err != nil {
		slog.Error("Discarding event.", "curr", p.currency, "type", event.EventType, "Error", err)
		p.metrics.RecordParseError("processor")

		return nil
	}

	if res.stale {
		// applied anyway, the book clock just does not move back
		slog.Debug("Stale event applied.", "curr", p.currency, "event time", event.EventTime)
		p.metrics.RecordStale(p.currency)
	}

	p.metrics.RecordApplied(p.currency, event.EventType, float64(time.Since(start).Microseconds())/1000)
	p.metrics.RecordDepth(p.currency, res.bids, res.asks)

	// push update to users
	return p.AddToOutQ(ctx, event)
}
