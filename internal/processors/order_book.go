package processors

import (
	"fmt"

	"ob-engine/internal/dtos"
	"ob-engine/internal/marketdata"
)

// result of applying one event to a book
type applied struct {
	stale      bool
	bids, asks int
}

// updateOrderBook applies every level of the event to the pair's book in one
// critical section, so readers never observe half an event.
func (p *Processor) updateOrderBook(event *dtos.BookEvent) (applied, error) {
	var res applied

	if err := event.Validate(); err != nil {
		return res, err
	}

	bids, asks, err := event.Levels()
	if err != nil {
		return res, err
	}

	ts := event.Timestamp()

	err = p.store.Apply(p.currency, func(book *marketdata.OrderBook) {
		if event.EventType == dtos.EventSnapshot {
			book.Set(marketdata.NewOrderBook(ts, asks, bids,
				marketdata.WithCurrencyPair(p.currency),
				marketdata.WithOriginID(event.OriginID)))
		} else {
			if cur, ok := book.Timestamp(); ok && !ts.IsZero() && ts.Before(cur) {
				res.stale = true
			}

			p.processLevels(book, event.EventType, bids)
			p.processLevels(book, event.EventType, asks)
		}

		res.bids = book.Depth(marketdata.Bid)
		res.asks = book.Depth(marketdata.Ask)
	})
	if err != nil {
		return res, fmt.Errorf("apply %s event: %w", event.EventType, err)
	}

	return res, nil
}

// depth updates carry the resulting size, level updates carry the full level.
func (p *Processor) processLevels(book *marketdata.OrderBook, eventType string, levels []marketdata.LimitOrder) {
	for _, level := range levels {
		if eventType == dtos.EventDepthUpdate {
			book.ApplyUpdate(marketdata.OrderBookUpdate{
				LimitOrder:  level,
				TotalVolume: level.TradableAmount,
			})

			continue
		}

		book.Update(level)
	}
}
