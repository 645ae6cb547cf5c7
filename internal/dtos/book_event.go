package dtos

import (
	"errors"
	"fmt"
	"time"

	"ob-engine/internal/marketdata"

	"github.com/shopspring/decimal"
)

const (
	EventSnapshot    = "snapshot"
	EventDepthUpdate = "depthUpdate"
	EventLevelUpdate = "levelUpdate"
)

var ErrUnknownEventType = errors.New("unknown event type")

// BookEvent is a normalised order book message. Levels are [price, qty]
// pairs as decimal strings. For depthUpdate events qty is the new total size
// at the price and "0" drains the level.
type BookEvent struct {
	EventType string     `json:"e"`
	EventTime int64      `json:"E"`
	Symbol    string     `json:"s"`
	OriginID  int        `json:"o"`
	Bids      [][]string `json:"b"`
	Asks      [][]string `json:"a"`
}

// Timestamp is the event time, or the zero time when the producer sent none.
func (e *BookEvent) Timestamp() time.Time {
	if e.EventTime == 0 {
		return time.Time{}
	}

	return time.UnixMilli(e.EventTime)
}

func (e *BookEvent) Validate() error {
	switch e.EventType {
	case EventSnapshot, EventDepthUpdate, EventLevelUpdate:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.EventType)
	}

	if e.Symbol == "" {
		return errors.New("event without symbol")
	}

	return nil
}

// Levels converts both sides of the event into price levels.
func (e *BookEvent) Levels() (bids, asks []marketdata.LimitOrder, err error) {
	pair := PairOf(e.Symbol)
	ts := e.Timestamp()

	bids, err = ParseLevels(marketdata.Bid, pair, ts, e.Bids)
	if err != nil {
		return nil, nil, fmt.Errorf("bids of %s: %w", e.Symbol, err)
	}

	asks, err = ParseLevels(marketdata.Ask, pair, ts, e.Asks)
	if err != nil {
		return nil, nil, fmt.Errorf("asks of %s: %w", e.Symbol, err)
	}

	return bids, asks, nil
}

// ParseLevels parses [price, qty] entries.
func ParseLevels(typ marketdata.OrderType, pair marketdata.CurrencyPair, ts time.Time, entries [][]string) ([]marketdata.LimitOrder, error) {
	out := make([]marketdata.LimitOrder, 0, len(entries))

	for i, entry := range entries {
		if len(entry) < 2 {
			return nil, fmt.Errorf("entry %d: want [price, qty], got %d fields", i, len(entry))
		}

		price, err := decimal.NewFromString(entry[0])
		if err != nil {
			return nil, fmt.Errorf("entry %d price: %w", i, err)
		}

		qty, err := decimal.NewFromString(entry[1])
		if err != nil {
			return nil, fmt.Errorf("entry %d quantity: %w", i, err)
		}

		out = append(out, marketdata.NewLimitOrder(typ, qty, pair, "", ts, price))
	}

	return out, nil
}

// PairOf reads BASE/COUNTER symbols; other labels give an empty pair.
func PairOf(symbol string) marketdata.CurrencyPair {
	pair, err := marketdata.ParseCurrencyPair(symbol)
	if err != nil {
		return marketdata.CurrencyPair{}
	}

	return pair
}
