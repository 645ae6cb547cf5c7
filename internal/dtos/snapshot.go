package dtos

import (
	"ob-engine/internal/marketdata"
)

// Snapshot is the JSON form of a book sent to downstream users.
type Snapshot struct {
	Symbol    string     `json:"symbol"`
	OriginID  int        `json:"originId"`
	Timestamp int64      `json:"timestamp,omitempty"`
	Bids      [][]string `json:"bids"`
	Asks      [][]string `json:"asks"`
}

func NewSnapshot(book *marketdata.OrderBook) Snapshot {
	s := Snapshot{
		Symbol:   book.CurrencyPair(),
		OriginID: book.OriginID(),
		Bids:     entries(book.Bids()),
		Asks:     entries(book.Asks()),
	}

	if ts, ok := book.Timestamp(); ok {
		s.Timestamp = ts.UnixMilli()
	}

	return s
}

func entries(levels []marketdata.LimitOrder) [][]string {
	out := make([][]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, []string{l.LimitPrice.String(), l.TradableAmount.String()})
	}

	return out
}
