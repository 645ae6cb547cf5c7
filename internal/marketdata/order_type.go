package marketdata

import (
	"fmt"
	"strings"
)

// OrderType is the side of the book a price level belongs to.
type OrderType int

const (
	Bid OrderType = iota
	Ask
)

func (t OrderType) String() string {
	if t == Ask {
		return "ASK"
	}

	return "BID"
}

// ParseOrderType accepts bid/buy and ask/sell in any case.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	}

	return Bid, fmt.Errorf("unknown order type %q", s)
}
