package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderBookUpdate states the new absolute size at a price. A zero
// TotalVolume means the level has been drained.
type OrderBookUpdate struct {
	LimitOrder  LimitOrder
	TotalVolume decimal.Decimal
}

func NewOrderBookUpdate(typ OrderType, volume decimal.Decimal, pair CurrencyPair, price decimal.Decimal, ts time.Time, totalVolume decimal.Decimal) OrderBookUpdate {
	return OrderBookUpdate{
		LimitOrder:  NewLimitOrder(typ, volume, pair, "", ts, price),
		TotalVolume: totalVolume,
	}
}
