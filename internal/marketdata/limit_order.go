package marketdata

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LimitOrder is a single price level on one side of a book. It is treated as
// an immutable value; use WithAmount to derive a level with another size.
type LimitOrder struct {
	Type           OrderType
	TradableAmount decimal.Decimal
	CurrencyPair   CurrencyPair
	// ID is empty when the feed does not identify levels.
	ID string
	// Timestamp is the zero time when not provided.
	Timestamp  time.Time
	LimitPrice decimal.Decimal
}

func NewLimitOrder(typ OrderType, amount decimal.Decimal, pair CurrencyPair, id string, ts time.Time, price decimal.Decimal) LimitOrder {
	return LimitOrder{
		Type:           typ,
		TradableAmount: amount,
		CurrencyPair:   pair,
		ID:             id,
		Timestamp:      ts,
		LimitPrice:     price,
	}
}

// Compare orders levels of the same side by price, ascending for asks and
// descending for bids, so the best price is always first. Across sides a bid
// sorts before an ask.
func (o LimitOrder) Compare(other LimitOrder) int {
	if o.Type != other.Type {
		if o.Type == Bid {
			return -1
		}

		return 1
	}

	c := o.LimitPrice.Cmp(other.LimitPrice)
	if o.Type == Bid {
		return -c
	}

	return c
}

// Equal compares every field; decimals are compared numerically.
func (o LimitOrder) Equal(other LimitOrder) bool {
	return o.Type == other.Type &&
		o.TradableAmount.Equal(other.TradableAmount) &&
		o.CurrencyPair == other.CurrencyPair &&
		o.ID == other.ID &&
		o.Timestamp.Equal(other.Timestamp) &&
		o.LimitPrice.Equal(other.LimitPrice)
}

// WithAmount returns a copy of the level with its size replaced.
func (o LimitOrder) WithAmount(amount decimal.Decimal) LimitOrder {
	o.TradableAmount = amount

	return o
}

func (o LimitOrder) String() string {
	return fmt.Sprintf("LimitOrder [limitPrice=%s, type=%s, tradableAmount=%s, currencyPair=%s, id=%s, timestamp=%s]",
		o.LimitPrice, o.Type, o.TradableAmount, o.CurrencyPair, o.ID, formatMillis(o.Timestamp))
}

func (o LimitOrder) ShortString() string {
	return o.LimitPrice.String() + "," + o.TradableAmount.String() + " "
}

func formatMillis(t time.Time) string {
	if t.IsZero() {
		return "null"
	}

	return fmt.Sprintf("%d", t.UnixMilli())
}
