package marketdata

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable executed trade. Two trades are the same trade when
// their ids match.
type Trade struct {
	typ            OrderType
	originalAmount decimal.Decimal
	currencyPair   CurrencyPair
	price          decimal.Decimal
	timestamp      time.Time
	id             string
	exchange       string
}

func (t Trade) Type() OrderType {
	return t.typ
}

func (t Trade) OriginalAmount() decimal.Decimal {
	return t.originalAmount
}

func (t Trade) CurrencyPair() CurrencyPair {
	return t.currencyPair
}

func (t Trade) Price() decimal.Decimal {
	return t.price
}

func (t Trade) Timestamp() time.Time {
	return t.timestamp
}

func (t Trade) ID() string {
	return t.id
}

func (t Trade) Exchange() string {
	return t.exchange
}

func (t Trade) Equal(other Trade) bool {
	return t.id == other.id
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade [type=%s, originalAmount=%s, currencyPair=%s, price=%s, timestamp=%s, id=%s]",
		t.typ, t.originalAmount, t.currencyPair, t.price, formatMillis(t.timestamp), t.id)
}

func (t Trade) ShortString() string {
	return fmt.Sprintf("%s,%s,%s,%s,%s,%s \n", formatMillis(t.timestamp), t.currencyPair, t.typ, t.price, t.originalAmount, t.id)
}

// TradeBuilder collects trade fields. A builder can be built once.
type TradeBuilder struct {
	t     Trade
	built bool
	now   func() time.Time
}

func NewTradeBuilder() *TradeBuilder {
	return &TradeBuilder{now: time.Now}
}

// TradeBuilderFrom seeds a builder with the fields of an existing trade.
func TradeBuilderFrom(t Trade) *TradeBuilder {
	b := NewTradeBuilder()
	b.t = t

	return b
}

func (b *TradeBuilder) Type(typ OrderType) *TradeBuilder {
	b.t.typ = typ
	return b
}

func (b *TradeBuilder) OriginalAmount(v decimal.Decimal) *TradeBuilder {
	b.t.originalAmount = v
	return b
}

func (b *TradeBuilder) CurrencyPair(p CurrencyPair) *TradeBuilder {
	b.t.currencyPair = p
	return b
}

func (b *TradeBuilder) Price(v decimal.Decimal) *TradeBuilder {
	b.t.price = v
	return b
}

func (b *TradeBuilder) Timestamp(ts time.Time) *TradeBuilder {
	b.t.timestamp = ts
	return b
}

func (b *TradeBuilder) ID(id string) *TradeBuilder {
	b.t.id = id
	return b
}

func (b *TradeBuilder) Exchange(name string) *TradeBuilder {
	b.t.exchange = name
	return b
}

// Build returns the trade, stamping it with the current time when no
// timestamp was given. Building twice panics.
func (b *TradeBuilder) Build() Trade {
	if b.built {
		panic("marketdata: trade has already been built")
	}

	b.built = true

	if b.t.timestamp.IsZero() {
		b.t.timestamp = b.now()
	}

	return b.t
}
