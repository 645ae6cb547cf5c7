package marketdata

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is an immutable price summary for a pair. Build it with
// NewTickerBuilder.
type Ticker struct {
	currencyPair CurrencyPair
	open         decimal.Decimal
	last         decimal.Decimal
	bid          decimal.Decimal
	ask          decimal.Decimal
	high         decimal.Decimal
	low          decimal.Decimal
	vwap         decimal.Decimal
	volume       decimal.Decimal
	quoteVolume  decimal.Decimal
	timestamp    time.Time
	exchange     string
}

func (t Ticker) CurrencyPair() CurrencyPair {
	return t.currencyPair
}

func (t Ticker) Open() decimal.Decimal {
	return t.open
}

func (t Ticker) Last() decimal.Decimal {
	return t.last
}

func (t Ticker) Bid() decimal.Decimal {
	return t.bid
}

func (t Ticker) Ask() decimal.Decimal {
	return t.ask
}

func (t Ticker) High() decimal.Decimal {
	return t.high
}

func (t Ticker) Low() decimal.Decimal {
	return t.low
}

func (t Ticker) Vwap() decimal.Decimal {
	return t.vwap
}

func (t Ticker) Volume() decimal.Decimal {
	return t.volume
}

func (t Ticker) QuoteVolume() decimal.Decimal {
	return t.quoteVolume
}

func (t Ticker) Timestamp() time.Time {
	return t.timestamp
}

func (t Ticker) Exchange() string {
	return t.exchange
}

func (t Ticker) String() string {
	return fmt.Sprintf("Ticker [currencyPair=%s, open=%s, last=%s, bid=%s, ask=%s, high=%s, low=%s, avg=%s, volume=%s, quoteVolume=%s, timestamp=%s]",
		t.currencyPair, t.open, t.last, t.bid, t.ask, t.high, t.low, t.vwap, t.volume, t.quoteVolume, formatMillis(t.timestamp))
}

func (t Ticker) ShortString() string {
	return fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s\n", formatMillis(t.timestamp), t.exchange, t.currencyPair, t.bid, t.ask, t.last, t.volume)
}

// TickerBuilder collects ticker fields. A builder can be built once.
type TickerBuilder struct {
	t     Ticker
	built bool
}

func NewTickerBuilder() *TickerBuilder {
	return &TickerBuilder{}
}

func (b *TickerBuilder) CurrencyPair(p CurrencyPair) *TickerBuilder {
	b.t.currencyPair = p
	return b
}

func (b *TickerBuilder) Open(v decimal.Decimal) *TickerBuilder {
	b.t.open = v
	return b
}

func (b *TickerBuilder) Last(v decimal.Decimal) *TickerBuilder {
	b.t.last = v
	return b
}

func (b *TickerBuilder) Bid(v decimal.Decimal) *TickerBuilder {
	b.t.bid = v
	return b
}

func (b *TickerBuilder) Ask(v decimal.Decimal) *TickerBuilder {
	b.t.ask = v
	return b
}

func (b *TickerBuilder) High(v decimal.Decimal) *TickerBuilder {
	b.t.high = v
	return b
}

func (b *TickerBuilder) Low(v decimal.Decimal) *TickerBuilder {
	b.t.low = v
	return b
}

func (b *TickerBuilder) Vwap(v decimal.Decimal) *TickerBuilder {
	b.t.vwap = v
	return b
}

func (b *TickerBuilder) Volume(v decimal.Decimal) *TickerBuilder {
	b.t.volume = v
	return b
}

func (b *TickerBuilder) QuoteVolume(v decimal.Decimal) *TickerBuilder {
	b.t.quoteVolume = v
	return b
}

func (b *TickerBuilder) Timestamp(ts time.Time) *TickerBuilder {
	b.t.timestamp = ts
	return b
}

func (b *TickerBuilder) Exchange(name string) *TickerBuilder {
	b.t.exchange = name
	return b
}

// Build returns the ticker. Building twice is a programming error and panics.
func (b *TickerBuilder) Build() Ticker {
	if b.built {
		panic("marketdata: ticker has already been built")
	}

	b.built = true

	return b.t
}
