package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitOrderCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b LimitOrder
		want int
	}{
		{"ask lower price first", level(Ask, 100, 1, time.Time{}), level(Ask, 101, 1, time.Time{}), -1},
		{"bid higher price first", level(Bid, 101, 1, time.Time{}), level(Bid, 100, 1, time.Time{}), -1},
		{"same price same side", level(Ask, 100, 1, time.Time{}), level(Ask, 100, 9, t0), 0},
		{"bid before ask", level(Bid, 200, 1, time.Time{}), level(Ask, 100, 1, time.Time{}), -1},
		{"ask after bid", level(Ask, 100, 1, time.Time{}), level(Bid, 200, 1, time.Time{}), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestLimitOrderCompareIgnoresScale(t *testing.T) {
	a := level(Ask, 100, 1, time.Time{})
	b := a
	b.LimitPrice = decimal.RequireFromString("100.000")

	assert.Equal(t, 0, a.Compare(b))
	assert.True(t, a.Equal(b))
}

func TestLimitOrderEqual(t *testing.T) {
	base := level(Bid, 100, 1, t0)

	other := base
	other.ID = "x"
	assert.False(t, base.Equal(other))

	other = base
	other.Timestamp = t0.Add(time.Millisecond)
	assert.False(t, base.Equal(other))

	other = base.WithAmount(decimal.NewFromInt(2))
	assert.False(t, base.Equal(other))
	assert.Equal(t, "1", base.TradableAmount.String())

	other = base
	other.CurrencyPair = NewCurrencyPair("eth", "usdt")
	assert.False(t, base.Equal(other))

	assert.True(t, base.Equal(level(Bid, 100, 1, t0)))
}

func TestLimitOrderShortString(t *testing.T) {
	o := NewLimitOrder(Ask, decimal.RequireFromString("0.5"), btcUsdt, "", time.Time{}, decimal.RequireFromString("101.25"))

	assert.Equal(t, "101.25,0.5 ", o.ShortString())
	assert.Contains(t, o.String(), "timestamp=null")
}

func TestParseOrderType(t *testing.T) {
	for in, want := range map[string]OrderType{"bid": Bid, "BUY": Bid, "ask": Ask, " Sell ": Ask} {
		got, err := ParseOrderType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOrderType("mid")
	assert.Error(t, err)

	assert.Equal(t, "ASK", Ask.String())
	assert.Equal(t, "BID", Bid.String())
}

func TestParseCurrencyPair(t *testing.T) {
	p, err := ParseCurrencyPair("btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, btcUsdt, p)
	assert.Equal(t, "BTC/USDT", p.String())

	for _, bad := range []string{"BTCUSDT", "/USDT", "BTC/"} {
		_, err := ParseCurrencyPair(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "", CurrencyPair{}.String())
}
