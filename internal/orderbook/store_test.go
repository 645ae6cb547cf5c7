package orderbook

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"ob-engine/internal/dtos"
	"ob-engine/internal/marketdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ask(price, qty int64) marketdata.LimitOrder {
	return marketdata.NewLimitOrder(marketdata.Ask, decimal.NewFromInt(qty), marketdata.CurrencyPair{}, "", time.Time{}, decimal.NewFromInt(price))
}

func TestStoreUnknownPair(t *testing.T) {
	s := NewStore()

	assert.ErrorIs(t, s.Update("BTC/USDT", ask(100, 1)), ErrUnknownPair)
	_, err := s.Snapshot("BTC/USDT")
	assert.ErrorIs(t, err, ErrUnknownPair)
	_, err = s.GetOrderBook("BTC/USDT")
	assert.ErrorIs(t, err, ErrUnknownPair)
}

func TestStoreInitIsIdempotent(t *testing.T) {
	s := NewStore()
	s.InitOrderBook("BTC/USDT")
	require.NoError(t, s.Update("BTC/USDT", ask(100, 1)))

	s.InitOrderBook("BTC/USDT")
	book, err := s.Snapshot("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 1, book.Depth(marketdata.Ask))

	s.InitOrderBook("ETH/USDT")
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, s.Pairs())

	s.RemoveOrderBook("BTC/USDT")
	assert.Equal(t, []string{"ETH/USDT"}, s.Pairs())
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.InitOrderBook("BTC/USDT")
	require.NoError(t, s.Update("BTC/USDT", ask(100, 1)))

	snap, err := s.Snapshot("BTC/USDT")
	require.NoError(t, err)

	require.NoError(t, s.ApplyUpdate("BTC/USDT", marketdata.OrderBookUpdate{LimitOrder: ask(100, 1), TotalVolume: decimal.Zero}))

	assert.Equal(t, 1, snap.Depth(marketdata.Ask))
	live, err := s.Snapshot("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 0, live.Depth(marketdata.Ask))
}

func TestStoreReplaceKeepsLabel(t *testing.T) {
	s := NewStore()
	s.InitOrderBook("BTC/USDT")

	src := marketdata.NewOrderBook(time.UnixMilli(1_700_000_000_000), []marketdata.LimitOrder{ask(101, 2), ask(100, 1)}, nil,
		marketdata.WithCurrencyPair("other"), marketdata.WithOriginID(5))
	require.NoError(t, s.Replace("BTC/USDT", src))

	raw, err := s.GetOrderBook("BTC/USDT")
	require.NoError(t, err)

	var snap dtos.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "BTC/USDT", snap.Symbol)
	assert.Equal(t, 5, snap.OriginID)
	assert.Equal(t, int64(1_700_000_000_000), snap.Timestamp)
	assert.Equal(t, [][]string{{"100", "1"}, {"101", "2"}}, snap.Asks)

	summary, err := s.Summary("BTC/USDT")
	require.NoError(t, err)
	assert.Contains(t, summary, "1700000000000,5,BTC/USDT,ASK,100,1")
}

func TestStoreConcurrentWritersAndReaders(t *testing.T) {
	s := NewStore()
	s.InitOrderBook("BTC/USDT")

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(2)

		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = s.Update("BTC/USDT", ask(int64(100+(i+w)%50), 1))
			}
		}(w)

		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				book, err := s.Snapshot("BTC/USDT")
				if err != nil {
					t.Error(err)
					return
				}

				asks := book.Asks()
				for j := 1; j < len(asks); j++ {
					if asks[j-1].Compare(asks[j]) >= 0 {
						t.Error("asks out of order")
						return
					}
				}
			}
		}()
	}

	wg.Wait()

	book, err := s.Snapshot("BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 50, book.Depth(marketdata.Ask))
}
