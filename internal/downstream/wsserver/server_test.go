package wsserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ob-engine/internal/dtos"
	"ob-engine/internal/marketdata"
	"ob-engine/internal/metrics"
	"ob-engine/internal/orderbook"
	outqueues "ob-engine/internal/queues/out"
	"ob-engine/internal/subscriptions"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pair = "BTC/USDT"

type testEnv struct {
	http  *httptest.Server
	store *orderbook.OBStore
	subs  *subscriptions.Manager
	out   *outqueues.Queue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return newTestEnvWith(t, func(store *orderbook.OBStore, _ *outqueues.Queue) OBReader { return store })
}

func newTestEnvWith(t *testing.T, reader func(*orderbook.OBStore, *outqueues.Queue) OBReader) *testEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	store := orderbook.NewStore()
	store.InitOrderBook(pair)
	require.NoError(t, store.Update(pair, marketdata.NewLimitOrder(marketdata.Ask, decimal.NewFromInt(2), marketdata.CurrencyPair{}, "",
		time.UnixMilli(1_700_000_000_000), decimal.NewFromInt(101))))

	out := outqueues.NewQueue(4)
	subs := subscriptions.NewManager(out, m.Subscribers)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = subs.StartPushHandler(ctx)
	}()

	server := NewWSServer(":0", NewProcessor(reader(store, out), subs), reg)
	ts := httptest.NewServer(server.Handler)

	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})

	return &testEnv{http: ts, store: store, subs: subs, out: out}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	return string(msg)
}

func TestSubscribeSendsSnapshotThenUpdates(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("SUB "+pair)))

	var snap dtos.Snapshot
	require.NoError(t, json.Unmarshal([]byte(read(t, conn)), &snap))
	assert.Equal(t, pair, snap.Symbol)
	assert.Equal(t, [][]string{{"101", "2"}}, snap.Asks)

	require.Eventually(t, func() bool { return len(env.subs.Subscribers(pair)) == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, env.out.AddToOutQ(ctx, &dtos.BookEvent{EventType: dtos.EventDepthUpdate, Symbol: pair, Asks: [][]string{{"101", "0"}}}))
	require.NoError(t, env.out.AddToOutQ(ctx, &dtos.BookEvent{EventType: dtos.EventDepthUpdate, Symbol: "ETH/USDT"}))

	var ev dtos.BookEvent
	require.NoError(t, json.Unmarshal([]byte(read(t, conn)), &ev))
	assert.Equal(t, pair, ev.Symbol)
	assert.Equal(t, [][]string{{"101", "0"}}, ev.Asks)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("UNSUB "+pair)))
	require.Eventually(t, func() bool { return len(env.subs.Subscribers(pair)) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribeUnknownPairAndBadCommand(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("SUB DOGE/USDT")))
	assert.Contains(t, read(t, conn), "unknown currency pair")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("HELLO")))
	assert.Equal(t, "ERR unknown command", read(t, conn))

	assert.Empty(t, env.subs.Subscribers("DOGE/USDT"))
}

// drainingReader applies and forwards a drain of the 101 ask right after the
// first snapshot is read, as a processor running concurrently would.
type drainingReader struct {
	*orderbook.OBStore

	out  *outqueues.Queue
	once sync.Once
}

func (r *drainingReader) GetOrderBook(curr string) ([]byte, error) {
	book, err := r.OBStore.GetOrderBook(curr)

	r.once.Do(func() {
		_ = r.ApplyUpdate(pair, marketdata.NewOrderBookUpdate(marketdata.Ask, decimal.Zero, marketdata.CurrencyPair{},
			decimal.NewFromInt(101), time.UnixMilli(1_700_000_000_001), decimal.Zero))
		_ = r.out.AddToOutQ(context.Background(), &dtos.BookEvent{EventType: dtos.EventDepthUpdate, EventTime: 1_700_000_000_001,
			Symbol: pair, Asks: [][]string{{"101", "0"}}})
	})

	return book, err
}

func TestUpdateDuringSubscribeFollowsSnapshot(t *testing.T) {
	env := newTestEnvWith(t, func(store *orderbook.OBStore, out *outqueues.Queue) OBReader {
		return &drainingReader{OBStore: store, out: out}
	})
	conn := env.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("SUB "+pair)))

	var snap dtos.Snapshot
	require.NoError(t, json.Unmarshal([]byte(read(t, conn)), &snap))
	assert.Equal(t, [][]string{{"101", "2"}}, snap.Asks)

	var ev dtos.BookEvent
	require.NoError(t, json.Unmarshal([]byte(read(t, conn)), &ev))
	assert.Equal(t, dtos.EventDepthUpdate, ev.EventType)
	assert.Equal(t, [][]string{{"101", "0"}}, ev.Asks)

	book, err := env.store.Snapshot(pair)
	require.NoError(t, err)
	assert.Empty(t, book.Asks())
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestRESTRoutes(t *testing.T) {
	env := newTestEnv(t)

	code, body := get(t, env.http.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get(t, env.http.URL+"/books")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["BTC/USDT"]`, body)

	code, body = get(t, env.http.URL+"/book?pair=BTC/USDT")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"symbol":"BTC/USDT","originId":0,"timestamp":1700000000000,"bids":[],"asks":[["101","2"]]}`, body)

	code, body = get(t, env.http.URL+"/book/summary?pair=BTC/USDT")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "1700000000000,0,BTC/USDT,ASK,101,2")

	code, _ = get(t, env.http.URL+"/book?pair=DOGE/USDT")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = get(t, env.http.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "obengine_ws_subscribers")
}
