package orderbook

import "ob-engine/internal/marketdata"

// provides abstraction of the order books to the application
type Store interface {
	InitOrderBook(currency string)
	RemoveOrderBook(currency string)
	Pairs() []string
	Apply(currency string, fn func(book *marketdata.OrderBook)) error
	Update(currency string, order marketdata.LimitOrder) error
	ApplyUpdate(currency string, update marketdata.OrderBookUpdate) error
	Replace(currency string, book *marketdata.OrderBook) error
	Snapshot(currency string) (*marketdata.OrderBook, error)
	GetOrderBook(currency string) ([]byte, error)
	Summary(currency string) (string, error)
}

type StoreHandler struct {
	Store
}

func NewStoreHandler(store Store) *StoreHandler {
	return &StoreHandler{
		Store: store,
	}
}
