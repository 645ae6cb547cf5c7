package orderbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"ob-engine/internal/dtos"
	"ob-engine/internal/marketdata"
)

var ErrUnknownPair = errors.New("unknown currency pair")

// entry guards a single book. Every engine operation on the book and every
// read of its levels happens under mu.
type entry struct {
	mu   sync.Mutex
	book *marketdata.OrderBook
}

type OBStore struct {
	mu    sync.RWMutex
	store map[string]*entry
}

func NewStore() *OBStore {
	return &OBStore{
		store: make(map[string]*entry),
	}
}

// initialize order book instance from the ob store for the given currency
func (s *OBStore) InitOrderBook(currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store[currency]; ok {
		return
	}

	s.store[currency] = &entry{
		book: marketdata.NewEmptyOrderBook(marketdata.WithCurrencyPair(currency)),
	}
	slog.Info("Order Book Initiated for ", "currency", currency)
}

// remove order book instance from the ob store for a given currency
func (s *OBStore) RemoveOrderBook(currency string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, currency)
}

func (s *OBStore) Pairs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := make([]string, 0, len(s.store))
	for currency := range s.store {
		pairs = append(pairs, currency)
	}

	slices.Sort(pairs)

	return pairs
}

func (s *OBStore) lookup(currency string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.store[currency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPair, currency)
	}

	return e, nil
}

// Apply runs fn on the book of currency while holding its lock. fn must not
// keep a reference to the book after it returns.
func (s *OBStore) Apply(currency string, fn func(book *marketdata.OrderBook)) error {
	e, err := s.lookup(currency)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.book)

	return nil
}

// replace or insert a single price level
func (s *OBStore) Update(currency string, order marketdata.LimitOrder) error {
	return s.Apply(currency, func(book *marketdata.OrderBook) {
		book.Update(order)
	})
}

// apply an absolute size update, zero volume drains the level
func (s *OBStore) ApplyUpdate(currency string, update marketdata.OrderBookUpdate) error {
	return s.Apply(currency, func(book *marketdata.OrderBook) {
		book.ApplyUpdate(update)
	})
}

// Replace overwrites the stored book with the contents of src. The stored
// book keeps its pair label.
func (s *OBStore) Replace(currency string, src *marketdata.OrderBook) error {
	return s.Apply(currency, func(book *marketdata.OrderBook) {
		book.Set(src)
		book.SetCurrencyPair(currency)
	})
}

// Snapshot returns a copy of the book taken under its lock.
func (s *OBStore) Snapshot(currency string) (*marketdata.OrderBook, error) {
	var snapshot *marketdata.OrderBook

	err := s.Apply(currency, func(book *marketdata.OrderBook) {
		snapshot = book.Clone()
	})

	return snapshot, err
}

// return json string of a order book to send to the subscribed user
func (s *OBStore) GetOrderBook(currency string) ([]byte, error) {
	book, err := s.Snapshot(currency)
	if err != nil {
		return nil, err
	}

	jsonStr, err := json.Marshal(dtos.NewSnapshot(book))
	if err != nil {
		slog.Error("error on parsing order book to json", "Error", err)

		return nil, err
	}

	return jsonStr, nil
}

func (s *OBStore) Summary(currency string) (string, error) {
	var summary string

	err := s.Apply(currency, func(book *marketdata.OrderBook) {
		summary = book.ShortString()
	})

	return summary, err
}
