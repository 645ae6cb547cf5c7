// Package marketdata holds the market data value types and the order book
// engine that keeps both sides of a book sorted while updates are applied.
package marketdata

import (
	"fmt"
	"strings"
	"time"

	tree "github.com/emirpasic/gods/trees/redblacktree"
)

// summaryDepth bounds the number of levels per side in ShortString.
const summaryDepth = 10

// Comparator defines the total order of price levels inside a side.
type Comparator func(a, b LimitOrder) int

// Option configures an OrderBook at construction.
type Option func(*OrderBook)

// WithComparator replaces the default LimitOrder.Compare ordering.
func WithComparator(c Comparator) Option {
	return func(b *OrderBook) {
		b.cmp = c
	}
}

// WithCurrencyPair sets the free-form pair label of the book.
func WithCurrencyPair(pair string) Option {
	return func(b *OrderBook) {
		b.currencyPair = pair
	}
}

// WithOriginID tags the book with the id of the feed it came from.
func WithOriginID(id int) Option {
	return func(b *OrderBook) {
		b.originID = id
	}
}

// OrderBook is a live view of both sides of a market. Asks and bids are kept
// sorted under the comparator with at most one level per key.
//
// An OrderBook is not safe for concurrent use. The comparator must be total
// and stable for the lifetime of the book; an inconsistent comparator breaks
// the sort invariant and is not detected.
type OrderBook struct {
	currencyPair string
	// zero when unknown
	timestamp time.Time
	asks      *tree.Tree
	bids      *tree.Tree
	originID  int
	cmp       Comparator
}

// NewEmptyOrderBook returns a book with no levels and no timestamp.
func NewEmptyOrderBook(opts ...Option) *OrderBook {
	b := &OrderBook{
		cmp: LimitOrder.Compare,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.asks = b.newSide()
	b.bids = b.newSide()

	return b
}

// NewOrderBook builds a book from caller supplied levels which need not be
// sorted. A later level with the same key replaces an earlier one. The
// levels' own timestamps do not move the book timestamp.
func NewOrderBook(ts time.Time, asks, bids []LimitOrder, opts ...Option) *OrderBook {
	b := NewEmptyOrderBook(opts...)
	b.timestamp = ts

	for _, o := range asks {
		b.put(b.asks, o)
	}

	for _, o := range bids {
		b.put(b.bids, o)
	}

	return b
}

func (b *OrderBook) newSide() *tree.Tree {
	cmp := b.cmp

	return tree.NewWith(func(x, y interface{}) int {
		return cmp(x.(LimitOrder), y.(LimitOrder))
	})
}

func (b *OrderBook) side(typ OrderType) *tree.Tree {
	if typ == Ask {
		return b.asks
	}

	return b.bids
}

// put stores o under its key, replacing key and value of an equal level.
func (b *OrderBook) put(side *tree.Tree, o LimitOrder) {
	side.Put(o, o)
}

// Update replaces the level matching o in full, or inserts o at its sorted
// position, then advances the timestamp.
func (b *OrderBook) Update(o LimitOrder) {
	b.put(b.side(o.Type), o)
	b.updateDate(o.Timestamp)
}

// ApplyUpdate sets the absolute size at a price. A zero total volume removes
// the level when present.
func (b *OrderBook) ApplyUpdate(u OrderBookUpdate) {
	o := u.LimitOrder
	side := b.side(o.Type)

	if u.TotalVolume.IsZero() {
		side.Remove(o)
	} else {
		b.put(side, o.WithAmount(u.TotalVolume))
	}

	b.updateDate(o.Timestamp)
}

// updateDate moves the timestamp forward only. Contents are still updated by
// callers when the incoming time is stale, which tolerates out of order feeds.
func (b *OrderBook) updateDate(t time.Time) {
	if t.IsZero() {
		return
	}

	if b.timestamp.IsZero() || t.After(b.timestamp) {
		b.timestamp = t
	}
}

// Timestamp reports the as-of time of the book and whether it is known.
func (b *OrderBook) Timestamp() (time.Time, bool) {
	return b.timestamp, !b.timestamp.IsZero()
}

func (b *OrderBook) CurrencyPair() string {
	return b.currencyPair
}

func (b *OrderBook) SetCurrencyPair(pair string) {
	b.currencyPair = pair
}

func (b *OrderBook) OriginID() int {
	return b.originID
}

func (b *OrderBook) SetOriginID(id int) {
	b.originID = id
}

// Orders returns a copy of one side in sorted order.
func (b *OrderBook) Orders(typ OrderType) []LimitOrder {
	return levels(b.side(typ))
}

func (b *OrderBook) Asks() []LimitOrder {
	return levels(b.asks)
}

func (b *OrderBook) Bids() []LimitOrder {
	return levels(b.bids)
}

// Depth is the number of levels on one side.
func (b *OrderBook) Depth(typ OrderType) int {
	return b.side(typ).Size()
}

// Best returns the first level of a side under the comparator.
func (b *OrderBook) Best(typ OrderType) (LimitOrder, bool) {
	node := b.side(typ).Left()
	if node == nil {
		return LimitOrder{}, false
	}

	return node.Value.(LimitOrder), true
}

func levels(side *tree.Tree) []LimitOrder {
	out := make([]LimitOrder, 0, side.Size())

	it := side.Iterator()
	for it.Next() {
		out = append(out, it.Value().(LimitOrder))
	}

	return out
}

// Set overwrites the receiver with the contents of src: pair, timestamp,
// origin and both sides, copied by value. The timestamp is taken as is, even
// when it is older than the receiver's.
func (b *OrderBook) Set(src *OrderBook) {
	b.currencyPair = src.currencyPair
	b.timestamp = src.timestamp
	b.originID = src.originID

	b.asks.Clear()
	b.bids.Clear()

	for _, o := range levels(src.asks) {
		b.put(b.asks, o)
	}

	for _, o := range levels(src.bids) {
		b.put(b.bids, o)
	}
}

// Clone returns an independent copy sharing the comparator.
func (b *OrderBook) Clone() *OrderBook {
	c := NewEmptyOrderBook(WithComparator(b.cmp))
	c.Set(b)

	return c
}

// Equal reports whether both books have the same timestamp and the same
// levels in the same order. Pair label and origin are not compared.
func (b *OrderBook) Equal(other *OrderBook) bool {
	if b == nil || other == nil {
		return b == other
	}

	if !b.timestamp.Equal(other.timestamp) {
		return false
	}

	return b.OrdersEqual(other)
}

// OrdersEqual is Equal without the timestamp: it tells whether two books hold
// identical levels regardless of how stale either one is.
func (b *OrderBook) OrdersEqual(other *OrderBook) bool {
	if b == nil || other == nil {
		return b == other
	}

	return sameLevels(b.bids, other.bids) && sameLevels(b.asks, other.asks)
}

func sameLevels(x, y *tree.Tree) bool {
	if x.Size() != y.Size() {
		return false
	}

	ix, iy := x.Iterator(), y.Iterator()
	for ix.Next() && iy.Next() {
		if !ix.Value().(LimitOrder).Equal(iy.Value().(LimitOrder)) {
			return false
		}
	}

	return true
}

func (b *OrderBook) String() string {
	return fmt.Sprintf("OrderBook [timestamp: %s, asks=%v, bids=%v]", formatMillis(b.timestamp), b.Asks(), b.Bids())
}

// ShortString is a bounded multi-line summary for logs: at most ten bid
// levels then at most ten ask levels, each prefixed with the timestamp in
// epoch milliseconds, the origin and the pair.
func (b *OrderBook) ShortString() string {
	prefix := formatMillis(b.timestamp) + "," + fmt.Sprint(b.originID) + "," + b.currencyPair

	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] bids=%d asks=%d\n", prefix, b.bids.Size(), b.asks.Size())
	writeSide(&sb, prefix, Bid, b.bids)
	writeSide(&sb, prefix, Ask, b.asks)

	return sb.String()
}

func writeSide(sb *strings.Builder, prefix string, typ OrderType, side *tree.Tree) {
	count := 0

	it := side.Iterator()
	for count < summaryDepth && it.Next() {
		o := it.Value().(LimitOrder)
		fmt.Fprintf(sb, "%s,%s,%s\n", prefix, typ, strings.TrimSuffix(o.ShortString(), " "))
		count++
	}
}
