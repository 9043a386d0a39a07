// Package orderbook reconstructs a per-symbol L2 depth map from level
// updates and derives the best-bid-ask tuple, mirroring the price-level
// bookkeeping style of a depth-map order book but trimmed to what the
// paper venue and strategy need: top of book, not full matching.
package orderbook

import (
	"fmt"
	"math"

	"mmrl/pkg/types"
)

// Level is a single resting price/size pair.
type Level struct {
	Price float64
	Size  float64
}

// Book holds the two price→size mappings for one symbol. All prices are
// strictly positive; a size of zero deletes the level.
type Book struct {
	Symbol string
	bids   map[float64]float64
	asks   map[float64]float64
}

// New returns an empty book for symbol.
func New(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		bids:   make(map[float64]float64),
		asks:   make(map[float64]float64),
	}
}

// Apply validates and folds a single level update into the book. size==0
// deletes the level; otherwise the level is set (inserted or replaced).
func (b *Book) Apply(side types.BookSide, price, size float64) error {
	if !(price > 0) {
		return fmt.Errorf("orderbook: price must be > 0, got %v", price)
	}
	if size < 0 {
		return fmt.Errorf("orderbook: size must be >= 0, got %v", size)
	}

	var levels map[float64]float64
	switch side {
	case types.BookBid:
		levels = b.bids
	case types.BookAsk:
		levels = b.asks
	default:
		return fmt.Errorf("orderbook: unknown side %q", side)
	}

	if size == 0 {
		delete(levels, price)
		return nil
	}
	levels[price] = size
	return nil
}

// Best returns the current top of book on each side. ok is false for a
// side with no resting levels.
func (b *Book) Best() (bid Level, bidOK bool, ask Level, askOK bool) {
	bestBidPx := math.Inf(-1)
	for px := range b.bids {
		if px > bestBidPx {
			bestBidPx = px
		}
	}
	if bestBidPx != math.Inf(-1) {
		bid = Level{Price: bestBidPx, Size: b.bids[bestBidPx]}
		bidOK = true
	}

	bestAskPx := math.Inf(1)
	for px := range b.asks {
		if px < bestAskPx {
			bestAskPx = px
		}
	}
	if bestAskPx != math.Inf(1) {
		ask = Level{Price: bestAskPx, Size: b.asks[bestAskPx]}
		askOK = true
	}
	return bid, bidOK, ask, askOK
}
