// Package position tracks signed per-symbol inventory, a size-weighted
// average entry price, and realized PnL — generalized from a two-sided
// YES/NO binary-market ledger to single signed inventory per symbol.
package position

import (
	"math"
	"sort"

	"mmrl/pkg/types"
)

// Position is the accounting state for one symbol. Inventory is signed:
// positive long, negative short.
type Position struct {
	Symbol      string
	Inventory   float64
	AvgPrice    float64
	RealizedPnL float64
}

// Book is the per-symbol registry of positions, mirroring the execution
// adapter's one-position-per-symbol ownership.
type Book struct {
	positions map[string]*Position
}

// NewBook returns an empty position book.
func NewBook() *Book {
	return &Book{positions: make(map[string]*Position)}
}

// OnFill applies a fill of qty>0 at price>0 on side to symbol's position
// and returns the updated snapshot.
//
// Flat -> opens at (signed_qty, price). Same-direction -> weighted average
// of entry price, inventory accumulates. Opposite-direction -> the closed
// portion realizes (exit-entry)*closed (long reducing) or
// (entry-exit)*closed (short reducing); a residual that flips sign reopens
// at the fill price; a residual of exactly zero resets avg price to zero.
func (b *Book) OnFill(symbol string, side types.Side, qty, price float64) Position {
	pos := b.positions[symbol]
	if pos == nil {
		pos = &Position{Symbol: symbol}
		b.positions[symbol] = pos
	}

	signed := side.Signed() * qty

	switch {
	case math.Abs(pos.Inventory) <= types.Epsilon:
		pos.Inventory = signed
		pos.AvgPrice = price

	case sameSign(pos.Inventory, signed):
		newInv := pos.Inventory + signed
		pos.AvgPrice = (pos.AvgPrice*math.Abs(pos.Inventory) + price*qty) / math.Abs(newInv)
		pos.Inventory = newInv

	default:
		closeQty := math.Min(math.Abs(pos.Inventory), qty)
		if pos.Inventory > 0 {
			pos.RealizedPnL += (price - pos.AvgPrice) * closeQty
		} else {
			pos.RealizedPnL += (pos.AvgPrice - price) * closeQty
		}
		newInv := pos.Inventory + signed
		switch {
		case math.Abs(newInv) <= types.Epsilon:
			pos.Inventory = 0
			pos.AvgPrice = 0
		case !sameSign(pos.Inventory, newInv):
			pos.Inventory = newInv
			pos.AvgPrice = price
		default:
			pos.Inventory = newInv
		}
	}

	return *pos
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// Snapshot returns the current position for symbol, zero-valued if none
// has been recorded yet.
func (b *Book) Snapshot(symbol string) Position {
	if pos := b.positions[symbol]; pos != nil {
		return *pos
	}
	return Position{Symbol: symbol}
}

// All returns a snapshot of every tracked position, ordered by symbol.
func (b *Book) All() []Position {
	out := make([]Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
