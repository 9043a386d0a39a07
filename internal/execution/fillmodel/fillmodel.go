// Package fillmodel implements the pure, deterministic top-of-book
// executability decision the paper execution adapter delegates to.
package fillmodel

import (
	"math"

	"mmrl/pkg/types"
)

// OrderView is the subset of order-record state a fill model needs to
// decide executability, independent of the execution adapter's full
// record type.
type OrderView struct {
	Side      types.Side
	Price     *float64 // nil = market order
	Remaining float64
	Status    types.OrderStatus
}

// BBO is the top-of-book quote a fill model matches against.
type BBO struct {
	BidPrice float64
	BidSize  float64
	AskPrice float64
	AskSize  float64
}

// Decision is the outcome of a fill-model evaluation. Executable=true
// implies a finite positive FillPrice and FillQty, with
// FillQty <= order.Remaining + epsilon.
type Decision struct {
	Executable bool
	FillPrice  float64
	FillQty    float64
}

// Model is a pure function (order, bbo) -> Decision.
type Model interface {
	Decide(order OrderView, bbo BBO) Decision
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func baseline(order OrderView, bbo BBO) (topBid, topAsk float64, ok bool) {
	if order.Status != types.OrderOpen {
		return 0, 0, false
	}
	if order.Price == nil || !finite(*order.Price) {
		return 0, 0, false
	}
	if !finite(bbo.BidPrice) || !finite(bbo.AskPrice) {
		return 0, 0, false
	}
	if !(bbo.BidPrice > 0) || !(bbo.AskPrice > 0) {
		return 0, 0, false
	}
	return bbo.BidPrice, bbo.AskPrice, true
}

// TopOfBookFull fills the full remaining quantity at the opposing top of
// book once the order's limit price crosses it. Market orders (nil price)
// are never executable in this model.
type TopOfBookFull struct{}

func (TopOfBookFull) Decide(order OrderView, bbo BBO) Decision {
	bid, ask, ok := baseline(order, bbo)
	if !ok {
		return Decision{}
	}
	switch order.Side {
	case types.Buy:
		if *order.Price+types.Epsilon >= ask {
			return Decision{Executable: true, FillPrice: ask, FillQty: order.Remaining}
		}
	case types.Sell:
		if *order.Price-types.Epsilon <= bid {
			return Decision{Executable: true, FillPrice: bid, FillQty: order.Remaining}
		}
	}
	return Decision{}
}

// TopOfBookCapped behaves like TopOfBookFull but caps the fill quantity at
// the displayed top-of-book size, and requires that displayed size be
// strictly positive (beyond epsilon).
type TopOfBookCapped struct{}

func (TopOfBookCapped) Decide(order OrderView, bbo BBO) Decision {
	bid, ask, ok := baseline(order, bbo)
	if !ok {
		return Decision{}
	}
	switch order.Side {
	case types.Buy:
		if *order.Price+types.Epsilon >= ask && bbo.AskSize > types.Epsilon {
			return Decision{Executable: true, FillPrice: ask, FillQty: math.Min(order.Remaining, bbo.AskSize)}
		}
	case types.Sell:
		if *order.Price-types.Epsilon <= bid && bbo.BidSize > types.Epsilon {
			return Decision{Executable: true, FillPrice: bid, FillQty: math.Min(order.Remaining, bbo.BidSize)}
		}
	}
	return Decision{}
}
