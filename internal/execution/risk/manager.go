// Package risk implements the deterministic in-memory inventory and
// reservation ledger that gates every order submission. Reservations are
// the conservative (full-fill) worst-case exposure of all outstanding open
// orders, so check_new_order cannot be gamed by rapidly issuing multiple
// in-flight orders.
package risk

import (
	"log/slog"
	"math"

	"mmrl/pkg/types"
)

// Reason codes for rejected orders. Machine-friendly and stable across
// releases — downstream evaluation keys off these strings.
const (
	ReasonQtyInvalid      = "qty_non_positive_or_invalid"
	ReasonQtyExceedsMax   = "qty_exceeds_max_order_qty"
	ReasonInvalidPrice    = "invalid_price"
	ReasonNotionalExceeds = "notional_exceeds_max_order_notional"
	ReasonInventoryBreach = "inventory_limit_breach"
)

// Limits bounds a single order and the aggregate inventory a symbol may
// carry. MaxOrderNotional of zero disables the notional check.
type Limits struct {
	MaxOrderQty      float64
	MaxOrderNotional float64
	MaxAbsInventory  float64
}

// CheckResult is the outcome of CheckNewOrder.
type CheckResult struct {
	OK     bool
	Reason string
}

type reservation struct {
	Symbol       string
	Side         types.Side
	RemainingAbs float64
}

// Manager is a deterministic, single-symbol-agnostic ledger: one instance
// tracks inventory and reservations across every symbol in the run.
type Manager struct {
	limits               Limits
	inventoryBySymbol    map[string]float64
	reservedBySymbol     map[string]float64
	reservationByOrderID map[string]reservation
	logger               *slog.Logger
}

// NewManager returns a manager enforcing limits, logging through logger.
func NewManager(limits Limits, logger *slog.Logger) *Manager {
	return &Manager{
		limits:               limits,
		inventoryBySymbol:    make(map[string]float64),
		reservedBySymbol:     make(map[string]float64),
		reservationByOrderID: make(map[string]reservation),
		logger:               logger,
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// CheckNewOrder runs the pre-trade gate in order: quantity validity,
// per-order quantity cap, price validity and notional cap, then projected
// aggregate exposure. On success it records a conservative reservation for
// orderID (if given and not already reserved).
func (m *Manager) CheckNewOrder(symbol string, side types.Side, qty float64, price *float64, orderID string) CheckResult {
	if !finite(qty) || !(qty > 0) {
		return CheckResult{Reason: ReasonQtyInvalid}
	}
	if qty > m.limits.MaxOrderQty+types.Epsilon {
		return CheckResult{Reason: ReasonQtyExceedsMax}
	}
	if price != nil {
		if !finite(*price) || !(*price > 0) {
			return CheckResult{Reason: ReasonInvalidPrice}
		}
		if m.limits.MaxOrderNotional > 0 && qty*(*price) > m.limits.MaxOrderNotional+types.Epsilon {
			return CheckResult{Reason: ReasonNotionalExceeds}
		}
	}

	projected := m.inventoryBySymbol[symbol] + m.reservedBySymbol[symbol] + side.Signed()*qty
	if math.Abs(projected) > m.limits.MaxAbsInventory+types.Epsilon {
		return CheckResult{Reason: ReasonInventoryBreach}
	}

	if orderID != "" {
		if _, exists := m.reservationByOrderID[orderID]; !exists {
			m.reservationByOrderID[orderID] = reservation{Symbol: symbol, Side: side, RemainingAbs: qty}
			m.reservedBySymbol[symbol] += side.Signed() * qty
		}
	}
	return CheckResult{OK: true}
}

// OnFill applies a fill's effect on inventory and, if a reservation exists
// for orderID on the same symbol, shrinks the reservation by the delta
// between the new and old remaining quantity. The reservation is dropped
// once remainingQty drops to (near) zero.
func (m *Manager) OnFill(symbol string, side types.Side, qty float64, orderID string, remainingQty float64) {
	m.inventoryBySymbol[symbol] += side.Signed() * qty

	if orderID == "" {
		return
	}
	res, ok := m.reservationByOrderID[orderID]
	if !ok || res.Symbol != symbol {
		return
	}
	oldContribution := res.Side.Signed() * res.RemainingAbs
	newContribution := res.Side.Signed() * remainingQty
	m.reservedBySymbol[symbol] += newContribution - oldContribution

	if remainingQty <= types.Epsilon {
		delete(m.reservationByOrderID, orderID)
		return
	}
	res.RemainingAbs = remainingQty
	m.reservationByOrderID[orderID] = res
}

// OnCancel releases the reservation held for orderID, if any.
func (m *Manager) OnCancel(orderID string) {
	res, ok := m.reservationByOrderID[orderID]
	if !ok {
		return
	}
	m.reservedBySymbol[res.Symbol] -= res.Side.Signed() * res.RemainingAbs
	if math.Abs(m.reservedBySymbol[res.Symbol]) < types.Epsilon {
		m.reservedBySymbol[res.Symbol] = 0
	}
	delete(m.reservationByOrderID, orderID)
}

// Inventory returns the current tracked inventory for symbol.
func (m *Manager) Inventory(symbol string) float64 { return m.inventoryBySymbol[symbol] }

// Reserved returns the current aggregate reservation for symbol.
func (m *Manager) Reserved(symbol string) float64 { return m.reservedBySymbol[symbol] }

// OpenReservationCount returns the number of outstanding reservations,
// used by tests asserting no reservations remain for non-open orders at
// run termination.
func (m *Manager) OpenReservationCount() int { return len(m.reservationByOrderID) }
