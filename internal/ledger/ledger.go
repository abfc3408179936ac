// Package ledger turns fills into per-participant cash, inventory, and
// PnL truth. Lots close strictly first-in-first-out, and reserved
// (committed but unexecuted) resources track separately from settled ones
// so available capacity never double-counts resting orders.
package ledger

import (
	"fmt"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"
)

// Lot is an unclosed quantity-price pair. Quantity is signed: positive is
// a long remainder, negative a short remainder.
type Lot struct {
	Quantity int64
	Price    float64
}

// Ledger is one participant's account. It is driven exclusively through
// ApplyFill and CancelReservation by the single simulation thread.
type Ledger struct {
	participantID int

	cash      float64
	inventory int64
	realized  float64

	reservedCash  float64
	reservedLong  int64
	reservedShort int64

	lots []Lot

	// strict turns reservation underflow into a panic instead of a clamp.
	// Clamping masks double-release bugs; tests run strict.
	strict bool
}

func New(participantID int) *Ledger {
	return &Ledger{participantID: participantID}
}

// NewStrict builds a ledger that panics when a reservation release would
// take a reserved counter below zero.
func NewStrict(participantID int) *Ledger {
	return &Ledger{participantID: participantID, strict: true}
}

// ParticipantID returns the owner of this ledger.
func (l *Ledger) ParticipantID() int { return l.participantID }

// ApplyFill advances the account by one fill. Reservation fills only move
// the reserved counters. Execution fills settle cash and inventory at the
// fill price, release the matching reservation when the fill is the
// participant's own resting order trading (Maker), and run FIFO lot
// closing against the open position.
func (l *Ledger) ApplyFill(f book.Fill) {
	if f.Reservation {
		if f.Cancellation {
			l.release(f.Side, f.Quantity, f.Price)
		} else {
			l.reserve(f.Side, f.Quantity, f.Price)
		}
		return
	}

	qty := f.Quantity
	if qty <= 0 {
		return
	}
	signed := qty
	if f.Side == book.Sell {
		signed = -qty
	}

	l.cash -= float64(signed) * f.Price
	l.inventory += signed
	if f.Maker {
		l.release(f.Side, qty, f.Price)
	}
	l.closeLots(signed, f.Price)
}

// CancelReservation releases a reservation directly, mirroring a book-side
// cancellation confirmed by the driver.
func (l *Ledger) CancelReservation(side book.Side, quantity int64, price float64) {
	l.release(side, quantity, price)
}

func (l *Ledger) reserve(side book.Side, qty int64, price float64) {
	if qty <= 0 {
		return
	}
	if side == book.Buy {
		l.reservedCash += float64(qty) * price
		l.reservedLong += qty
	} else {
		l.reservedShort += qty
	}
}

func (l *Ledger) release(side book.Side, qty int64, price float64) {
	if qty <= 0 {
		return
	}
	if side == book.Buy {
		l.reservedCash = l.clampCash(l.reservedCash - float64(qty)*price)
		l.reservedLong = l.clampQty(l.reservedLong - qty)
	} else {
		l.reservedShort = l.clampQty(l.reservedShort - qty)
	}
}

func (l *Ledger) clampCash(v float64) float64 {
	if v < 0 {
		if l.strict {
			panic(fmt.Sprintf("ledger %d: reserved cash underflow (%f)", l.participantID, v))
		}
		return 0
	}
	return v
}

func (l *Ledger) clampQty(v int64) int64 {
	if v < 0 {
		if l.strict {
			panic(fmt.Sprintf("ledger %d: reserved inventory underflow (%d)", l.participantID, v))
		}
		return 0
	}
	return v
}

// closeLots consumes opposite-direction lots oldest first, realizing PnL
// per closed unit, then opens a new lot with whatever quantity remains.
func (l *Ledger) closeLots(signed int64, price float64) {
	remaining := signed
	for remaining != 0 && len(l.lots) > 0 {
		front := &l.lots[0]
		if (front.Quantity > 0) == (remaining > 0) {
			break
		}
		closed := abs64(remaining)
		if a := abs64(front.Quantity); a < closed {
			closed = a
		}
		if front.Quantity > 0 {
			// long lot closed by a sell
			l.realized += (price - front.Price) * float64(closed)
			front.Quantity -= closed
			remaining += closed
		} else {
			// short lot closed by a buy
			l.realized += (front.Price - price) * float64(closed)
			front.Quantity += closed
			remaining -= closed
		}
		if front.Quantity == 0 {
			l.lots = l.lots[1:]
		}
	}
	if remaining != 0 {
		l.lots = append(l.lots, Lot{Quantity: remaining, Price: price})
	}
}

// UnrealizedPnL marks every open lot against the given market price.
func (l *Ledger) UnrealizedPnL(marketPrice float64) float64 {
	var total float64
	for _, lot := range l.lots {
		if lot.Quantity > 0 {
			total += (marketPrice - lot.Price) * float64(lot.Quantity)
		} else {
			total += (lot.Price - marketPrice) * float64(-lot.Quantity)
		}
	}
	return total
}

// AvailableCash is settled cash minus cash committed to resting bids.
func (l *Ledger) AvailableCash() float64 { return l.cash - l.reservedCash }

// AvailableInventory is settled inventory minus inventory committed to
// resting asks. Long capacity is gated by available cash instead; the long
// reservation counter exists for audit symmetry.
func (l *Ledger) AvailableInventory() int64 { return l.inventory - l.reservedShort }

func (l *Ledger) Cash() float64         { return l.cash }
func (l *Ledger) Inventory() int64      { return l.inventory }
func (l *Ledger) RealizedPnL() float64  { return l.realized }
func (l *Ledger) ReservedCash() float64 { return l.reservedCash }
func (l *Ledger) ReservedLong() int64   { return l.reservedLong }
func (l *Ledger) ReservedShort() int64  { return l.reservedShort }

// Deposit credits settled cash, e.g. a participant's starting balance.
func (l *Ledger) Deposit(amount float64) { l.cash += amount }

// Lots returns a copy of the open lots, oldest first.
func (l *Ledger) Lots() []Lot {
	out := make([]Lot, len(l.lots))
	copy(out, l.lots)
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
