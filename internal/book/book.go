package book

import "fmt"

// OrderBook holds both sides of the market, an id index over resting
// orders, the last trade price, and the pending fill buffer. Fills
// accumulate until the driver drains and clears them; the book never
// clears the buffer on its own.
type OrderBook struct {
	bids   *levelTree
	asks   *levelTree
	orders map[uint64]*Order

	nextID    uint64
	lastTrade float64
	lastActor int
	fills     []Fill
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:   newLevelTree(),
		asks:   newLevelTree(),
		orders: make(map[uint64]*Order),
	}
}

// SubmitLimit matches a limit order against the opposite side while it
// crosses, then rests any remainder at its price level. The returned id is
// the resting order's id, or zero if the order filled completely or was
// rejected. Resting a remainder appends a reservation fill to the pending
// buffer so the owner's ledger can mark the committed capital.
func (b *OrderBook) SubmitLimit(o Order) (uint64, []Fill) {
	if o.Quantity <= 0 || o.ParticipantID <= 0 || !(o.Price > 0) {
		return 0, nil
	}
	b.lastActor = o.ParticipantID

	fills := b.matchIncoming(&o, true)
	if o.Quantity == 0 {
		return 0, fills
	}

	b.nextID++
	rest := o
	rest.ID = b.nextID
	b.tree(rest.Side).upsertLevel(rest.Price).enqueue(&rest)
	b.orders[rest.ID] = &rest

	b.fills = append(b.fills, Fill{
		ParticipantID: rest.ParticipantID,
		Price:         rest.Price,
		Quantity:      rest.Quantity,
		Side:          rest.Side,
		Timestamp:     rest.Timestamp,
		Reservation:   true,
		Maker:         true,
	})
	return rest.ID, fills
}

// SubmitMarket walks the opposite side from the best price outward and
// matches as much as the book allows. Orders with non-positive quantity or
// an invalid participant id are rejected with an empty result. Whatever
// cannot be matched is dropped; market orders never rest.
func (b *OrderBook) SubmitMarket(o Order) []Fill {
	if o.Quantity <= 0 || o.ParticipantID <= 0 {
		return nil
	}
	b.lastActor = o.ParticipantID
	return b.matchIncoming(&o, false)
}

// matchIncoming runs the matching loop for an incoming order. Each price
// level gets exactly one pass in arrival order. Resting orders owned by
// the incoming participant are skipped in place, which keeps FIFO priority
// intact for everyone else at the level. If a level still holds orders
// after its pass while the incoming order is unfilled, the remaining
// entries were all self-owned skips and the walk stops rather than
// reaching past them to deeper levels.
func (b *OrderBook) matchIncoming(o *Order, limited bool) []Fill {
	var taken []Fill
	opp := b.tree(o.Side.Opposite())

	for o.Quantity > 0 {
		var lvl *priceLevel
		if o.Side == Buy {
			lvl = opp.minLevel()
		} else {
			lvl = opp.maxLevel()
		}
		if lvl == nil {
			break
		}
		if limited {
			if o.Side == Buy && lvl.price > o.Price {
				break
			}
			if o.Side == Sell && lvl.price < o.Price {
				break
			}
		}

		for cur := lvl.head; cur != nil && o.Quantity > 0; {
			next := cur.next
			if cur.ParticipantID == o.ParticipantID {
				cur = next
				continue
			}

			qty := o.Quantity
			if cur.Quantity < qty {
				qty = cur.Quantity
			}
			o.Quantity -= qty
			cur.Quantity -= qty
			lvl.reduce(qty)
			b.lastTrade = lvl.price

			passive := Fill{
				ParticipantID: cur.ParticipantID,
				Price:         lvl.price,
				Quantity:      qty,
				Side:          cur.Side,
				Timestamp:     o.Timestamp,
				Maker:         true,
			}
			active := Fill{
				ParticipantID: o.ParticipantID,
				Price:         lvl.price,
				Quantity:      qty,
				Side:          o.Side,
				Timestamp:     o.Timestamp,
			}
			b.fills = append(b.fills, passive, active)
			taken = append(taken, active)

			if cur.Quantity == 0 {
				b.removeResting(cur)
			}
			cur = next
		}

		if lvl.count == 0 {
			continue
		}
		break
	}
	return taken
}

// Cancel removes a resting order. It reports false when the id is unknown
// (already filled or never rested). A successful cancel appends a
// cancellation reservation fill carrying the cancelled quantity and price
// so the owner's ledger releases the matching reservation.
func (b *OrderBook) Cancel(orderID uint64) bool {
	o, ok := b.orders[orderID]
	if !ok {
		return false
	}
	if o.level == nil {
		panic(fmt.Sprintf("book: id index holds unlinked order %d", orderID))
	}
	b.lastActor = o.ParticipantID
	b.fills = append(b.fills, Fill{
		ParticipantID: o.ParticipantID,
		Price:         o.Price,
		Quantity:      o.Quantity,
		Side:          o.Side,
		Timestamp:     o.Timestamp,
		Reservation:   true,
		Cancellation:  true,
		Maker:         true,
	})
	b.removeResting(o)
	return true
}

// removeResting unlinks an order from its level and the id index, dropping
// the level when it empties.
func (b *OrderBook) removeResting(o *Order) {
	lvl := o.level
	if lvl == nil {
		panic(fmt.Sprintf("book: order %d has no price level", o.ID))
	}
	lvl.unlink(o)
	delete(b.orders, o.ID)
	if lvl.count == 0 {
		if !b.tree(o.Side).deleteLevel(lvl.price) {
			panic(fmt.Sprintf("book: level %v missing from %s tree", lvl.price, o.Side))
		}
	}
}

// BestBid returns the highest resting bid price, if any.
func (b *OrderBook) BestBid() (float64, bool) {
	lvl := b.bids.maxLevel()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *OrderBook) BestAsk() (float64, bool) {
	lvl := b.asks.minLevel()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

// MidPrice is the bid/ask midpoint, the single existing best price when
// one side is empty, or the last trade price when both sides are empty.
func (b *OrderBook) MidPrice() float64 {
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	switch {
	case hasBid && hasAsk:
		return (bid + ask) / 2
	case hasBid:
		return bid
	case hasAsk:
		return ask
	default:
		return b.lastTrade
	}
}

// LastTradePrice returns the price of the most recent match, zero before
// the first trade.
func (b *OrderBook) LastTradePrice() float64 { return b.lastTrade }

// LastActor returns the participant that last mutated the book.
func (b *OrderBook) LastActor() int { return b.lastActor }

// Fills returns the pending fill buffer in generation order. The slice is
// only valid until ClearFills.
func (b *OrderBook) Fills() []Fill { return b.fills }

// ClearFills resets the pending fill buffer.
func (b *OrderBook) ClearFills() { b.fills = b.fills[:0] }

// Resting returns a copy of the resting order with the given id.
func (b *OrderBook) Resting(orderID uint64) (Order, bool) {
	o, ok := b.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Len returns the number of resting orders across both sides.
func (b *OrderBook) Len() int { return len(b.orders) }

// RestingQuantity sums the open quantity resting on one side.
func (b *OrderBook) RestingQuantity(side Side) int64 {
	var total int64
	b.tree(side).ascend(func(lvl *priceLevel) bool {
		total += lvl.totalQty
		return true
	})
	return total
}

func (b *OrderBook) tree(side Side) *levelTree {
	if side == Buy {
		return b.bids
	}
	return b.asks
}
