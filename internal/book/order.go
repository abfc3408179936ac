package book

// Side is the direction of an order or fill.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the side an order trades against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order is a single instruction against the book. Incoming orders carry no
// ID; the book assigns one if a remainder rests. Quantity is the remaining
// open quantity and is decremented in place as the order matches.
type Order struct {
	ID            uint64
	ParticipantID int
	Price         float64
	Quantity      int64
	Side          Side
	Timestamp     int64

	level *priceLevel
	next  *Order
	prev  *Order
}

// Fill records one economically meaningful event for one participant.
// ParticipantID is always the owner of the position the fill updates and
// Side is that participant's own side. Maker marks the passive role of an
// execution, i.e. the fill is the participant's resting order trading.
//
// Reservation fills do not move settled cash or inventory: they mark
// capital or inventory as committed when an order rests (Cancellation
// false) or release it again when the order is cancelled (Cancellation
// true).
type Fill struct {
	ParticipantID int
	Price         float64
	Quantity      int64
	Side          Side
	Timestamp     int64
	Reservation   bool
	Cancellation  bool
	Maker         bool
}
