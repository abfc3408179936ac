package agent

import "github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"

// MakerConfig shapes a MarketMaker's quotes.
type MakerConfig struct {
	// ReferencePrice anchors quotes while the book is empty and has never
	// traded.
	ReferencePrice float64
	Spread         float64
	Quantity       int64
}

func (c MakerConfig) withDefaults() MakerConfig {
	if c.ReferencePrice <= 0 {
		c.ReferencePrice = 100
	}
	if c.Spread <= 0 {
		c.Spread = 1
	}
	if c.Quantity <= 0 {
		c.Quantity = 5
	}
	return c
}

// MarketMaker keeps a two-sided quote around the mid price. Each tick it
// cancels whatever is left of last tick's quotes and posts a fresh pair at
// half a spread either side of the mid.
type MarketMaker struct {
	id  int
	cfg MakerConfig

	bidID uint64
	askID uint64
}

func NewMarketMaker(id int, cfg MakerConfig) *MarketMaker {
	return &MarketMaker{id: id, cfg: cfg.withDefaults()}
}

func (m *MarketMaker) ID() int { return m.id }

func (m *MarketMaker) Act(b *book.OrderBook, timestamp int64) {
	if m.bidID != 0 {
		b.Cancel(m.bidID)
		m.bidID = 0
	}
	if m.askID != 0 {
		b.Cancel(m.askID)
		m.askID = 0
	}

	mid := b.MidPrice()
	if mid <= 0 {
		mid = m.cfg.ReferencePrice
	}
	half := m.cfg.Spread / 2

	m.bidID, _ = b.SubmitLimit(book.Order{
		ParticipantID: m.id,
		Price:         mid - half,
		Quantity:      m.cfg.Quantity,
		Side:          book.Buy,
		Timestamp:     timestamp,
	})
	m.askID, _ = b.SubmitLimit(book.Order{
		ParticipantID: m.id,
		Price:         mid + half,
		Quantity:      m.cfg.Quantity,
		Side:          book.Sell,
		Timestamp:     timestamp,
	})
}

func (m *MarketMaker) OnFill(book.Fill) {}
