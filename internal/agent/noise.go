package agent

import (
	"math/rand"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"
)

// NoiseConfig bounds the random order flow of a NoiseTrader.
type NoiseConfig struct {
	PriceMin float64
	PriceMax float64
	QtyMin   int64
	QtyMax   int64
	// MarketRatio is the probability of a market order per tick, the rest
	// are limit orders. Zero keeps the trader limit-only.
	MarketRatio float64
}

func (c NoiseConfig) withDefaults() NoiseConfig {
	if c.PriceMin <= 0 {
		c.PriceMin = 99
	}
	if c.PriceMax <= c.PriceMin {
		c.PriceMax = c.PriceMin + 2
	}
	if c.QtyMin <= 0 {
		c.QtyMin = 1
	}
	if c.QtyMax < c.QtyMin {
		c.QtyMax = c.QtyMin + 9
	}
	if c.MarketRatio < 0 || c.MarketRatio > 1 {
		c.MarketRatio = 0.5
	}
	return c
}

// NoiseTrader submits one random order per tick: uniform price inside the
// configured band, uniform quantity, random side, and a coin flip between
// limit and market.
type NoiseTrader struct {
	id  int
	cfg NoiseConfig
	rng *rand.Rand
}

// NewNoiseTrader builds a noise trader with its own seeded RNG so runs
// reproduce deterministically.
func NewNoiseTrader(id int, cfg NoiseConfig, seed int64) *NoiseTrader {
	return &NoiseTrader{
		id:  id,
		cfg: cfg.withDefaults(),
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (n *NoiseTrader) ID() int { return n.id }

func (n *NoiseTrader) Act(b *book.OrderBook, timestamp int64) {
	side := book.Buy
	if n.rng.Intn(2) == 1 {
		side = book.Sell
	}
	qty := n.cfg.QtyMin + n.rng.Int63n(n.cfg.QtyMax-n.cfg.QtyMin+1)

	if n.rng.Float64() < n.cfg.MarketRatio {
		b.SubmitMarket(book.Order{
			ParticipantID: n.id,
			Quantity:      qty,
			Side:          side,
			Timestamp:     timestamp,
		})
		return
	}

	price := n.cfg.PriceMin + n.rng.Float64()*(n.cfg.PriceMax-n.cfg.PriceMin)
	b.SubmitLimit(book.Order{
		ParticipantID: n.id,
		Price:         price,
		Quantity:      qty,
		Side:          side,
		Timestamp:     timestamp,
	})
}

func (n *NoiseTrader) OnFill(book.Fill) {}
