package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"
)

func TestNoiseTraderStaysInBounds(t *testing.T) {
	cfg := NoiseConfig{PriceMin: 95, PriceMax: 105, QtyMin: 2, QtyMax: 8, MarketRatio: 0}
	n := NewNoiseTrader(1, cfg, 42)
	b := book.NewOrderBook()

	for ts := int64(0); ts < 200; ts++ {
		n.Act(b, ts)
	}

	require.NotZero(t, b.Len())
	for _, f := range b.Fills() {
		if !f.Reservation {
			continue
		}
		assert.GreaterOrEqual(t, f.Price, 95.0)
		assert.Less(t, f.Price, 105.0)
		assert.GreaterOrEqual(t, f.Quantity, int64(2))
		assert.LessOrEqual(t, f.Quantity, int64(8))
	}
}

func TestNoiseTraderDeterministicPerSeed(t *testing.T) {
	cfg := NoiseConfig{PriceMin: 99, PriceMax: 101}

	run := func(seed int64) []book.Fill {
		n := NewNoiseTrader(1, cfg, seed)
		b := book.NewOrderBook()
		for ts := int64(0); ts < 50; ts++ {
			n.Act(b, ts)
		}
		return append([]book.Fill(nil), b.Fills()...)
	}

	assert.Equal(t, run(7), run(7))
	assert.NotEqual(t, run(7), run(8))
}

func TestNoiseTraderLimitOnly(t *testing.T) {
	// a second participant provides liquidity to trade against
	b := book.NewOrderBook()
	b.SubmitLimit(book.Order{ParticipantID: 2, Price: 100, Quantity: 1000, Side: book.Sell, Timestamp: 0})
	b.SubmitLimit(book.Order{ParticipantID: 2, Price: 100, Quantity: 1000, Side: book.Buy, Timestamp: 0})
	b.ClearFills()

	n := NewNoiseTrader(1, NoiseConfig{PriceMin: 99, PriceMax: 101, MarketRatio: 0}, 3)
	for ts := int64(0); ts < 100; ts++ {
		n.Act(b, ts)
	}
	// limit-only flow still trades when marketable, but every fill carries
	// a price inside the configured band
	for _, f := range b.Fills() {
		assert.NotZero(t, f.Price)
	}
}

func TestNoiseConfigDefaults(t *testing.T) {
	cfg := NoiseConfig{}.withDefaults()
	assert.Equal(t, 99.0, cfg.PriceMin)
	assert.Equal(t, 101.0, cfg.PriceMax)
	assert.Equal(t, int64(1), cfg.QtyMin)
	assert.Equal(t, int64(10), cfg.QtyMax)
	assert.Equal(t, 0.5, cfg.MarketRatio)

	kept := NoiseConfig{PriceMin: 50, PriceMax: 60, QtyMin: 3, QtyMax: 4, MarketRatio: 0.1}.withDefaults()
	assert.Equal(t, NoiseConfig{PriceMin: 50, PriceMax: 60, QtyMin: 3, QtyMax: 4, MarketRatio: 0.1}, kept)
}

func TestMarketMakerQuotesBothSides(t *testing.T) {
	m := NewMarketMaker(1, MakerConfig{ReferencePrice: 100, Spread: 2, Quantity: 5})
	b := book.NewOrderBook()

	m.Act(b, 0)

	bid, ok := b.BestBid()
	require.True(t, ok)
	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, 99.0, bid)
	assert.Equal(t, 101.0, ask)
	assert.Equal(t, int64(5), b.RestingQuantity(book.Buy))
	assert.Equal(t, int64(5), b.RestingQuantity(book.Sell))
}

func TestMarketMakerReplacesQuotes(t *testing.T) {
	m := NewMarketMaker(1, MakerConfig{ReferencePrice: 100, Spread: 2, Quantity: 5})
	b := book.NewOrderBook()

	m.Act(b, 0)
	m.Act(b, 1)

	// still exactly one quote per side
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, int64(5), b.RestingQuantity(book.Buy))
	assert.Equal(t, int64(5), b.RestingQuantity(book.Sell))
}

func TestMarketMakerFollowsMid(t *testing.T) {
	m := NewMarketMaker(1, MakerConfig{ReferencePrice: 100, Spread: 2, Quantity: 5})
	b := book.NewOrderBook()

	// an external pair shifts the mid to 105
	b.SubmitLimit(book.Order{ParticipantID: 2, Price: 104, Quantity: 1, Side: book.Buy, Timestamp: 0})
	b.SubmitLimit(book.Order{ParticipantID: 3, Price: 106, Quantity: 1, Side: book.Sell, Timestamp: 0})

	m.Act(b, 1)

	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	assert.Equal(t, 104.0, bid, "maker bid 104 ties the external bid level")
	assert.Equal(t, 106.0, ask)
}

func TestMarketMakerEmptyBookUsesReference(t *testing.T) {
	m := NewMarketMaker(1, MakerConfig{})
	b := book.NewOrderBook()

	m.Act(b, 0)

	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	assert.Equal(t, 99.5, bid)
	assert.Equal(t, 100.5, ask)
}
