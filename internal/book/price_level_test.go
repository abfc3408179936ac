package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevelQueue(t *testing.T) {
	lvl := &priceLevel{price: 100}
	a := &Order{ID: 1, Quantity: 3}
	b := &Order{ID: 2, Quantity: 4}
	c := &Order{ID: 3, Quantity: 5}
	for _, o := range []*Order{a, b, c} {
		lvl.enqueue(o)
	}

	assert.Equal(t, 3, lvl.count)
	assert.Equal(t, int64(12), lvl.totalQty)
	assert.Same(t, a, lvl.head)
	assert.Same(t, c, lvl.tail)
	assert.Same(t, lvl, b.level)

	// unlink from the middle keeps FIFO order for the rest
	lvl.unlink(b)
	assert.Equal(t, 2, lvl.count)
	assert.Equal(t, int64(8), lvl.totalQty)
	assert.Same(t, c, a.next)
	assert.Same(t, a, c.prev)
	assert.Nil(t, b.level)
	assert.Nil(t, b.next)
	assert.Nil(t, b.prev)

	lvl.unlink(a)
	lvl.unlink(c)
	require.Zero(t, lvl.count)
	assert.Nil(t, lvl.head)
	assert.Nil(t, lvl.tail)
	assert.Zero(t, lvl.totalQty)
}

func TestPriceLevelReduceClamps(t *testing.T) {
	lvl := &priceLevel{price: 100}
	lvl.enqueue(&Order{ID: 1, Quantity: 3})

	lvl.reduce(2)
	assert.Equal(t, int64(1), lvl.totalQty)
	lvl.reduce(5)
	assert.Zero(t, lvl.totalQty)
}
