package book

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treePrices(t *levelTree) []float64 {
	var out []float64
	t.ascend(func(lvl *priceLevel) bool {
		out = append(out, lvl.price)
		return true
	})
	return out
}

func TestLevelTreeUpsert(t *testing.T) {
	tr := newLevelTree()
	assert.Zero(t, tr.len())
	assert.Nil(t, tr.minLevel())
	assert.Nil(t, tr.maxLevel())

	a := tr.upsertLevel(100)
	b := tr.upsertLevel(100)
	assert.Same(t, a, b, "upsert of an existing price returns the same level")
	assert.Equal(t, 1, tr.len())

	tr.upsertLevel(99)
	tr.upsertLevel(101)
	assert.Equal(t, 3, tr.len())
	assert.Equal(t, 99.0, tr.minLevel().price)
	assert.Equal(t, 101.0, tr.maxLevel().price)
}

func TestLevelTreeDelete(t *testing.T) {
	tr := newLevelTree()
	for _, p := range []float64{100, 98, 102, 99, 101} {
		tr.upsertLevel(p)
	}

	require.True(t, tr.deleteLevel(100))
	assert.False(t, tr.deleteLevel(100))
	assert.False(t, tr.deleteLevel(50))
	assert.Equal(t, 4, tr.len())
	assert.Nil(t, tr.findLevel(100))
	assert.Equal(t, []float64{98, 99, 101, 102}, treePrices(tr))
}

func TestLevelTreeAscendDescend(t *testing.T) {
	tr := newLevelTree()
	for _, p := range []float64{103, 101, 105, 100, 104} {
		tr.upsertLevel(p)
	}

	assert.Equal(t, []float64{100, 101, 103, 104, 105}, treePrices(tr))

	var down []float64
	tr.descend(func(lvl *priceLevel) bool {
		down = append(down, lvl.price)
		return true
	})
	assert.Equal(t, []float64{105, 104, 103, 101, 100}, down)
}

func TestLevelTreeIterationStopsEarly(t *testing.T) {
	tr := newLevelTree()
	for _, p := range []float64{1, 2, 3, 4} {
		tr.upsertLevel(p)
	}

	var seen int
	tr.ascend(func(lvl *priceLevel) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

func TestLevelTreeRandomised(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := newLevelTree()
	ref := map[float64]struct{}{}

	for i := 0; i < 5000; i++ {
		p := float64(rng.Intn(500))
		if rng.Intn(3) == 0 {
			_, exists := ref[p]
			assert.Equal(t, exists, tr.deleteLevel(p))
			delete(ref, p)
		} else {
			tr.upsertLevel(p)
			ref[p] = struct{}{}
		}
	}

	want := make([]float64, 0, len(ref))
	for p := range ref {
		want = append(want, p)
	}
	sort.Float64s(want)

	require.Equal(t, len(ref), tr.len())
	assert.Equal(t, want, treePrices(tr))
	if len(want) > 0 {
		assert.Equal(t, want[0], tr.minLevel().price)
		assert.Equal(t, want[len(want)-1], tr.maxLevel().price)
	}
}
