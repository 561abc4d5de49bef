package batch_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosurvey/internal/batch"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestChunkSizes(t *testing.T) {
	cases := []struct {
		n     int
		sizes []int
	}{
		{0, nil},
		{3, []int{3}},
		{10, []int{10}},
		{15, []int{10, 5}},
		{20, []int{10, 10}},
		{23, []int{10, 10, 3}},
	}
	for _, tc := range cases {
		items := seq(tc.n)
		batches := batch.Chunk(items, 10)

		var sizes []int
		var joined []int
		for _, b := range batches {
			sizes = append(sizes, len(b))
			joined = append(joined, b...)
		}
		assert.Equal(t, tc.sizes, sizes, "n=%d", tc.n)
		if tc.n > 0 {
			assert.Equal(t, items, joined, "n=%d", tc.n)
		}
	}
}

func TestChunkInvalidSizeFallsBack(t *testing.T) {
	batches := batch.Chunk(seq(12), 0)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], batch.DefaultSize)
}

func TestChunkStrings(t *testing.T) {
	dates := []string{"D1", "D2", "D3"}
	batches := batch.Chunk(dates, 2)
	require.Len(t, batches, 2)
	assert.True(t, slices.Equal(batches[1], []string{"D3"}))
}

func TestFirstLast(t *testing.T) {
	first, last, ok := batch.FirstLast([]string{"a", "b", "c"})
	require.True(t, ok)
	assert.Equal(t, "a", first)
	assert.Equal(t, "c", last)

	_, _, ok = batch.FirstLast([]string(nil))
	assert.False(t, ok)
}
