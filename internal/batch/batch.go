// Package batch splits ordered sequences into fixed-size contiguous batches.
package batch

import "slices"

// DefaultSize is the number of items plotted or exported together.
const DefaultSize = 10

// Chunk splits items into ceil(len/size) batches preserving order. The final
// batch holds the remainder. A size below one is treated as DefaultSize.
// Batches share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = DefaultSize
	}
	if len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for c := range slices.Chunk(items, size) {
		batches = append(batches, c)
	}
	return batches
}

// FirstLast returns the first and last elements of a non-empty batch.
func FirstLast[T any](items []T) (first, last T, ok bool) {
	if len(items) == 0 {
		return first, last, false
	}
	return items[0], items[len(items)-1], true
}
