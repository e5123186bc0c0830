package shipper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBalancerEqualWeights(t *testing.T) {
	b := newBalancer([]int{1, 1, 1})

	counts := make(map[int]int)
	for i := 0; i < 9; i++ {
		counts[b.next()]++
	}
	require.Equal(t, map[int]int{0: 3, 1: 3, 2: 3}, counts)
}

func TestBalancerWeighted(t *testing.T) {
	b := newBalancer([]int{3, 1})

	counts := make(map[int]int)
	for i := 0; i < 8; i++ {
		counts[b.next()]++
	}
	// Twice around: three batches to the heavy endpoint for every one to
	// the light one.
	require.Equal(t, map[int]int{0: 6, 1: 2}, counts)
}

func TestBalancerRejectsBadWeights(t *testing.T) {
	require.Panics(t, func() { newBalancer(nil) })
	require.Panics(t, func() { newBalancer([]int{0}) })
	require.Panics(t, func() { newBalancer([]int{101}) })
}
