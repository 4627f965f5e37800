package common

import (
	"sync/atomic"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{1, 7, 64, 1000} {
		counters := make([]int32, n)
		Parallelize(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&counters[i], 1)
			}
		})
		for i, c := range counters {
			require.Equal(t, int32(1), c, "index %d of %d", i, n)
		}
	}
}

func TestPowers(t *testing.T) {
	var a, b fr.Element
	a.SetUint64(2)
	b.SetUint64(3)

	result := Powers(&a, &b, 4)

	var expected fr.Element
	for i, factor := range []uint64{2, 6, 18, 54} {
		expected.SetUint64(factor)
		require.True(t, result[i].Equal(&expected), "power %d", i)
	}
}
