package transform_test

import (
	"testing"

	"github.com/inkstream/isf/transform"
	"github.com/stretchr/testify/require"
)

func TestForwardInverseRoundTrip(t *testing.T) {
	cases := [][]int64{
		{},
		{5},
		{1, 2},
		{100, 105, 110, 108, 90, -20, -25, 0},
		{-1, -2, 3, 1000, -1000},
	}
	for _, original := range cases {
		a := append([]int64(nil), original...)
		transform.Forward(a)
		transform.Inverse(a)
		require.Equal(t, original, a)
	}
}

func TestForwardKnownValues(t *testing.T) {
	a := []int64{10, 25, 45}
	transform.Forward(a)
	// d[0] = 10, d[1] = 25 - 20 = 5, d[2] = 45 - 50 + 10 = 5
	require.Equal(t, []int64{10, 5, 5}, a)
}

func TestInverseKnownValues(t *testing.T) {
	d := []int64{10, 5, 5}
	transform.Inverse(d)
	require.Equal(t, []int64{10, 25, 45}, d)
}
