package comps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeight_Buckets(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 10},
		{0.05, 10},
		{0.1, 8},
		{0.2, 8},
		{0.25, 6},
		{0.49, 6},
		{0.5, 4},
		{0.74, 4},
		{0.75, 2},
		{0.9, 2},
		{5, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Weight(tt.distance), "distance %v", tt.distance)
	}
}

func TestWeight_UnknownDistance(t *testing.T) {
	assert.Equal(t, NeutralWeight, Weight(DistanceUnknown))
	assert.Equal(t, NeutralWeight, Weight(math.NaN()))
}

func TestWeight_MonotoneNonIncreasing(t *testing.T) {
	prev := Weight(0)
	for d := 0.0; d <= 2.0; d += 0.01 {
		w := Weight(d)
		assert.LessOrEqual(t, w, prev, "weight must not increase with distance (at %v)", d)
		assert.Positive(t, w)
		prev = w
	}
}
