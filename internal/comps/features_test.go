package comps

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-ai/valuation-cli/internal/model"
)

func comparable(price float64, area int, weight float64) model.Comparable {
	c := testCandidate()
	c.Price = price
	c.AreaSqft = area
	return model.Comparable{CandidateRecord: c, Weight: weight}
}

func TestBuild_WeightedScenario(t *testing.T) {
	// Subject 1169 sqft, condition 5; comparables (300000, w=10) and
	// (310000, w=2): weighted mean 3,620,000/12 = 301,666.67 → 301,667.
	comps := []model.Comparable{
		comparable(300000, 1169, 10),
		comparable(310000, 1169, 2),
	}

	fs, err := Build(comps, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, fs.TotalComparables)
	assert.Equal(t, int64(301667), fs.AveragePrice)
	assert.Equal(t, 1.0, fs.ConditionMultiplier)
	assert.Equal(t, int64(301667), fs.AdjustedPrice)
	assert.Equal(t, int64(277534), fs.PriceRange.Min)
	assert.Equal(t, int64(325800), fs.PriceRange.Max)
}

func TestBuild_ConditionMultiplier(t *testing.T) {
	comps := []model.Comparable{comparable(200000, 1000, 1)}

	tests := []struct {
		score int
		want  float64
	}{
		{1, 0.88},
		{3, 0.94},
		{5, 1.0},
		{7, 1.06},
		{10, 1.15},
	}
	for _, tt := range tests {
		fs, err := Build(comps, tt.score)
		require.NoError(t, err)
		assert.Equal(t, tt.want, fs.ConditionMultiplier, "score %d", tt.score)
		assert.Equal(t, int64(math.Round(200000*tt.want)), fs.AdjustedPrice)
	}
}

func TestBuild_ScoreClampedToDomain(t *testing.T) {
	comps := []model.Comparable{comparable(200000, 1000, 1)}

	fs, err := Build(comps, 15)
	require.NoError(t, err)
	assert.Equal(t, 1.15, fs.ConditionMultiplier)

	fs, err = Build(comps, -2)
	require.NoError(t, err)
	assert.Equal(t, 0.88, fs.ConditionMultiplier)
}

func TestBuild_RangeBandInvariant(t *testing.T) {
	for _, price := range []float64{87500, 150000, 301667, 1250000} {
		fs, err := Build([]model.Comparable{comparable(price, 1400, 6)}, 8)
		require.NoError(t, err)
		assert.Equal(t, int64(math.Round(float64(fs.AdjustedPrice)*0.92)), fs.PriceRange.Min)
		assert.Equal(t, int64(math.Round(float64(fs.AdjustedPrice)*1.08)), fs.PriceRange.Max)
		assert.LessOrEqual(t, fs.PriceRange.Min, fs.AdjustedPrice)
		assert.GreaterOrEqual(t, fs.PriceRange.Max, fs.AdjustedPrice)
	}
}

func TestBuild_SkipsUnusableComparables(t *testing.T) {
	comps := []model.Comparable{
		comparable(0, 1200, 10),      // no price
		comparable(250000, 0, 10),    // no area
		comparable(-5, 1200, 10),     // negative price
		comparable(260000, 1300, 4),  // usable
	}

	fs, err := Build(comps, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.TotalComparables)
	assert.Equal(t, int64(260000), fs.AveragePrice)
	assert.Equal(t, 200.0, fs.AveragePricePerSqft)
}

func TestBuild_InsufficientData(t *testing.T) {
	comps := []model.Comparable{
		comparable(0, 1200, 10),
		comparable(250000, 0, 2),
	}

	_, err := Build(comps, 5)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInsufficientData))

	_, err = Build(nil, 5)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInsufficientData))
}

func TestBuild_ZeroWeightFallback(t *testing.T) {
	// Degenerate weights fall back to the unweighted mean.
	comps := []model.Comparable{
		comparable(200000, 1000, 0),
		comparable(300000, 1000, 0),
	}

	fs, err := Build(comps, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), fs.AveragePrice)
}

func TestBuild_PricePerSqftRounding(t *testing.T) {
	// 301000 / 1169 = 257.485... → 257.49 at two decimals.
	fs, err := Build([]model.Comparable{comparable(301000, 1169, 1)}, 5)
	require.NoError(t, err)
	assert.Equal(t, 257.49, fs.AveragePricePerSqft)
}

func TestSelectThenBuild_EndToEnd(t *testing.T) {
	s := NewSelector(DefaultFilterConfig())
	subject := testSubject()
	subject.SetCoordinates(35.2271, -80.8431)

	near := candidateAtMiles(subject, 0.05)
	near.Price = 300000
	far := candidateAtMiles(subject, 0.9)
	far.Price = 310000
	outside := candidateAtMiles(subject, 1.2)
	outside.Price = 999999

	comps := s.Select(subject, []model.CandidateRecord{near, far, outside}, 0)
	require.Len(t, comps, 2)

	fs, err := Build(comps, subject.ConditionScore)
	require.NoError(t, err)
	assert.Equal(t, int64(301667), fs.AveragePrice)
	assert.Equal(t, int64(277534), fs.PriceRange.Min)
	assert.Equal(t, int64(325800), fs.PriceRange.Max)
}
