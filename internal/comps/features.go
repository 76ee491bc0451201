package comps

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/fire-ai/valuation-cli/internal/model"
)

const (
	// conditionStep is the per-point adjustment around the baseline score.
	conditionStep     = 0.03
	conditionBaseline = 5

	// The reported range is a fixed band around the adjusted estimate, not
	// derived from the comparable spread.
	rangeLowerRatio = 0.92
	rangeUpperRatio = 1.08
)

// Build aggregates a comparable set and a condition rating into a FeatureSet.
// Comparables without a positive price and positive living area are skipped;
// if none remain it fails with ErrInsufficientData.
func Build(comparables []model.Comparable, conditionScore int) (*model.FeatureSet, error) {
	var (
		prices        []float64
		weights       []float64
		pricesPerSqft []float64
	)
	for i := range comparables {
		c := &comparables[i]
		if c.Price <= 0 || c.AreaSqft <= 0 {
			continue
		}
		prices = append(prices, c.Price)
		weights = append(weights, c.Weight)
		pricesPerSqft = append(pricesPerSqft, c.Price/float64(c.AreaSqft))
	}

	if len(prices) == 0 {
		return nil, eris.Wrap(ErrInsufficientData, "build features")
	}

	avgPrice := weightedMean(prices, weights)
	avgPricePerSqft := weightedMean(pricesPerSqft, weights)

	conditionScore = clampScore(conditionScore)
	multiplier := 1 + float64(conditionScore-conditionBaseline)*conditionStep

	adjusted := int64(math.Round(avgPrice * multiplier))

	return &model.FeatureSet{
		TotalComparables:    len(prices),
		AveragePrice:        int64(math.Round(avgPrice)),
		AveragePricePerSqft: round2(avgPricePerSqft),
		ConditionScore:      conditionScore,
		ConditionMultiplier: round2(multiplier),
		AdjustedPrice:       adjusted,
		PriceRange: model.PriceRange{
			Min: int64(math.Round(float64(adjusted) * rangeLowerRatio)),
			Max: int64(math.Round(float64(adjusted) * rangeUpperRatio)),
		},
	}, nil
}

// weightedMean computes Σ(v×w)/Σw, falling back to the unweighted mean when
// the weight sum is zero. Weights are always >= 1 in practice, but a
// degenerate input must not divide by zero.
func weightedMean(values, weights []float64) float64 {
	var sum, weightSum float64
	for i, v := range values {
		sum += v * weights[i]
		weightSum += weights[i]
	}
	if weightSum > 0 {
		return sum / weightSum
	}

	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
