package comps

import "math"

// NeutralWeight is assigned when distance is unknown: every such comparable
// has equal influence.
const NeutralWeight = 1.0

// weightBucket is one step of the proximity weighting function.
type weightBucket struct {
	UpperMiles float64
	Weight     float64
}

// weightBuckets maps distance bands to influence weights, tightest first.
// Weight is non-increasing in distance.
var weightBuckets = []weightBucket{
	{UpperMiles: 0.1, Weight: 10},
	{UpperMiles: 0.25, Weight: 8},
	{UpperMiles: 0.5, Weight: 6},
	{UpperMiles: 0.75, Weight: 4},
}

// farWeight applies from the last bucket boundary up to the radius cutoff.
const farWeight = 2.0

// Weight maps a distance in miles to a discrete influence weight. Unknown
// distance (DistanceUnknown) gets the neutral weight.
func Weight(distanceMiles float64) float64 {
	if math.IsInf(distanceMiles, 1) || math.IsNaN(distanceMiles) {
		return NeutralWeight
	}
	for _, b := range weightBuckets {
		if distanceMiles < b.UpperMiles {
			return b.Weight
		}
	}
	return farWeight
}
