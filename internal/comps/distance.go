// Package comps implements comparable selection and the valuation feature
// engine: haversine distance, the admissibility filter, proximity weighting,
// ranked selection, and weighted price aggregation.
package comps

import (
	"math"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distance.
const earthRadiusMiles = 3958.8

// DistanceUnknown is returned when either coordinate pair is missing.
// Callers must treat it as "maximally far", never as a near-zero distance.
var DistanceUnknown = math.Inf(1)

// HaversineMiles returns the great-circle distance in miles between two
// latitude/longitude points.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// SubjectDistance computes the distance between the subject and a candidate,
// or DistanceUnknown when either side lacks coordinates.
func SubjectDistance(subject *model.SubjectProperty, candidate *model.CandidateRecord) float64 {
	if !subject.HasCoordinates() || !candidate.HasCoordinates() {
		return DistanceUnknown
	}
	return HaversineMiles(*subject.Latitude, *subject.Longitude, *candidate.Latitude, *candidate.Longitude)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
