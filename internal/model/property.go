// Package model holds the domain types shared across the valuation pipeline.
package model

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// validate is the shared validator instance for subject input.
var validate = validator.New(validator.WithRequiredStructEnabled())

// SubjectProperty is the property being valued, built once per request from
// caller input. It is never modified after construction.
type SubjectProperty struct {
	Address        string   `json:"address" validate:"required"`
	City           string   `json:"city" validate:"required"`
	State          string   `json:"state" validate:"required"`
	ZipCode        string   `json:"zip_code" validate:"required"`
	Bedrooms       int      `json:"bedrooms" validate:"gt=0"`
	Bathrooms      float64  `json:"bathrooms" validate:"gt=0"`
	SquareFootage  int      `json:"square_footage" validate:"gt=100"`
	YearBuilt      int      `json:"year_built" validate:"gte=1800,lte=2100"`
	ConditionScore int      `json:"condition_score" validate:"gte=1,lte=10"`
	UserNotes      string   `json:"user_notes,omitempty"`
	Email          string   `json:"email,omitempty" validate:"omitempty,email"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// Validate checks field constraints on the subject.
func (s *SubjectProperty) Validate() error {
	if err := validate.Struct(s); err != nil {
		return eris.Wrap(err, "model: invalid subject property")
	}
	return nil
}

// HasCoordinates reports whether both latitude and longitude are present.
func (s *SubjectProperty) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// SetCoordinates attaches geocoded coordinates to the subject.
func (s *SubjectProperty) SetCoordinates(lat, lng float64) {
	s.Latitude = &lat
	s.Longitude = &lng
}

// CandidateRecord is one historical sale from the external pool, already
// normalized to flat fields at the pool boundary. The core never mutates
// these; pools may be cached and shared across concurrent requests.
type CandidateRecord struct {
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city"`
	State     string   `json:"state,omitempty"`
	ZipCode   string   `json:"zip,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Bedrooms  int      `json:"bedrooms"`
	Bathrooms float64  `json:"bathrooms"`
	AreaSqft  int      `json:"areaSqft"`
	Price     float64  `json:"price"`
	YearBuilt int      `json:"yearBuilt,omitempty"`
	Status    string   `json:"status,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (c *CandidateRecord) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Comparable is a candidate that passed every admissibility filter, annotated
// with its distance from the subject and its influence weight. Comparables
// are freshly constructed values, never aliases of the shared pool entries.
type Comparable struct {
	CandidateRecord

	// DistanceMiles is nil when either side lacks coordinates.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	Weight        float64  `json:"weight"`
}

// Distance returns the annotated distance, or +Inf when unknown.
func (c *Comparable) Distance() float64 {
	if c.DistanceMiles == nil {
		return math.Inf(1)
	}
	return *c.DistanceMiles
}

// PriceRange bounds the estimate with a fixed band around the adjusted price.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// FeatureSet is the aggregation result for one valuation request.
type FeatureSet struct {
	TotalComparables    int        `json:"total_comparables"`
	AveragePrice        int64      `json:"average_price"`
	AveragePricePerSqft float64    `json:"average_price_per_sqft"`
	ConditionScore      int        `json:"condition_score"`
	ConditionMultiplier float64    `json:"condition_multiplier"`
	AdjustedPrice       int64      `json:"adjusted_estimated_price"`
	PriceRange          PriceRange `json:"price_range"`
}

// NormalizeState uppercases and trims a state code for comparison.
func NormalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
