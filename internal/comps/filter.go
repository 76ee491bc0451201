package comps

import (
	"strconv"
	"strings"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// FilterConfig holds the admissibility tolerances. Location checks are
// layered: city is required, while state, zip, and radius are skipped when
// the upstream feed left either side blank.
type FilterConfig struct {
	BedroomTolerance  int     `yaml:"bedroom_tolerance" mapstructure:"bedroom_tolerance"`
	BathroomTolerance float64 `yaml:"bathroom_tolerance" mapstructure:"bathroom_tolerance"`
	AreaLowerRatio    float64 `yaml:"area_lower_ratio" mapstructure:"area_lower_ratio"`
	AreaUpperRatio    float64 `yaml:"area_upper_ratio" mapstructure:"area_upper_ratio"`
	MaxYearDelta      int     `yaml:"max_year_delta" mapstructure:"max_year_delta"`
	MaxZipDelta       int     `yaml:"max_zip_delta" mapstructure:"max_zip_delta"`
	MaxRadiusMiles    float64 `yaml:"max_radius_miles" mapstructure:"max_radius_miles"`

	// StateEquivalents is a pair of adjoining state codes treated as one
	// market (the feed spans a metro that crosses the border).
	StateEquivalents []string `yaml:"state_equivalents" mapstructure:"state_equivalents"`
}

// DefaultFilterConfig returns the standard CMA tolerances.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		BedroomTolerance:  1,
		BathroomTolerance: 1.0,
		AreaLowerRatio:    0.75,
		AreaUpperRatio:    1.25,
		MaxYearDelta:      20,
		MaxZipDelta:       100,
		MaxRadiusMiles:    1.0,
		StateEquivalents:  []string{"NC", "SC"},
	}
}

// Filter decides whether a candidate record is an admissible comparable for
// a given subject. It is a pure predicate with no side effects.
type Filter struct {
	cfg FilterConfig
}

// NewFilter creates a Filter, filling zero tolerances from the defaults.
func NewFilter(cfg FilterConfig) *Filter {
	def := DefaultFilterConfig()
	if cfg.BedroomTolerance == 0 {
		cfg.BedroomTolerance = def.BedroomTolerance
	}
	if cfg.BathroomTolerance == 0 {
		cfg.BathroomTolerance = def.BathroomTolerance
	}
	if cfg.AreaLowerRatio == 0 {
		cfg.AreaLowerRatio = def.AreaLowerRatio
	}
	if cfg.AreaUpperRatio == 0 {
		cfg.AreaUpperRatio = def.AreaUpperRatio
	}
	if cfg.MaxYearDelta == 0 {
		cfg.MaxYearDelta = def.MaxYearDelta
	}
	if cfg.MaxZipDelta == 0 {
		cfg.MaxZipDelta = def.MaxZipDelta
	}
	if cfg.MaxRadiusMiles == 0 {
		cfg.MaxRadiusMiles = def.MaxRadiusMiles
	}
	if len(cfg.StateEquivalents) == 0 {
		cfg.StateEquivalents = def.StateEquivalents
	}
	return &Filter{cfg: cfg}
}

// Admissible reports whether the candidate passes every admissibility check
// against the subject.
func (f *Filter) Admissible(subject *model.SubjectProperty, candidate *model.CandidateRecord) bool {
	// City must match. This is the one location field the feed always
	// populates, so a mismatch is an unconditional reject.
	if !equalCity(subject.City, candidate.City) {
		return false
	}

	// State is lenient: skip when either side is blank.
	if !f.stateMatches(subject.State, candidate.State) {
		return false
	}

	// Numeric zip proximity: skip when either code is non-numeric.
	if !f.zipMatches(subject.ZipCode, candidate.ZipCode) {
		return false
	}

	// Radius check only when both sides have coordinates. Without them the
	// city/state/zip checks substitute.
	if subject.HasCoordinates() && candidate.HasCoordinates() {
		if SubjectDistance(subject, candidate) > f.cfg.MaxRadiusMiles {
			return false
		}
	}

	if abs(candidate.Bedrooms-subject.Bedrooms) > f.cfg.BedroomTolerance {
		return false
	}

	if absFloat(candidate.Bathrooms-subject.Bathrooms) > f.cfg.BathroomTolerance {
		return false
	}

	if candidate.AreaSqft <= 0 {
		return false
	}
	lower := float64(subject.SquareFootage) * f.cfg.AreaLowerRatio
	upper := float64(subject.SquareFootage) * f.cfg.AreaUpperRatio
	if area := float64(candidate.AreaSqft); area < lower || area > upper {
		return false
	}

	// Year built is accepted when absent.
	if candidate.YearBuilt != 0 && abs(candidate.YearBuilt-subject.YearBuilt) > f.cfg.MaxYearDelta {
		return false
	}

	// Only realized transaction prices are usable.
	return IsClosedSale(candidate.Status)
}

func (f *Filter) stateMatches(subjectState, candidateState string) bool {
	s := model.NormalizeState(subjectState)
	c := model.NormalizeState(candidateState)
	if s == "" || c == "" {
		return true
	}
	if s == c {
		return true
	}
	return f.isEquivalentPair(s, c)
}

func (f *Filter) isEquivalentPair(a, b string) bool {
	var aOK, bOK bool
	for _, st := range f.cfg.StateEquivalents {
		st = model.NormalizeState(st)
		if st == a {
			aOK = true
		}
		if st == b {
			bOK = true
		}
	}
	return aOK && bOK
}

func (f *Filter) zipMatches(subjectZip, candidateZip string) bool {
	s, err := strconv.Atoi(strings.TrimSpace(subjectZip))
	if err != nil {
		return true
	}
	c, err := strconv.Atoi(strings.TrimSpace(candidateZip))
	if err != nil {
		return true
	}
	return abs(s-c) <= f.cfg.MaxZipDelta
}

// equalCity compares city names case-insensitively after trimming.
func equalCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsClosedSale reports whether a status string indicates a completed sale.
// Pending, active, withdrawn, and absent statuses are all rejected.
func IsClosedSale(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "closed")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
