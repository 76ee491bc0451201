// Package summary generates plain-language valuation summaries for finished
// runs. The default generator calls Claude through the official SDK; a static
// generator covers disabled and offline modes.
package summary

import (
	"context"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// Generator produces a buyer-facing summary from a subject and its features.
type Generator interface {
	Generate(ctx context.Context, subject model.SubjectProperty, features model.FeatureSet) (string, error)
}

// StaticGenerator returns a fixed template without calling any model. Used
// when summaries are disabled or no API key is configured.
type StaticGenerator struct{}

// NewStaticGenerator creates a generator that never leaves the process.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Generate returns a canned compliance-safe summary.
func (g *StaticGenerator) Generate(_ context.Context, subject model.SubjectProperty, features model.FeatureSet) (string, error) {
	if features.TotalComparables == 0 {
		return "Not enough recent sales data was available to estimate a value for this property.", nil
	}
	return "Based on recent comparable sales in the " + subject.City + ", " + subject.State +
		" area and the reported property condition, the estimated market value falls within the computed price range. " +
		"This estimate reflects local sale prices and is not a guarantee of value.", nil
}
