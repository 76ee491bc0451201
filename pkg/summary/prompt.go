package summary

import (
	"fmt"
	"strings"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// systemPrompt pins the compliance rules the response must follow. Addresses
// and listing identifiers never appear in the prompt, so the model cannot
// echo them back.
const systemPrompt = `You are a real estate valuation assistant.
Do NOT mention MLS, addresses, listing IDs, or any private data.
Do NOT guarantee prices. Avoid technical language.`

// buildPrompt renders the user message from the subject and its market
// features. Only city-level location and aggregate numbers are included.
func buildPrompt(subject model.SubjectProperty, features model.FeatureSet) string {
	var b strings.Builder

	b.WriteString("Analyze the subject property using the provided market features.\n\n")

	b.WriteString("Subject Property:\n")
	fmt.Fprintf(&b, "- Location: %s, %s %s\n", subject.City, subject.State, subject.ZipCode)
	fmt.Fprintf(&b, "- Bedrooms: %d\n", subject.Bedrooms)
	fmt.Fprintf(&b, "- Bathrooms: %g\n", subject.Bathrooms)
	fmt.Fprintf(&b, "- Square Footage: %d\n", subject.SquareFootage)
	fmt.Fprintf(&b, "- Year Built: %d\n", subject.YearBuilt)
	fmt.Fprintf(&b, "- Condition Score (1-10): %d\n", subject.ConditionScore)

	fmt.Fprintf(&b, "\nMarket Signals (from the %s, %s area):\n", subject.City, subject.State)
	fmt.Fprintf(&b, "- Number of comparable sales analyzed: %d\n", features.TotalComparables)
	fmt.Fprintf(&b, "- Average sale price of comparables: $%d\n", features.AveragePrice)
	fmt.Fprintf(&b, "- Average price per square foot: $%.2f\n", features.AveragePricePerSqft)
	fmt.Fprintf(&b, "- Condition multiplier applied: %.2f\n", features.ConditionMultiplier)

	b.WriteString("\nEstimated Value Range:\n")
	fmt.Fprintf(&b, "- Minimum: $%d\n", features.PriceRange.Min)
	fmt.Fprintf(&b, "- Maximum: $%d\n", features.PriceRange.Max)

	b.WriteString("\nTask:\n")
	b.WriteString("Write a clear, professional summary explaining the estimated market value range.\n")
	fmt.Fprintf(&b, "Mention that this estimate is based on comparable sales in the %s, %s area.\n", subject.City, subject.State)
	b.WriteString("Explain how property condition and comparable sales influence the estimate.\n")
	b.WriteString("Limit the response to 4-6 sentences.")

	return b.String()
}
