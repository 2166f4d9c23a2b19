package resistance

// Confidence tiers attached to a drug call.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// Likelihood ratio cut-offs for the confidence tiers. Both are inclusive.
const (
	highLikelihood   = 10.0
	mediumLikelihood = 5.0
)

// Confidence maps a likelihood ratio to its confidence tier.
func Confidence(likelihoodRatio float64) string {
	switch {
	case likelihoodRatio >= highLikelihood:
		return ConfidenceHigh
	case likelihoodRatio >= mediumLikelihood:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
