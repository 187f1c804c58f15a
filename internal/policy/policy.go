// Package policy holds the pure credit-award and review-gating rules
// applied to the matcher's output.
package policy

import "github.com/praktiki/internship-credit-portal/internal/core/domain"

// Credit conversion: one credit per 40 hours capped at 4 for an
// equivalent internship, one per 60 capped at 2 for a partial match.
const (
	equivalentHoursPerCredit = 40
	equivalentCreditCap      = 4
	partialHoursPerCredit    = 60
	partialCreditCap         = 2
)

// Review gate thresholds.
const (
	mandatoryConfidenceFloor = 0.75
	compositeReviewFloor     = 0.55
	autoForwardConfidenceMin = 0.75
)

// Mandatory fields whose low extraction confidence forces mentor review.
var mandatoryFields = []string{"name", "start_date", "end_date"}

// Credits converts submitted hours into a credit count for the decision.
func Credits(decision domain.Decision, hours int) int {
	switch decision {
	case domain.DecisionEquivalent:
		return min(hours/equivalentHoursPerCredit, equivalentCreditCap)
	case domain.DecisionPartiallyEquivalent:
		return min(hours/partialHoursPerCredit, partialCreditCap)
	default:
		return 0
	}
}

// Eligible reports whether the decision qualifies for credit transfer.
func Eligible(decision domain.Decision) bool {
	return decision == domain.DecisionEquivalent
}

// NeedsReview flags a submission for mentor review when a mandatory field
// is present with low confidence, or the composite score is weak. A
// mandatory field missing from the map entirely does not trigger review.
func NeedsReview(confidences map[string]float64, composite float64) bool {
	for _, field := range mandatoryFields {
		if conf, ok := confidences[field]; ok && conf < mandatoryConfidenceFloor {
			return true
		}
	}
	return composite < compositeReviewFloor
}

// AutoForward gates the automatic push to the external credit bank. The
// minimum-confidence condition is vacuously true when no confidences were
// supplied at all.
func AutoForward(decision domain.Decision, needsReview bool, confidences map[string]float64) bool {
	if decision != domain.DecisionEquivalent || !Eligible(decision) || needsReview {
		return false
	}
	for _, conf := range confidences {
		if conf < autoForwardConfidenceMin {
			return false
		}
	}
	return true
}
