package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

// Identifier patterns. GST and CIN carry a rigid government format, so a
// hit on them is worth more than the looser label-prefixed patterns.
var (
	reAPAARID  = regexp.MustCompile(`(?i)APAAR[-_]?([A-Z0-9-]{8,})`)
	reCertID   = regexp.MustCompile(`(?i)(?:Certificate|Cert)\s*(?:ID|No|Number)?\s*:?\s*([A-Z0-9-]{6,})`)
	reGST      = regexp.MustCompile(`(?i)\b([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`)
	reCIN      = regexp.MustCompile(`(?i)\b([LU][0-9]{5}[A-Z]{2}[0-9]{4}[A-Z]{3}[0-9]{6})\b`)
	reInstCode = regexp.MustCompile(`(?i)(?:Institution|College|University)\s*Code\s*:?\s*([A-Z0-9-]{4,})`)
	reEmail    = regexp.MustCompile(`(?i)\b([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})\b`)
	reHours    = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?)`)
)

const (
	confStructuredID = 0.9
	confPattern      = 0.8
	confHours        = 0.85
)

// matchPattern returns the first match in document order; capture group 1
// when present, otherwise the whole match.
func matchPattern(re *regexp.Regexp, text string, confidence float64) domain.ExtractedField {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return domain.ExtractedField{}
	}
	value := m[0]
	if len(m) > 1 && m[1] != "" {
		value = m[1]
	}
	return domain.ExtractedField{Value: strings.TrimSpace(value), Confidence: confidence}
}

// extractHours scans every hour mention and keeps the numeric maximum.
// Documents often state partial counts alongside a cumulative total; the
// larger figure is presumed to be the total.
func extractHours(text string) domain.ExtractedField {
	matches := reHours.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return domain.ExtractedField{}
	}
	best := -1
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best < 0 {
		return domain.ExtractedField{}
	}
	return domain.ExtractedField{Value: strconv.Itoa(best), Confidence: confHours}
}
