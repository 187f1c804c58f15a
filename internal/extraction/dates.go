package extraction

import (
	"regexp"
	"strings"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

// Date shapes tried in priority order: numeric day-first, numeric
// year-first, spelled month. All occurrences across the three passes are
// collected into one ordered list.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
	regexp.MustCompile(`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`),
	regexp.MustCompile(`(?i)((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4})`),
}

// Input layouts tried in order until one parses. Candidates that fit no
// layout are dropped.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2006/1/2",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

const (
	confDatePair   = 0.8
	confDateSingle = 0.75
)

func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// extractDates assigns dates positionally: the first valid candidate
// becomes the start, the second the end. There is no check that the start
// precedes the end chronologically.
func extractDates(text string) (start, end domain.ExtractedField) {
	var found []string
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if normalized := normalizeDate(m[1]); normalized != "" {
				found = append(found, normalized)
			}
		}
	}

	switch {
	case len(found) >= 2:
		start = domain.ExtractedField{Value: found[0], Confidence: confDatePair}
		end = domain.ExtractedField{Value: found[1], Confidence: confDatePair}
	case len(found) == 1:
		start = domain.ExtractedField{Value: found[0], Confidence: confDateSingle}
	}
	return start, end
}
