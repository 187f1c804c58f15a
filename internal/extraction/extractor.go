// Package extraction pulls typed fields out of certificate text, each
// with a heuristic confidence score. It is a best-effort pipeline: no
// input produces an error, only empty zero-confidence fields.
package extraction

import (
	"context"
	"strings"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

// Extractor holds the compiled patterns and the optional NER capability.
// A nil recognizer (selected once at startup) degrades the NER-backed
// fields to empty; pattern fields are unaffected.
type Extractor struct {
	recognizer ports.EntityRecognizer
}

func New(recognizer ports.EntityRecognizer) *Extractor {
	return &Extractor{recognizer: recognizer}
}

// Extract returns all 13 fixed fields for the given text. Deterministic
// given the text and the recognizer's output; total over its input.
func (e *Extractor) Extract(ctx context.Context, text string) domain.ExtractionResult {
	if strings.TrimSpace(text) == "" {
		return domain.EmptyExtractionResult()
	}

	result := domain.EmptyExtractionResult()

	result["apaar_id"] = matchPattern(reAPAARID, text, confPattern)
	result["cert_id"] = matchPattern(reCertID, text, confPattern)
	result["gst"] = matchPattern(reGST, text, confStructuredID)
	result["cin"] = matchPattern(reCIN, text, confStructuredID)
	result["institution_code"] = matchPattern(reInstCode, text, confPattern)
	result["hours"] = extractHours(text)

	start, end := extractDates(text)
	result["start_date"] = start
	result["end_date"] = end

	// The email pattern does not depend on the model and runs either way.
	result["signatory_email"] = matchPattern(reEmail, text, confPattern)

	if e.recognizer == nil {
		return result
	}

	entities, err := e.recognizer.Entities(ctx, text)
	if err != nil {
		// Model failure degrades the dependent fields to empty.
		return result
	}

	result["name"] = extractPersonName(entities, text)
	result["organization"] = extractOrganization(entities)
	result["internship_title"] = extractTitle(text)
	result["signatory_name"] = e.extractSignatory(ctx, text)

	return result
}
