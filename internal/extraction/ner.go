package extraction

import (
	"context"
	"regexp"
	"strings"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

// Certifying-language anchors. A PERSON entity sitting near one of these
// phrases is very likely the student the certificate was issued to.
var nameAnchors = []string{
	"certify that",
	"awarded to",
	"presented to",
	"this is to certify",
	"student name",
}

const (
	confNERBase     = 0.7
	confAnchorBoost = 0.2
	confNameCap     = 0.95
	confOrg         = 0.8
	confTitle       = 0.75
	anchorWindow    = 100
	signatureLines  = 50
)

// Title shapes are deliberately case-sensitive: the capture requires a
// capitalized title to avoid swallowing running prose.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`internship\s+(?:in|as|for)\s+([A-Z][A-Za-z\s]{3,30})`),
	regexp.MustCompile(`position\s*:?\s*([A-Z][A-Za-z\s]{3,30})`),
	regexp.MustCompile(`role\s*:?\s*([A-Z][A-Za-z\s]{3,30})`),
}

var reSpaces = regexp.MustCompile(`\s+`)

func entitiesByLabel(entities []domain.Entity, label string) []string {
	var out []string
	for _, e := range entities {
		if e.Label == label {
			out = append(out, e.Text)
		}
	}
	return out
}

// extractPersonName scores every PERSON candidate: base 0.7, +0.2 once
// when an anchor phrase occurs within the window of the candidate's first
// occurrence. Ties keep the first candidate encountered.
func extractPersonName(entities []domain.Entity, text string) domain.ExtractedField {
	persons := entitiesByLabel(entities, domain.EntityPerson)
	if len(persons) == 0 {
		return domain.ExtractedField{}
	}

	textLower := strings.ToLower(text)
	var best string
	bestScore := 0.0

	for _, person := range persons {
		score := confNERBase
		personPos := strings.Index(textLower, strings.ToLower(person))
		for _, anchor := range nameAnchors {
			anchorPos := strings.Index(textLower, anchor)
			if anchorPos != -1 && abs(personPos-anchorPos) < anchorWindow {
				score += confAnchorBoost
				break
			}
		}
		if score > bestScore {
			bestScore = score
			best = person
		}
	}

	if best != "" {
		return domain.ExtractedField{Value: best, Confidence: min(bestScore, confNameCap)}
	}
	return domain.ExtractedField{Value: persons[0], Confidence: confNERBase}
}

// extractOrganization prefers the longest ORG string: longer names tend
// to be the full registered entity rather than an abbreviation.
func extractOrganization(entities []domain.Entity) domain.ExtractedField {
	orgs := entitiesByLabel(entities, domain.EntityOrganization)
	if len(orgs) == 0 {
		return domain.ExtractedField{}
	}
	best := orgs[0]
	for _, org := range orgs[1:] {
		if len(org) > len(best) {
			best = org
		}
	}
	return domain.ExtractedField{Value: best, Confidence: confOrg}
}

func extractTitle(text string) domain.ExtractedField {
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			title := reSpaces.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			return domain.ExtractedField{Value: title, Confidence: confTitle}
		}
	}
	return domain.ExtractedField{}
}

// extractSignatory runs NER over the tail of the document and takes the
// last PERSON entity, the one closest to the signature block.
func (e *Extractor) extractSignatory(ctx context.Context, text string) domain.ExtractedField {
	lines := strings.Split(text, "\n")
	if len(lines) > signatureLines {
		lines = lines[len(lines)-signatureLines:]
	}
	tail := strings.Join(lines, "\n")

	entities, err := e.recognizer.Entities(ctx, tail)
	if err != nil {
		return domain.ExtractedField{}
	}
	persons := entitiesByLabel(entities, domain.EntityPerson)
	if len(persons) == 0 {
		return domain.ExtractedField{}
	}
	return domain.ExtractedField{Value: persons[len(persons)-1], Confidence: confNERBase}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
