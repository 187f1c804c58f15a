// Package matching scores internship token sequences against the
// reference curriculum and reduces the ranked matches to one composite
// score and a three-way equivalence decision.
package matching

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

// DefaultThreshold is the minimum similarity a course must clear to be
// reported as a match.
const DefaultThreshold = 0.3

// Composite score cut points for the equivalence decision.
const (
	equivalentCut = 0.7
	partialCut    = 0.4
)

// Similarity blend weights when the embedding model is present.
const (
	semanticWeight = 0.7
	overlapWeight  = 0.3
)

// Matcher owns the in-memory curriculum catalog. Keyword sets mutate only
// through AddCustomKeywords; the RWMutex keeps concurrent FindMatches
// calls from observing a half-updated keyword list.
type Matcher struct {
	mu       sync.RWMutex
	courses  []domain.CourseDescriptor
	semantic ports.SemanticSimilarity
}

// New builds a matcher over the given catalog. A nil semantic capability
// (selected once at startup) drops similarity to pure Jaccard overlap.
func New(courses []domain.CourseDescriptor, semantic ports.SemanticSimilarity) *Matcher {
	owned := make([]domain.CourseDescriptor, len(courses))
	for i, course := range courses {
		owned[i] = course
		owned[i].Keywords = append([]string(nil), course.Keywords...)
	}
	return &Matcher{courses: owned, semantic: semantic}
}

// AddCustomKeywords unions new keywords into an existing course's keyword
// list, preserving order and skipping duplicates. Unknown ids are a
// no-op: mentor overrides never create courses.
func (m *Matcher) AddCustomKeywords(courseID string, keywords []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.courses {
		if m.courses[i].ID != courseID {
			continue
		}
		existing := make(map[string]struct{}, len(m.courses[i].Keywords))
		for _, kw := range m.courses[i].Keywords {
			existing[kw] = struct{}{}
		}
		for _, kw := range keywords {
			if _, ok := existing[kw]; ok {
				continue
			}
			existing[kw] = struct{}{}
			m.courses[i].Keywords = append(m.courses[i].Keywords, kw)
		}
		return
	}
}

// Courses returns a snapshot of the catalog.
func (m *Matcher) Courses() []domain.CourseDescriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.CourseDescriptor, len(m.courses))
	for i, course := range m.courses {
		out[i] = course
		out[i].Keywords = append([]string(nil), course.Keywords...)
	}
	return out
}

// Similarity blends semantic similarity with Jaccard word overlap,
// clamped to 1.0. Without the embedding model it is pure Jaccard.
func (m *Matcher) Similarity(ctx context.Context, a, b string) float64 {
	overlap := jaccard(a, b)
	if m.semantic == nil {
		return overlap
	}
	semantic, err := m.semantic.Similarity(ctx, a, b)
	if err != nil {
		// Model failure degrades to the overlap-only score.
		return overlap
	}
	return min(semanticWeight*semantic+overlapWeight*overlap, 1.0)
}

// FindMatches scores the token sequence against every course and returns
// the matches at or above the threshold, ranked by similarity descending.
// Ties keep catalog order.
func (m *Matcher) FindMatches(ctx context.Context, tokens []string, threshold float64) []domain.MatchResult {
	input := strings.Join(tokens, " ")
	inputLower := strings.ToLower(input)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []domain.MatchResult
	for _, course := range m.courses {
		courseText := strings.Join(course.Keywords, " ") + " " + course.Description
		similarity := m.Similarity(ctx, input, courseText)
		if similarity < threshold {
			continue
		}
		matches = append(matches, domain.MatchResult{
			CourseID:        course.ID,
			CourseTitle:     course.Title,
			Similarity:      round3(similarity),
			KeywordsMatched: matchedKeywords(inputLower, course.Keywords),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// CompositeScore is the mean similarity of the top three ranked matches,
// rounded to three decimals; 0.0 for an empty list.
func CompositeScore(matches []domain.MatchResult) float64 {
	if len(matches) == 0 {
		return 0.0
	}
	top := matches
	if len(top) > 3 {
		top = top[:3]
	}
	sum := 0.0
	for _, match := range top {
		sum += match.Similarity
	}
	return round3(sum / float64(len(top)))
}

// Classify maps the composite score to the equivalence decision. Both cut
// points are inclusive on the lower edge.
func Classify(composite float64) domain.Decision {
	switch {
	case composite >= equivalentCut:
		return domain.DecisionEquivalent
	case composite >= partialCut:
		return domain.DecisionPartiallyEquivalent
	default:
		return domain.DecisionNotEquivalent
	}
}

// matchedKeywords reports the course keywords occurring as substrings of
// the joined input, in the course's keyword order.
func matchedKeywords(inputLower string, keywords []string) []string {
	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(inputLower, keyword) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

// jaccard is word-set intersection over union of the two lower-cased
// texts; 0.0 when either set is empty.
func jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	out := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		out[field] = struct{}{}
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
