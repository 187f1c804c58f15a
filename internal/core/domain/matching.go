package domain

// CourseDescriptor is one reference curriculum entry. Keywords keep their
// declaration order; mentor overrides append, never reorder.
type CourseDescriptor struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Description string   `json:"description" yaml:"description"`
}

// MatchResult is one curriculum course that cleared the similarity
// threshold for a submission.
type MatchResult struct {
	CourseID        string   `json:"course_id"`
	CourseTitle     string   `json:"course_title"`
	Similarity      float64  `json:"similarity"`
	KeywordsMatched []string `json:"keywords_matched"`
}

// Decision is the three-way equivalence verdict derived from the
// composite score.
type Decision string

const (
	DecisionEquivalent          Decision = "Equivalent"
	DecisionPartiallyEquivalent Decision = "Partially Equivalent"
	DecisionNotEquivalent       Decision = "Not Equivalent"
)
