package domain

// ExtractedField is a single best value for a certificate field with a
// heuristic certainty estimate in [0,1]. An empty value always carries
// confidence 0.
type ExtractedField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// FieldNames is the fixed set of certificate fields, in canonical order.
// Every ExtractionResult carries exactly these keys.
var FieldNames = []string{
	"name",
	"apaar_id",
	"institution_code",
	"organization",
	"internship_title",
	"start_date",
	"end_date",
	"hours",
	"cert_id",
	"signatory_name",
	"signatory_email",
	"gst",
	"cin",
}

// ExtractionResult maps each fixed field name to its extracted value.
type ExtractionResult map[string]ExtractedField

// EmptyExtractionResult returns the canonical all-empty result: all 13
// fields present, empty values, zero confidence.
func EmptyExtractionResult() ExtractionResult {
	out := make(ExtractionResult, len(FieldNames))
	for _, name := range FieldNames {
		out[name] = ExtractedField{}
	}
	return out
}

// Confidences projects the result down to the confidence map consumed by
// the review policy.
func (r ExtractionResult) Confidences() map[string]float64 {
	out := make(map[string]float64, len(r))
	for name, field := range r {
		out[name] = field.Confidence
	}
	return out
}

// Entity is a named entity produced by the NLP collaborator.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

const (
	EntityPerson       = "PERSON"
	EntityOrganization = "ORG"
)
