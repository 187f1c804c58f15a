package matching

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Courses []domain.CourseDescriptor `yaml:"courses"`
}

// LoadCatalog parses the embedded reference curriculum. Course order in
// the file is the catalog iteration order used for tie-breaking.
func LoadCatalog() ([]domain.CourseDescriptor, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("parse curriculum catalog: %w", err)
	}
	if len(file.Courses) == 0 {
		return nil, fmt.Errorf("curriculum catalog is empty")
	}
	for _, course := range file.Courses {
		if course.ID == "" || course.Title == "" {
			return nil, fmt.Errorf("curriculum course missing id or title")
		}
	}
	return file.Courses, nil
}

// MustLoadCatalog panics on a malformed embedded catalog; the file ships
// with the binary, so a parse failure is a build defect.
func MustLoadCatalog() []domain.CourseDescriptor {
	courses, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return courses
}
