// Package subjects holds the catalog of tutor characters, one per subject.
package subjects

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/luminary/internal/journey"
)

// Subject describes one tutor: the character, how it introduces itself and
// the material used to assess a new learner.
type Subject struct {
	ID                string                   `yaml:"id" json:"id"`
	Name              string                   `yaml:"name" json:"name"`
	Character         string                   `yaml:"character" json:"character"`
	Icon              string                   `yaml:"icon" json:"icon"`
	Description       string                   `yaml:"description" json:"description"`
	Quote             string                   `yaml:"quote" json:"quote"`
	ThemeColor        string                   `yaml:"themeColor" json:"themeColor"`
	Greeting          string                   `yaml:"greeting" json:"greeting"`
	PassionateIntro   string                   `yaml:"passionateIntro" json:"passionateIntro"`
	DiagnosticOpener  string                   `yaml:"diagnosticOpener" json:"diagnosticOpener"`
	Topics            []string                 `yaml:"topics" json:"topics"`
	LevelDescriptions map[journey.Level]string `yaml:"levelDescriptions" json:"levelDescriptions"`
	Questions         []journey.QuizQuestion   `yaml:"questions" json:"-"`
}

// LevelDescription returns the tutor's summary of what a learner at level
// will study, or "" if none is defined.
func (s Subject) LevelDescription(level journey.Level) string {
	return s.LevelDescriptions[level]
}

// OptionsPerQuestion is the number of choices every diagnostic question offers.
const OptionsPerQuestion = 4

//go:embed subjects.yaml
var catalogYAML []byte

// catalog is the package-level catalog, built from the embedded YAML on first import.
var catalog = mustLoad(catalogYAML)

type index struct {
	subjects []Subject
	byID     map[string]*Subject
}

func mustLoad(data []byte) *index {
	idx, err := load(data)
	if err != nil {
		panic(fmt.Sprintf("subjects: embedded catalog: %v", err))
	}
	return idx
}

func load(data []byte) (*index, error) {
	var subjects []Subject
	if err := yaml.Unmarshal(data, &subjects); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validateSubjects(subjects); err != nil {
		return nil, err
	}

	idx := &index{
		subjects: subjects,
		byID:     make(map[string]*Subject, len(subjects)),
	}
	for i := range idx.subjects {
		idx.byID[idx.subjects[i].ID] = &idx.subjects[i]
	}
	return idx, nil
}

// All returns every subject in catalog order.
func All() []Subject {
	out := make([]Subject, len(catalog.subjects))
	copy(out, catalog.subjects)
	return out
}

// Lookup returns the subject with the given id.
func Lookup(id string) (Subject, bool) {
	s, ok := catalog.byID[id]
	if !ok {
		return Subject{}, false
	}
	return *s, true
}

// IDs returns the subject ids in catalog order.
func IDs() []string {
	ids := make([]string, len(catalog.subjects))
	for i, s := range catalog.subjects {
		ids[i] = s.ID
	}
	return ids
}

// validateSubjects performs all structural checks on the catalog.
// Returns a combined error describing all problems found, or nil if valid.
func validateSubjects(subjects []Subject) error {
	var errs []string

	if len(subjects) == 0 {
		errs = append(errs, "catalog is empty")
	}

	seen := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("subject %q has no id", s.Name))
			continue
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate subject id: %q", s.ID))
		}
		seen[s.ID] = true

		if s.Name == "" || s.Character == "" {
			errs = append(errs, fmt.Sprintf("subject %q needs a name and a character", s.ID))
		}
		for _, l := range journey.Levels {
			if s.LevelDescriptions[l] == "" {
				errs = append(errs, fmt.Sprintf("subject %q has no %s description", s.ID, l))
			}
		}
		if len(s.Questions) == 0 {
			errs = append(errs, fmt.Sprintf("subject %q has no diagnostic questions", s.ID))
		}
		for qi, q := range s.Questions {
			if len(q.Options) != OptionsPerQuestion {
				errs = append(errs, fmt.Sprintf("subject %q question %d has %d options, want %d",
					s.ID, qi, len(q.Options), OptionsPerQuestion))
			}
			if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				errs = append(errs, fmt.Sprintf("subject %q question %d: correctIndex %d out of range",
					s.ID, qi, q.CorrectIndex))
			}
			for oi, o := range q.Options {
				if !o.Level.Valid() {
					errs = append(errs, fmt.Sprintf("subject %q question %d option %d: unknown level %q",
						s.ID, qi, oi, o.Level))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
