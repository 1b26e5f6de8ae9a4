package subjects

import (
	"strings"
	"testing"

	"github.com/abhisek/luminary/internal/journey"
)

func TestCatalog_EmbeddedPasses(t *testing.T) {
	want := []string{"physics", "mathematics", "history", "biology"}
	got := IDs()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for _, s := range All() {
		if len(s.Questions) != 5 {
			t.Errorf("%s: %d questions, want 5", s.ID, len(s.Questions))
		}
		if s.Greeting == "" || s.PassionateIntro == "" || s.DiagnosticOpener == "" {
			t.Errorf("%s: missing intro text", s.ID)
		}
		if len(s.Topics) == 0 {
			t.Errorf("%s: no topics", s.ID)
		}
	}
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("mathematics")
	if !ok {
		t.Fatal("mathematics not found")
	}
	if s.Character != "Pythagoras" {
		t.Errorf("Character = %q, want Pythagoras", s.Character)
	}
	if got := s.LevelDescription(journey.LevelAdvanced); !strings.Contains(got, "calculus") {
		t.Errorf("advanced description = %q", got)
	}
	if s.Questions[0].Options[1].Text != "56" {
		t.Errorf("numeric option text decoded as %q", s.Questions[0].Options[1].Text)
	}

	if _, ok := Lookup("alchemy"); ok {
		t.Error("Lookup(alchemy) should fail")
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "Mutated"
	if s, _ := Lookup(all[0].ID); s.Name == "Mutated" {
		t.Error("All() exposes the catalog")
	}
}

func TestLoad_RejectsBadCatalog(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "[]", "empty"},
		{"not yaml list", "id: physics", "parse catalog"},
		{
			name: "duplicate id",
			yaml: `
- {id: a, name: A, character: X, levelDescriptions: {beginner: b, intermediate: i, advanced: a}}
- {id: a, name: A, character: X, levelDescriptions: {beginner: b, intermediate: i, advanced: a}}
`,
			want: "duplicate subject id",
		},
		{
			name: "bad option level",
			yaml: `
- id: a
  name: A
  character: X
  levelDescriptions: {beginner: b, intermediate: i, advanced: a}
  questions:
    - question: q
      correctIndex: 0
      options:
        - {text: "1", level: beginner}
        - {text: "2", level: expert}
        - {text: "3", level: advanced}
        - {text: "4", level: advanced}
`,
			want: `unknown level "expert"`,
		},
		{
			name: "correct index out of range",
			yaml: `
- id: a
  name: A
  character: X
  levelDescriptions: {beginner: b, intermediate: i, advanced: a}
  questions:
    - question: q
      correctIndex: 4
      options:
        - {text: "1", level: beginner}
        - {text: "2", level: beginner}
        - {text: "3", level: advanced}
        - {text: "4", level: advanced}
`,
			want: "correctIndex 4 out of range",
		},
		{
			name: "missing level description",
			yaml: `
- id: a
  name: A
  character: X
  levelDescriptions: {beginner: b}
`,
			want: "no intermediate description",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}
