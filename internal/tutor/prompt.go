package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/subjects"
)

const tutorGuidelines = `Guidelines:
- Explain concepts clearly and simply
- Use examples and analogies when helpful
- Break down complex topics into digestible parts
- Encourage curiosity and questions
- Correct misconceptions gently
- Adapt your explanations to the student's level`

// levelDefinitions is shared by the diagnosis instructions.
const levelDefinitions = `Levels:
- beginner: little or no prior exposure; needs vocabulary and intuition first.
- intermediate: knows the core ideas and terms; ready to connect them and apply them to problems.
- advanced: comfortable with the fundamentals; wants rigor, depth, edge cases and open questions.`

var levelStrategies = map[journey.Level]string{
	journey.LevelBeginner: `Teaching strategy (beginner):
- Start from concrete, everyday examples before any formalism
- Use analogies and stories from your own life and era
- Introduce one new term at a time and define it
- Check understanding with a simple question before moving on`,
	journey.LevelIntermediate: `Teaching strategy (intermediate):
- Build on what the student already knows and name the connections between ideas
- Work through problems together and let the student attempt steps first
- Introduce standard notation and terminology without over-explaining it
- Point out common misconceptions at this stage`,
	journey.LevelAdvanced: `Teaching strategy (advanced):
- Be precise and rigorous; derive rather than assert
- Explore edge cases, limitations and where the simple models break down
- Discuss open questions and how the field developed
- Challenge the student with problems that require synthesis`,
}

// BuildSystemPrompt assembles the system instruction for a chat turn with the
// subject's tutor given the learner's journey state.
func BuildSystemPrompt(subject subjects.Subject, state journey.State) string {
	var b strings.Builder

	writePersona(&b, subject)

	switch {
	case state.Stage == journey.StageDiagnosing:
		writeDiagnosis(&b, subject, state)
	case state.Stage == journey.StageLearning && state.HasLevel():
		writeLevelStrategy(&b, subject, state.Level)
		b.WriteString("\n")
		b.WriteString(tutorGuidelines)
	default:
		b.WriteString(tutorGuidelines)
	}

	return b.String()
}

func writePersona(b *strings.Builder, subject subjects.Subject) {
	character := subject.Character
	if character == "" {
		character = "an expert"
	}
	b.WriteString(fmt.Sprintf("You are %s, a passionate %s tutor. ", character, subject.Name))
	b.WriteString(fmt.Sprintf("Your role is to help students learn %s concepts in an engaging and educational way. ", subject.Name))
	b.WriteString("Stay in character: speak with the voice, warmth and curiosity of your historical self.\n\n")
	b.WriteString(fmt.Sprintf("Subject focus: %s - %s\n\n", subject.Name, subject.Description))
}

func writeDiagnosis(b *strings.Builder, subject subjects.Subject, state journey.State) {
	b.WriteString(fmt.Sprintf("You are getting to know a new student. This is diagnostic turn %d of at most %d.\n",
		state.DiagnosticTurn, journey.MaxDiagnosticTurns))
	b.WriteString("Assess the student's level through natural conversation. Ask one friendly, open question at a time ")
	b.WriteString("about what they already know. Never present it as a test or quiz.\n\n")
	b.WriteString(levelDefinitions)
	b.WriteString("\n\n")

	if state.DiagnosticTurn < 2 {
		b.WriteString("It is too early to judge. Gather more signal before settling on a level, and keep your confidence low.\n\n")
	} else {
		b.WriteString(fmt.Sprintf("If you are confident (%.1f or above), you may conclude the assessment and begin teaching at that level.\n\n",
			journey.CompletionConfidence))
	}

	example := journey.Metadata{
		Confidence:     0.4,
		SuggestedLevel: journey.LevelIntermediate,
		TopicsAssessed: exampleTopics(subject),
	}
	b.WriteString("You MUST end every reply with a diagnostic trailer on its own line, in exactly this format:\n")
	b.WriteString(journey.FormatTrailer(example))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Start with %s and end with %s. Fields: confidence (number between 0.0 and 1.0), ",
		journey.TrailerStart, journey.TrailerEnd))
	b.WriteString("suggestedLevel (beginner, intermediate or advanced) and topicsAssessed (list of topics probed so far). ")
	b.WriteString("The student never sees the trailer.\n\n")

	b.WriteString(tutorGuidelines)
}

func writeLevelStrategy(b *strings.Builder, subject subjects.Subject, level journey.Level) {
	b.WriteString(fmt.Sprintf("The student is at the %s level.\n", level))
	if desc := subject.LevelDescription(level); desc != "" {
		b.WriteString(fmt.Sprintf("At this level you cover: %s\n", desc))
	}
	b.WriteString("\n")
	if s, ok := levelStrategies[level]; ok {
		b.WriteString(s)
		b.WriteString("\n")
	}
}

func exampleTopics(subject subjects.Subject) []string {
	if len(subject.Topics) >= 2 {
		return subject.Topics[:2]
	}
	return append([]string(nil), subject.Topics...)
}
