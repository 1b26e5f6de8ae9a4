package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
)

// demoQuestions are asked in order while the offline tutor is diagnosing.
var demoQuestions = []string{
	"What first got you curious about this subject?",
	"Can you tell me about something in this area you already feel comfortable with?",
	"If you had to explain one idea from it to a friend, which would you pick, and how would you put it?",
	"What is something here that has always puzzled you?",
	"Have you ever worked through problems or read deeper material on this?",
}

// DemoResponder returns a scripted tutor for running without an API key.
// It reads the system prompt to tell diagnosis from teaching, and during
// diagnosis it guesses a level from how much the learner writes, growing
// more confident each turn so the journey completes like a real one.
func DemoResponder() llm.Responder {
	return func(req llm.Request) llm.MockResponse {
		character := demoCharacter(req.System)
		learner := learnerTurns(req.Messages)
		if len(learner) == 0 {
			return llm.MockResponse{Err: llm.ErrNoLearnerTurn}
		}
		last := learner[len(learner)-1]

		if !strings.Contains(req.System, journey.TrailerStart) {
			return llm.MockResponse{Content: fmt.Sprintf(
				"%s here, running in offline demo mode. You asked: %q. "+
					"Set an LLM API key and I can give you a real answer.", character, last)}
		}

		n := len(learner)
		md := journey.Metadata{
			Confidence:     min(0.3+0.2*float64(n-1), 0.9),
			SuggestedLevel: levelFromWords(learner),
			TopicsAssessed: []string{},
		}
		question := demoQuestions[(n-1)%len(demoQuestions)]
		content := fmt.Sprintf("Thank you for sharing that! %s\n%s", question, journey.FormatTrailer(md))
		return llm.MockResponse{Content: content}
	}
}

func learnerTurns(msgs []llm.Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Role == llm.RoleUser && strings.TrimSpace(m.Content) != "" {
			out = append(out, m.Content)
		}
	}
	return out
}

// levelFromWords maps the learner's average message length to a level.
func levelFromWords(turns []string) journey.Level {
	var words int
	for _, t := range turns {
		words += len(strings.Fields(t))
	}
	switch avg := words / len(turns); {
	case avg < 6:
		return journey.LevelBeginner
	case avg < 15:
		return journey.LevelIntermediate
	default:
		return journey.LevelAdvanced
	}
}

// demoCharacter pulls the persona name out of the "You are X, a
// passionate ..." opening of the system prompt.
func demoCharacter(system string) string {
	_, rest, ok := strings.Cut(system, "You are ")
	if !ok {
		return "Your tutor"
	}
	name, _, ok := strings.Cut(rest, ",")
	if !ok || name == "" {
		return "Your tutor"
	}
	return name
}
