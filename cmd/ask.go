package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
	"github.com/abhisek/luminary/internal/tutor"
)

var askCmd = &cobra.Command{
	Use:   "ask <subject>",
	Short: "Chat with a tutor on stdin without saving progress",
	Long: `Chat with a tutor line by line. Nothing is saved: no journey record,
no level. Useful for checking how a tutor answers at a given level.

Without --level the tutor runs its diagnostic conversation and prints the
assessment it attaches to each reply.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("level", "", "Teach at this level: beginner, intermediate or advanced")
}

func runAsk(cmd *cobra.Command, args []string) error {
	subject, err := lookupSubject(args[0])
	if err != nil {
		return err
	}

	state := journey.State{Stage: journey.StageDiagnosing, DiagnosticTurn: 1}
	if v, _ := cmd.Flags().GetString("level"); v != "" {
		level, err := journey.ParseLevel(v)
		if err != nil {
			return err
		}
		state = journey.State{Stage: journey.StageLearning, Level: level, LevelConfidence: 1}
	}

	ctx := cmd.Context()
	// No EventRepo: this tool leaves no trace in the database.
	provider, err := llm.NewProviderFromEnv(ctx, nil, nil, llm.WithMockResponder(tutor.DemoResponder()))
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	svc := tutor.NewService(provider, tutor.DefaultConfig(), nil)

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintf(out, "%s %s with %s (empty line to quit)\n\n", subject.Icon, subject.Name, subject.Character)
	if state.Stage == journey.StageDiagnosing {
		fmt.Fprintf(out, "%s: %s\n\n", subject.Character, subject.DiagnosticOpener)
	}

	var history []llm.Message
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			return nil
		}
		history = append(history, llm.Message{Role: llm.RoleUser, Content: text})

		reply, err := svc.Proxy(ctx, subject, state, history)
		if err != nil {
			history = history[:len(history)-1]
			fmt.Fprintf(out, "Error: %v. Please try again.\n\n", err)
			continue
		}
		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply.Content})
		fmt.Fprintf(out, "\n%s: %s\n", subject.Character, reply.Content)

		if md := reply.Metadata; md != nil && state.Stage == journey.StageDiagnosing {
			fmt.Fprintf(out, "\033[2m[assessment: %s, confidence %.2f, topics %s]\033[0m\n",
				md.SuggestedLevel, md.Confidence, strings.Join(md.TopicsAssessed, ", "))
			if md.Confidence >= journey.CompletionConfidence || state.DiagnosticTurn >= journey.MaxDiagnosticTurns {
				state = journey.State{Stage: journey.StageLearning, Level: md.SuggestedLevel, LevelConfidence: md.Confidence}
				fmt.Fprintf(out, "\033[2m[diagnosis complete: teaching at the %s level]\033[0m\n", md.SuggestedLevel)
			} else {
				state.DiagnosticTurn++
			}
		}
		fmt.Fprintln(out)
	}
}
