package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "luminary",
	Short: "Learn from tutors modeled on history's great minds",
	Long: `Luminary pairs you with a tutor character for each subject. A short
conversation or quiz finds your level, then the tutor teaches at that level.

Set one of ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or
OPENROUTER_API_KEY to enable the tutor chat.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("db", "", "Path to SQLite database file (overrides LUMINARY_DB env var)")
	pf.String("store", "", "Journey record backend: sqlite or bolt")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(journeyCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
