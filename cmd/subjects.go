package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/subjects"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects [id]",
	Short: "List the tutors, or show one in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			s, err := lookupSubject(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s with %s\n", s.Icon, s.Name, s.Character)
			fmt.Fprintf(out, "%q\n\n", s.Quote)
			fmt.Fprintln(out, s.Description)
			fmt.Fprintf(out, "\nTopics: %s\n\n", strings.Join(s.Topics, ", "))
			for _, l := range []journey.Level{journey.LevelBeginner, journey.LevelIntermediate, journey.LevelAdvanced} {
				fmt.Fprintf(out, "  %-12s  %s\n", l, s.LevelDescription(l))
			}
			fmt.Fprintf(out, "\n%d quiz questions\n", len(s.Questions))
			return nil
		}

		all := subjects.All()
		fmt.Fprintf(out, "%-12s  %-12s  %-20s  %s\n", "ID", "Name", "Tutor", "Description")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, s := range all {
			desc := s.Description
			if len(desc) > 48 {
				desc = desc[:45] + "..."
			}
			fmt.Fprintf(out, "%-12s  %-12s  %-20s  %s\n", s.ID, s.Name, s.Character, desc)
		}
		fmt.Fprintf(out, "\n%d subjects\n", len(all))
		return nil
	},
}
