package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/logging"
	"github.com/abhisek/luminary/internal/store"
	"github.com/abhisek/luminary/internal/subjects"
)

var journeyCmd = &cobra.Command{
	Use:   "journey",
	Short: "Inspect or reset saved learning journeys",
}

var journeyShowCmd = &cobra.Command{
	Use:   "show [subject]",
	Short: "Show saved levels",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			learner, err := rt.learnerID(cmd)
			if err != nil {
				return err
			}
			saved, err := savedJourneys(cmd, rt, learner)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if _, err := lookupSubject(args[0]); err != nil {
					return err
				}
				var filtered []journey.SavedJourney
				for _, sj := range saved {
					if sj.Key.SubjectID == args[0] {
						filtered = append(filtered, sj)
					}
				}
				saved = filtered
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Learner: %s\n\n", learner)
			if len(saved) == 0 {
				fmt.Fprintln(out, "No saved journeys.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SUBJECT\tLEVEL\tSAVED")
			for _, sj := range saved {
				fmt.Fprintf(w, "%s\t%s\t%s\n", sj.Key.SubjectID, sj.Record.Level,
					sj.Record.SavedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		})
	},
}

var journeyResetCmd = &cobra.Command{
	Use:   "reset <subject>",
	Short: "Forget the saved level so the next visit starts fresh",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := lookupSubject(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(rt *appRuntime) error {
			learner, err := rt.learnerID(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			key := journey.Key{LearnerID: learner, SubjectID: subject.ID}
			journey.NewTracker(ctx, rt.journeys, key, journey.WithLogger(rt.log)).Reset(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s for %s.\n", subject.Name, learner)
			return nil
		})
	},
}

var journeyHistoryCmd = &cobra.Command{
	Use:   "history <subject>",
	Short: "List recorded journey transitions (sqlite store only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := lookupSubject(args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		return withRuntime(cmd, func(rt *appRuntime) error {
			if rt.bolt != nil {
				return fmt.Errorf("history is only recorded by the sqlite store")
			}
			learner, err := rt.learnerID(cmd)
			if err != nil {
				return err
			}
			key := journey.Key{LearnerID: learner, SubjectID: subject.ID}
			events, err := rt.db.Journeys().History(cmd.Context(), key, store.QueryOpts{Limit: limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No journey events found.")
				return nil
			}
			fmt.Fprintf(out, "%-5s  %-19s  %-16s  %-10s  %-12s  %-5s  %s\n",
				"Seq", "Timestamp", "Action", "Stage", "Level", "Turn", "Conf")
			fmt.Fprintln(out, strings.Repeat("─", 80))
			for _, e := range events {
				fmt.Fprintf(out, "%-5d  %-19s  %-16s  %-10s  %-12s  %-5d  %.2f\n",
					e.Sequence,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Action, e.Stage, e.Level, e.Turn, e.Confidence)
			}
			return nil
		})
	},
}

// withRuntime loads config, opens stores with a stderr logger and runs fn.
func withRuntime(cmd *cobra.Command, fn func(rt *appRuntime) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := openRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// savedJourneys lists the learner's records, falling back to one lookup per
// subject when the backend cannot enumerate.
func savedJourneys(cmd *cobra.Command, rt *appRuntime, learner string) ([]journey.SavedJourney, error) {
	if lister, ok := rt.journeys.(journey.Lister); ok {
		return lister.ListJourneys(cmd.Context(), learner)
	}
	var out []journey.SavedJourney
	for _, id := range subjects.IDs() {
		key := journey.Key{LearnerID: learner, SubjectID: id}
		rec, err := rt.journeys.LoadJourney(cmd.Context(), key)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, journey.SavedJourney{Key: key, Record: *rec})
		}
	}
	return out, nil
}

func lookupSubject(id string) (subjects.Subject, error) {
	s, ok := subjects.Lookup(id)
	if !ok {
		return subjects.Subject{}, fmt.Errorf("unknown subject %q (want one of %s)", id, strings.Join(subjects.IDs(), ", "))
	}
	return s, nil
}

func init() {
	journeyCmd.PersistentFlags().String("learner", "", "Learner id (defaults to this installation's learner)")
	journeyHistoryCmd.Flags().IntP("limit", "n", 50, "Number of events to show")

	journeyCmd.AddCommand(journeyShowCmd)
	journeyCmd.AddCommand(journeyResetCmd)
	journeyCmd.AddCommand(journeyHistoryCmd)
}
