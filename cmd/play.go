package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/app"
	"github.com/abhisek/luminary/internal/logging"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the terminal tutor",
	RunE:  runPlay,
}

// runPlay opens the store, builds dependencies, and launches the TUI. The
// terminal belongs to the UI, so logs go to a file beside the database.
func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	cfg.DBPath = dbPath

	log, err := logging.NewFile(cfg.Log.Level, filepath.Join(filepath.Dir(dbPath), "luminary.log"))
	if err != nil {
		return err
	}
	defer log.Sync()

	rt, err := openRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	learner, err := rt.learnerID(cmd)
	if err != nil {
		return err
	}

	deps := app.Deps{
		Store:     rt.journeys,
		Tutor:     rt.newTutor(ctx),
		LearnerID: learner,
		Method:    cfg.Method(),
		Logger:    log,
	}
	if rt.bolt == nil {
		deps.History = rt.db.Journeys()
	}
	log.Info("starting terminal tutor", zap.String("learner", learner), zap.Bool("tutor", deps.Tutor != nil))
	return app.Run(deps)
}
