package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/logging"
	"github.com/abhisek/luminary/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tutor HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer log.Sync()

		rt, err := openRuntime(cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tutorSvc := rt.newTutor(ctx)
		srv := server.New(server.Options{
			Tutor:   tutorSvc,
			Store:   rt.journeys,
			Method:  cfg.Method(),
			Limiter: server.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
			Logger:  log,
		})

		log.Info("starting server", zap.String("store", cfg.Store), zap.String("assessment", cfg.Assessment), zap.Bool("tutor", tutorSvc != nil))
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}
