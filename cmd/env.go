package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/config"
	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
	"github.com/abhisek/luminary/internal/store"
	"github.com/abhisek/luminary/internal/store/boltstore"
	"github.com/abhisek/luminary/internal/tutor"
)

// loadConfig layers command-line flags over config.Load.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the configured database path, then the default
// XDG path, creating the parent directory.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// boltPath derives the bbolt file that sits next to the SQLite database.
func boltPath(dbPath string) string {
	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".bolt"
}

// appRuntime is everything a command needs once configuration is loaded.
// SQLite always holds LLM events and settings; journey records live in the
// configured backend.
type appRuntime struct {
	cfg      config.Config
	log      *zap.Logger
	db       *store.Store
	journeys journey.Store
	bolt     *boltstore.Store
}

func openRuntime(cfg config.Config, log *zap.Logger) (*appRuntime, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	rt := &appRuntime{cfg: cfg, log: log, db: db, journeys: db.Journeys()}
	if cfg.Store == config.BackendBolt {
		bs, err := boltstore.Open(boltPath(dbPath))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		rt.bolt = bs
		rt.journeys = bs
	}
	log.Debug("store opened", zap.String("db", dbPath), zap.String("backend", cfg.Store))
	return rt, nil
}

func (rt *appRuntime) Close() error {
	var errs []error
	if rt.bolt != nil {
		errs = append(errs, rt.bolt.Close())
	}
	errs = append(errs, rt.db.Close())
	return errors.Join(errs...)
}

// learnerID returns the id given by --learner, or this installation's
// local learner.
func (rt *appRuntime) learnerID(cmd *cobra.Command) (string, error) {
	if f := cmd.Flags().Lookup("learner"); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	return rt.db.LocalLearnerID(cmd.Context())
}

// newTutor builds the tutor service, or returns nil when no model
// credentials are configured.
func (rt *appRuntime) newTutor(ctx context.Context) *tutor.Service {
	provider, err := llm.NewProviderFromEnv(ctx, rt.db.EventRepo(), rt.log,
		llm.WithRequestTimeout(rt.cfg.LLMTimeout),
		llm.WithMockResponder(tutor.DemoResponder()))
	if err != nil {
		rt.log.Warn("LLM provider not configured; tutor chat is unavailable", zap.Error(err))
		return nil
	}

	tcfg := tutor.DefaultConfig()
	tcfg.Method = rt.cfg.Method()
	return tutor.NewService(provider, tcfg, rt.log)
}
