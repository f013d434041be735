package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/baton-ai/baton/internal/config"
	"github.com/baton-ai/baton/internal/logging"
	"github.com/baton-ai/baton/internal/runner"
	"github.com/baton-ai/baton/internal/store"
)

// loadConfig loads and validates the unified configuration using the
// global viper instance, which carries the persistent flag bindings.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger from config, routing output to the
// configured log file when one is set. The returned cleanup closes the
// file handle.
func newLogger(cfg *config.Config) (*logging.Logger, func(), error) {
	output := io.Writer(os.Stdout)
	cleanup := func() {}

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		output = f
		cleanup = func() { _ = f.Close() }
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: output,
	})
	for _, pattern := range cfg.Log.RedactPatterns {
		if err := logger.Sanitizer().AddPattern(pattern); err != nil {
			logger.Warn("skipping invalid redact pattern", "pattern", pattern, "error", err)
		}
	}
	return logger, cleanup, nil
}

// openStore opens the workflow store for one-shot CLI commands. Quiet
// logger, no event bus, no watcher.
func openStore(cfg *config.Config) (*store.Store, error) {
	var opts []store.Option
	if !cfg.Store.SeedExamples {
		opts = append(opts, store.WithoutSeed())
	}
	return store.New(cfg.Store.Dir, nil, logging.NewNop(), opts...)
}

// historyPath resolves the run archive location.
func historyPath(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return runner.DefaultHistoryPath(cfg.Store.Dir)
}

// printJSON pretty-prints v to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
