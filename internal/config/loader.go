package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "BATON",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "BATON",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (BATON_*)
// 3. Config file (explicit path, else baton.yaml in ., ~/.config/baton, ~/.baton)
// 4. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("baton")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "baton"))
			l.v.AddConfigPath(filepath.Join(home, ".baton"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values. Paths default under the user's
// home directory so the engine shares the agent platform's layout.
func (l *Loader) setDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")
	l.v.SetDefault("log.file", "")
	l.v.SetDefault("log.redact_patterns", []string{})

	l.v.SetDefault("server.host", "127.0.0.1")
	l.v.SetDefault("server.port", 8843)
	l.v.SetDefault("server.cors_origins", []string{"*"})

	l.v.SetDefault("store.dir", filepath.Join(home, ".claude", "workflows"))
	l.v.SetDefault("store.watch", true)
	l.v.SetDefault("store.seed_examples", true)

	l.v.SetDefault("export.root", filepath.Join(home, ".claude"))

	l.v.SetDefault("agents.catalog", "")

	l.v.SetDefault("history.enabled", true)
	l.v.SetDefault("history.path", "")
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}
