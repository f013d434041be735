// Package config loads the engine configuration from defaults, an
// optional YAML file, environment variables and CLI flag bindings.
package config

// Config is the root configuration tree.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Export  ExportConfig  `mapstructure:"export"`
	Agents  AgentsConfig  `mapstructure:"agents"`
	History HistoryConfig `mapstructure:"history"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
	// RedactPatterns are extra regexes added to the log sanitizer.
	RedactPatterns []string `mapstructure:"redact_patterns"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StoreConfig controls workflow persistence.
type StoreConfig struct {
	Dir          string `mapstructure:"dir"`
	Watch        bool   `mapstructure:"watch"`
	SeedExamples bool   `mapstructure:"seed_examples"`
}

// ExportConfig controls artifact placement.
type ExportConfig struct {
	Root string `mapstructure:"root"`
}

// AgentsConfig controls the agent catalog.
type AgentsConfig struct {
	// Catalog is an optional YAML file overriding the built-in agents.
	Catalog string `mapstructure:"catalog"`
}

// HistoryConfig controls the terminal-run archive.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path overrides the database location. Empty means
	// {store.dir}/.baton/history.db.
	Path string `mapstructure:"path"`
}
