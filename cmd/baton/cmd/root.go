package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	storeDir   string
	exportRoot string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "baton",
	Short: "Multi-agent workflow engine for Claude-based agent teams",
	Long: `baton defines multi-agent workflows as directed graphs, compiles them
into prompts and reusable artifacts, and tracks externally driven runs
step by step.

The engine never calls an agent itself: 'baton serve' exposes the REST
API and event streams that a driving client advances runs through.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./baton.yaml, ~/.config/baton, ~/.baton)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "",
		"workflow store directory (default: ~/.claude/workflows)")
	rootCmd.PersistentFlags().StringVar(&exportRoot, "export-root", "",
		"artifact export root (default: ~/.claude)")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))
	_ = viper.BindPFlag("export.root", rootCmd.PersistentFlags().Lookup("export-root"))
}
