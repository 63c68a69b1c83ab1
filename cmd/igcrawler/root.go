package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"igcrawler/pkg/config"
	"igcrawler/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igcrawler",
	Short: "Scheduled Instagram profile crawler with Postgres-backed dedup",
	Long: `igcrawler watches a configured set of Instagram accounts, sweeping them on a
fixed interval and recording new posts it has not captured before.

Each sweep visits every account in turn, discovers the most recent posts on the
profile grid, filters out posts already stored, extracts details for the new
ones, and appends one crawl record per account to the history ledger. Sweeps
never overlap and a stop request takes effect between accounts.

Credentials for the login session are stored securely via:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (IGCRAWLER_LOGIN_USERNAME / IGCRAWLER_LOGIN_PASSWORD)`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .igcrawler.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.SetVersionTemplate(`igcrawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration and wires the global logger. Every
// subcommand goes through here first.
func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		printError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		printError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	return cfg
}
