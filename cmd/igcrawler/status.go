package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"igcrawler/pkg/storage"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective configuration and database state",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the configured accounts",
	Args:  cobra.NoArgs,
	Run:   runAccounts,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	printHighlight("Configuration")
	printInfo("Accounts", strings.Join(cfg.Crawl.Accounts, ", "))
	printInfo("Interval", fmt.Sprintf("%dh", cfg.Crawl.IntervalHours))
	printInfo("Max posts per account", fmt.Sprintf("%d", cfg.Crawl.MaxPostsPerAccount))
	printInfo("Account interval", cfg.Crawl.AccountInterval.String())
	printInfo("Browser timeout", cfg.Crawl.BrowserTimeout.String())
	printInfo("Page load wait", cfg.Crawl.PageLoadWait.String())
	printInfo("Base URL", cfg.Browser.BaseURL)
	printInfo("Export directory", cfg.Export.Directory)
	printInfo("Log level", cfg.Logging.Level)

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Database unreachable", err.Error())
		return
	}
	defer db.Close()

	store := storage.NewStore(db)
	info, err := store.Info()
	if err != nil {
		printError("Failed to read database info", err.Error())
		return
	}

	fmt.Println()
	printHighlight("Database")
	for table, rows := range info {
		printInfo(table, fmt.Sprintf("%d rows", rows))
	}
}

func runAccounts(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if len(cfg.Crawl.Accounts) == 0 {
		printInfo("No accounts configured", "add accounts to the config file or IGCRAWLER_ACCOUNTS")
		return
	}

	printHighlight("Configured accounts")
	for i, account := range cfg.Crawl.Accounts {
		fmt.Printf("  %d. %s\n", i+1, account)
	}
}
