package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"igcrawler/pkg/auth"
	"igcrawler/pkg/browser"
	"igcrawler/pkg/config"
	"igcrawler/pkg/crawler"
	"igcrawler/pkg/discovery"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/scheduler"
	"igcrawler/pkg/session"
	"igcrawler/pkg/storage"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the crawl scheduler and block until interrupted",
	Long: `Start the crawl scheduler.

The first sweep runs immediately; subsequent sweeps fire on the configured
interval. The process blocks until SIGINT or SIGTERM, then stops the
scheduler. An account crawl already in progress is allowed to finish; no
further accounts are started.`,
	Example: `  # Run with accounts from .igcrawler.yaml
  igcrawler run

  # Run with an explicit config file
  igcrawler run -c /etc/igcrawler/config.yaml`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

// onceCmd represents the once command
var onceCmd = &cobra.Command{
	Use:   "once [account]",
	Short: "Run a single sweep and exit",
	Long: `Run exactly one sweep over the configured accounts and exit.

With an account argument, crawl only that account instead of the configured
set.`,
	Example: `  # Sweep all configured accounts once
  igcrawler once

  # Crawl a single account once
  igcrawler once natgeo`,
	Args: cobra.MaximumNArgs(1),
	Run:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
}

// buildCrawler assembles the crawl driver and its collaborators from config.
// The caller owns the returned DB handle.
func buildCrawler(cfg *config.Config) (*crawler.Driver, *sql.DB) {
	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Failed to connect to database", err.Error())
		os.Exit(1)
	}

	store := storage.NewStore(db)
	if err := store.EnsureSchema(); err != nil {
		printError("Failed to prepare database schema", err.Error())
		db.Close()
		os.Exit(1)
	}

	creds, err := auth.NewManager()
	if err != nil {
		printError("Failed to initialize credential manager", err.Error())
		db.Close()
		os.Exit(1)
	}

	drv := browser.NewStaticDriver(cfg.Browser.UserAgent, cfg.Crawl.BrowserTimeout)
	sess := session.NewManager(drv, creds, cfg.Browser.BaseURL, cfg.Crawl.PageLoadWait)
	engine := discovery.NewEngine(drv, store, cfg.Crawl.MaxPostsPerAccount, cfg.Crawl.BrowserTimeout, cfg.Crawl.PageLoadWait)

	return crawler.New(drv, sess, engine, store, store, cfg.Browser.BaseURL, cfg.Crawl.PageLoadWait), db
}

func runRun(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	log := logger.GetLogger()

	if len(cfg.Crawl.Accounts) == 0 {
		printError("No accounts configured", "add accounts to the config file or IGCRAWLER_ACCOUNTS")
		os.Exit(1)
	}

	printHighlight("igcrawler " + version)
	printInfo("Accounts", strings.Join(cfg.Crawl.Accounts, ", "))
	printInfo("Interval", fmt.Sprintf("%dh", cfg.Crawl.IntervalHours))

	drv, db := buildCrawler(cfg)
	defer db.Close()

	sched := scheduler.New(drv, cfg.Crawl.Accounts, cfg.Crawl.IntervalHours, cfg.Crawl.AccountInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start blocks for the first sweep, then returns with the trigger loop
	// running in the background.
	sched.Start()

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutdown signal received")
	sched.Stop()

	printSuccess("Scheduler stopped")
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	drv, db := buildCrawler(cfg)
	defer db.Close()

	if len(args) == 1 {
		account := strings.TrimSpace(args[0])
		outcome := drv.CrawlAccount(account)
		if outcome.Err != nil {
			printError("Crawl failed", outcome.Err.Error())
			os.Exit(1)
		}
		printSuccess(fmt.Sprintf("Crawled %s: %d new posts", account, outcome.NewPostCount))
		return
	}

	if len(cfg.Crawl.Accounts) == 0 {
		printError("No accounts configured", "add accounts to the config file or IGCRAWLER_ACCOUNTS")
		os.Exit(1)
	}

	sched := scheduler.New(drv, cfg.Crawl.Accounts, cfg.Crawl.IntervalHours, cfg.Crawl.AccountInterval)
	sched.RunOnce()
	printSuccess("Sweep complete")
}
