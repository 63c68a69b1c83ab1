package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"igcrawler/pkg/storage"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the crawl database",
}

// dbInitCmd represents the db init command
var dbInitCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"reset"},
	Short:   "Delete all captured data, keeping the schema",
	Run:     runDBInit,
}

// dbInfoCmd represents the db info command
var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show table row counts",
	Run:   runDBInfo,
}

var dbInitForce bool

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbInfoCmd)

	dbInitCmd.Flags().BoolVarP(&dbInitForce, "force", "f", false, "skip the confirmation prompt")
}

func runDBInit(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if !dbInitForce {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Delete ALL captured posts and crawl history? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return
		}
	}

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Failed to connect to database", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewStore(db)
	if err := store.EnsureSchema(); err != nil {
		printError("Failed to prepare database schema", err.Error())
		os.Exit(1)
	}
	if err := store.Init(); err != nil {
		printError("Failed to initialize database", err.Error())
		os.Exit(1)
	}

	printSuccess("Database initialized")
}

func runDBInfo(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Failed to connect to database", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewStore(db)
	info, err := store.Info()
	if err != nil {
		printError("Failed to read database info", err.Error())
		os.Exit(1)
	}

	printHighlight("Database tables")
	for table, rows := range info {
		printInfo(table, fmt.Sprintf("%d rows", rows))
	}
}
