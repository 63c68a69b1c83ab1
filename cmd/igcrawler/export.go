package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"igcrawler/pkg/storage"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <account>",
	Short: "Export an account's captured posts and crawl history to JSON",
	Long: `Export everything captured for one account to a timestamped JSON file in
the configured export directory.`,
	Example: `  igcrawler export natgeo

  # Write somewhere else
  igcrawler export natgeo --output /tmp`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

var exportOutputDir string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutputDir, "output", "o", "", "output directory (default: export directory from config)")
}

func runExport(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	account := strings.TrimSpace(args[0])

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Failed to connect to database", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewStore(db)
	export, err := store.Export(account)
	if err != nil {
		printError("Export failed", err.Error())
		os.Exit(1)
	}

	dir := exportOutputDir
	if dir == "" {
		dir = cfg.Export.Directory
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		printError("Failed to create export directory", err.Error())
		os.Exit(1)
	}

	filename := fmt.Sprintf("%s_%s.json", account, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		printError("Failed to encode export", err.Error())
		os.Exit(1)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		printError("Failed to write export file", err.Error())
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Exported %d posts and %d history entries", len(export.Posts), len(export.History)))
	printInfo("File", path)
}
