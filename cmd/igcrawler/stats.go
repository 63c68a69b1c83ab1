package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"igcrawler/pkg/storage"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show crawl statistics",
	Args:  cobra.NoArgs,
	Run:   runStats,
}

// postsCmd represents the posts command
var postsCmd = &cobra.Command{
	Use:   "posts <account>",
	Short: "Show the latest captured posts for an account",
	Example: `  # Last nine captured posts
  igcrawler posts natgeo

  # Last three, plus the count captured in the past day
  igcrawler posts natgeo --limit 3 --days 1`,
	Args: cobra.ExactArgs(1),
	Run:  runPosts,
}

var (
	postsLimit int
	postsDays  int
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(postsCmd)

	postsCmd.Flags().IntVar(&postsLimit, "limit", 9, "number of posts to show")
	postsCmd.Flags().IntVar(&postsDays, "days", 7, "window for the new-post count")
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Failed to connect to database", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewStore(db)
	stats, err := store.Statistics()
	if err != nil {
		printError("Failed to read statistics", err.Error())
		os.Exit(1)
	}

	printHighlight("Crawl statistics")
	printInfo("Accounts with posts", fmt.Sprintf("%d", stats.TotalAccounts))
	printInfo("Total crawls", fmt.Sprintf("%d", stats.TotalCrawls))
	printInfo("Successful crawls", fmt.Sprintf("%d", stats.SuccessfulCrawls))
	printInfo("Success rate", fmt.Sprintf("%.1f%%", stats.SuccessRate))
	if stats.LastCrawl != nil {
		printInfo("Last crawl", stats.LastCrawl.Format("2006-01-02 15:04:05"))
	} else {
		printInfo("Last crawl", "never")
	}
}

func runPosts(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	account := strings.TrimSpace(args[0])

	db, err := storage.Open(&cfg.Database)
	if err != nil {
		printError("Failed to connect to database", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewStore(db)

	posts, err := store.LatestPosts(account, postsLimit)
	if err != nil {
		printError("Failed to read posts", err.Error())
		os.Exit(1)
	}

	recent, err := store.NewPostsCount(account, postsDays)
	if err != nil {
		printError("Failed to count recent posts", err.Error())
		os.Exit(1)
	}

	printHighlight(fmt.Sprintf("Latest posts for %s", account))
	if len(posts) == 0 {
		fmt.Println("  no posts captured yet")
	}
	for _, post := range posts {
		fmt.Printf("  %s (captured %s)\n", post.PostURL, post.CapturedAt.Format("2006-01-02 15:04"))
		if post.Caption != "" {
			caption := post.Caption
			if len(caption) > 80 {
				caption = caption[:77] + "..."
			}
			fmt.Printf("    %s\n", caption)
		}
	}

	fmt.Println()
	printInfo(fmt.Sprintf("Captured in last %dd", postsDays), fmt.Sprintf("%d", recent))
}
