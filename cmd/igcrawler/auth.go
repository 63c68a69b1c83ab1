package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igcrawler/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Instagram login credentials",
	Long: `Manage the stored Instagram login used by the crawl session.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (IGCRAWLER_LOGIN_USERNAME / IGCRAWLER_LOGIN_PASSWORD)

Never share your credentials or config files!`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store the Instagram login securely",
	Example: `  # Interactive login
  igcrawler auth login

  # Login with username
  igcrawler auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAuthLogin,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove the stored login",
	Args:  cobra.MaximumNArgs(1),
	Run:   runAuthLogout,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored login with the password masked",
	Run:   runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		printError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if username == "" {
		fmt.Print("Instagram username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			printError("Failed to read username", err.Error())
			os.Exit(1)
		}
		username = strings.TrimSpace(input)
	}

	if username == "" {
		printError("Username is required", "")
		os.Exit(1)
	}

	if manager.Exists(username) {
		fmt.Printf("Login for '%s' already stored. Update it? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Password: ")
	password, err := readPassword()
	if err != nil {
		printError("Failed to read password", err.Error())
		os.Exit(1)
	}
	if password == "" {
		printError("Password is required", "")
		os.Exit(1)
	}

	creds := &auth.Credentials{
		Username:     username,
		Password:     password,
		LastModified: time.Now(),
	}

	if err := manager.Store(creds); err != nil {
		printError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	printSuccess("Login stored: " + username)
}

func runAuthLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		printError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		creds, err := manager.GetCredentials()
		if err != nil {
			printError("No stored login found", "")
			return
		}
		username = creds.Username
	}

	if err := manager.Delete(username); err != nil {
		printError("Failed to remove login", err.Error())
		os.Exit(1)
	}
	printSuccess("Login removed: " + username)
}

func runAuthStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		printError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	creds, err := manager.GetCredentials()
	if err != nil {
		printInfo("No stored login", "use 'igcrawler auth login' to add one")
		return
	}

	sanitized := auth.Sanitize(creds)
	printHighlight("Stored login")
	printInfo("Username", sanitized.Username)
	printInfo("Password", sanitized.Password)
	if !sanitized.LastModified.IsZero() {
		printInfo("Last modified", sanitized.LastModified.Format("2006-01-02 15:04:05"))
	}
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
