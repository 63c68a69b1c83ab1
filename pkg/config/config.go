package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the crawler
type Config struct {
	// Crawl loop settings
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Browser driver settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Database connection settings
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Export settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CrawlConfig holds the scheduling and discovery knobs
type CrawlConfig struct {
	Accounts           []string      `yaml:"accounts" json:"accounts"`
	IntervalHours      int           `yaml:"interval_hours" json:"interval_hours"`
	MaxPostsPerAccount int           `yaml:"max_posts_per_account" json:"max_posts_per_account"`
	AccountInterval    time.Duration `yaml:"account_interval" json:"account_interval"`
	BrowserTimeout     time.Duration `yaml:"browser_timeout" json:"browser_timeout"`
	PageLoadWait       time.Duration `yaml:"page_load_wait" json:"page_load_wait"`
}

// BrowserConfig holds browser driver configuration
type BrowserConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Headless  bool   `yaml:"headless" json:"headless"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	URL             string        `yaml:"url" json:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// ExportConfig holds export output configuration
type ExportConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			IntervalHours:      24,
			MaxPostsPerAccount: 9,
			AccountInterval:    5 * time.Second,
			BrowserTimeout:     10 * time.Second,
			PageLoadWait:       3 * time.Second,
		},
		Browser: BrowserConfig{
			BaseURL:   "https://www.instagram.com",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Headless:  true,
		},
		Database: DatabaseConfig{
			URL:             "postgres://localhost:5432/igcrawler?sslmode=disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Export: ExportConfig{
			Directory: "exports",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if accounts := os.Getenv("IGCRAWLER_ACCOUNTS"); accounts != "" {
		c.Crawl.Accounts = splitAccounts(accounts)
	}
	if interval := os.Getenv("IGCRAWLER_INTERVAL_HOURS"); interval != "" {
		var val int
		fmt.Sscanf(interval, "%d", &val)
		if val > 0 {
			c.Crawl.IntervalHours = val
		}
	}
	if maxPosts := os.Getenv("IGCRAWLER_MAX_POSTS_PER_ACCOUNT"); maxPosts != "" {
		var val int
		fmt.Sscanf(maxPosts, "%d", &val)
		if val > 0 {
			c.Crawl.MaxPostsPerAccount = val
		}
	}
	if secs := os.Getenv("IGCRAWLER_ACCOUNT_INTERVAL_SECONDS"); secs != "" {
		var val int
		fmt.Sscanf(secs, "%d", &val)
		if val > 0 {
			c.Crawl.AccountInterval = time.Duration(val) * time.Second
		}
	}
	if dbURL := os.Getenv("IGCRAWLER_DATABASE_URL"); dbURL != "" {
		c.Database.URL = dbURL
	}
	if baseURL := os.Getenv("IGCRAWLER_BASE_URL"); baseURL != "" {
		c.Browser.BaseURL = baseURL
	}
	if userAgent := os.Getenv("IGCRAWLER_USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}
	if headless := os.Getenv("IGCRAWLER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if exportDir := os.Getenv("IGCRAWLER_EXPORT_DIR"); exportDir != "" {
		c.Export.Directory = exportDir
	}
	if logLevel := os.Getenv("IGCRAWLER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("IGCRAWLER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

func splitAccounts(raw string) []string {
	var accounts []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			accounts = append(accounts, trimmed)
		}
	}
	return accounts
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".igcrawler.yaml",
		".igcrawler.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igcrawler", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igcrawler", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igcrawler.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igcrawler.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Crawl.IntervalHours <= 0 {
		errs = append(errs, errors.New("crawl interval must be positive"))
	}
	if c.Crawl.MaxPostsPerAccount <= 0 {
		errs = append(errs, errors.New("max posts per account must be positive"))
	}
	if c.Crawl.AccountInterval < 0 {
		errs = append(errs, errors.New("account interval cannot be negative"))
	}
	if c.Crawl.BrowserTimeout <= 0 {
		errs = append(errs, errors.New("browser timeout must be positive"))
	}

	if c.Browser.BaseURL == "" {
		errs = append(errs, errors.New("browser base URL is required"))
	}

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database URL is required"))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("max open connections must be positive"))
	}

	if c.Export.Directory == "" {
		errs = append(errs, errors.New("export directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igcrawler.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
