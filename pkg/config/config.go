package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration errors that abort the run before any network activity
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidDelay      = errors.New("invalid delay")
)

// Config holds all configuration options for the timeline scraper
type Config struct {
	// X/Twitter session credentials
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Scrape loop settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Rate limiting for API requests within a single account fetch
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behavior for transient HTTP failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds the session cookie material for the X web API
type TwitterConfig struct {
	AuthToken string `yaml:"auth_token" json:"auth_token"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// ScrapeConfig holds the per-run loop settings
type ScrapeConfig struct {
	// DelayBetweenAccounts is the pause in seconds after each account,
	// skipped after the last one
	DelayBetweenAccounts float64 `yaml:"delay_between_accounts" json:"delay_between_accounts"`

	// TweetLimit caps fetched tweets per account; -1 means no limit
	TweetLimit int `yaml:"tweet_limit" json:"tweet_limit"`

	// AccountsFile is the line-delimited list of target usernames
	AccountsFile string `yaml:"accounts_file" json:"accounts_file"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration for single HTTP requests
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Delay returns the inter-account pause as a duration
func (c *ScrapeConfig) Delay() time.Duration {
	return time.Duration(c.DelayBetweenAccounts * float64(time.Second))
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
		},
		Scrape: ScrapeConfig{
			DelayBetweenAccounts: 1.0,
			TweetLimit:           10,
			AccountsFile:         "target_accounts.txt",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		Output: OutputConfig{
			BaseDirectory: "output",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. An unparseable
// or negative DELAY_BETWEEN_ACCOUNTS is a hard error, not a silent fallback.
func (c *Config) LoadFromEnv() error {
	if authToken := os.Getenv("AUTH_TOKEN"); authToken != "" {
		c.Twitter.AuthToken = authToken
	}
	if csrfToken := os.Getenv("CT0_TOKEN"); csrfToken != "" {
		c.Twitter.CSRFToken = csrfToken
	}
	if userAgent := os.Getenv("XSCRAPER_USER_AGENT"); userAgent != "" {
		c.Twitter.UserAgent = userAgent
	}

	if delay := os.Getenv("DELAY_BETWEEN_ACCOUNTS"); delay != "" {
		val, err := strconv.ParseFloat(delay, 64)
		if err != nil || val < 0 {
			return fmt.Errorf("%w: DELAY_BETWEEN_ACCOUNTS=%q must be a non-negative number", ErrInvalidDelay, delay)
		}
		c.Scrape.DelayBetweenAccounts = val
	}

	if limit := os.Getenv("XSCRAPER_TWEET_LIMIT"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val >= -1 {
			c.Scrape.TweetLimit = val
		}
	}
	if file := os.Getenv("XSCRAPER_ACCOUNTS_FILE"); file != "" {
		c.Scrape.AccountsFile = file
	}
	if rpm := os.Getenv("XSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if outputDir := os.Getenv("XSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel := os.Getenv("XSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
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
	locations := []string{
		".xscraper.yaml",
		".xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credential checks are
// fail-fast: the process must not reach the network without both tokens.
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.AuthToken == "" {
		errs = append(errs, fmt.Errorf("%w: auth_token (AUTH_TOKEN) is required", ErrMissingCredential))
	}
	if c.Twitter.CSRFToken == "" {
		errs = append(errs, fmt.Errorf("%w: csrf_token (CT0_TOKEN) is required", ErrMissingCredential))
	}

	if c.Scrape.DelayBetweenAccounts < 0 {
		errs = append(errs, fmt.Errorf("%w: delay_between_accounts cannot be negative", ErrInvalidDelay))
	}
	if c.Scrape.TweetLimit < -1 {
		errs = append(errs, errors.New("tweet_limit must be -1 (unlimited) or greater"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
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

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if authToken, ok := flags["auth-token"].(string); ok && authToken != "" {
		c.Twitter.AuthToken = authToken
	}
	if csrfToken, ok := flags["csrf-token"].(string); ok && csrfToken != "" {
		c.Twitter.CSRFToken = csrfToken
	}
	if delay, ok := flags["delay"].(float64); ok && delay >= 0 {
		c.Scrape.DelayBetweenAccounts = delay
	}
	if limit, ok := flags["limit"].(int); ok && limit >= -1 {
		c.Scrape.TweetLimit = limit
	}
	if accountsFile, ok := flags["accounts-file"].(string); ok && accountsFile != "" {
		c.Scrape.AccountsFile = accountsFile
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if rateLimit, ok := flags["rate-limit"].(int); ok && rateLimit > 0 {
		c.RateLimit.RequestsPerMinute = rateLimit
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, err
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
