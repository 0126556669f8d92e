package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"xscraper/pkg/config"
	"xscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage xscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'xscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like session cookies will be masked for security.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "xscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# xscraper Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables: AUTH_TOKEN, CT0_TOKEN,
# DELAY_BETWEEN_ACCOUNTS, and XSCRAPER_* for everything else.

# X session credentials
twitter:
  # auth_token cookie from x.com (required)
  # Get this from your browser's developer tools
  auth_token: "YOUR_AUTH_TOKEN"

  # ct0 cookie from x.com (required)
  csrf_token: "YOUR_CT0_TOKEN"

  # User agent string (optional)
  # Leave empty to use default
  user_agent: ""

# Scrape loop configuration
scrape:
  # Seconds to pause between accounts
  delay_between_accounts: 1.0

  # Max tweets per account, -1 for no limit
  tweet_limit: 10

  # Line-delimited username list, one per line, # for comments
  accounts_file: "target_accounts.txt"

# Rate limiting configuration
rate_limit:
  # Requests per minute
  # Range: 1-120
  requests_per_minute: 60

# Retry configuration
retry:
  # Maximum number of retry attempts per request
  # Range: 0-10
  max_attempts: 3

  # Initial backoff duration
  base_delay: 1s

  # Maximum backoff duration
  max_delay: 30s

  # Backoff multiplier
  multiplier: 2.0

# Output configuration
output:
  # Directory for the JSON artifacts
  base_directory: "output"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your X session cookies")
	fmt.Println("2. Run 'xscraper config validate' to check the configuration")
	fmt.Println("3. Start scraping with 'xscraper scrape <accounts_file>'")
}

// loadWithoutValidation resolves configuration from all sources but skips
// the credential check, so show and validate work before login
func loadWithoutValidation() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadWithoutValidation()
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Mask sensitive values for display
	displayCfg := *cfg
	displayCfg.Twitter.AuthToken = maskToken(displayCfg.Twitter.AuthToken)
	displayCfg.Twitter.CSRFToken = maskToken(displayCfg.Twitter.CSRFToken)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (AUTH_TOKEN, CT0_TOKEN, XSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func maskToken(s string) string {
	if s == "" {
		return s
	}
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "***"
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			"xscraper.yaml",
			"xscraper.yml",
			".xscraper.yaml",
			".xscraper.yml",
			filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := loadWithoutValidation()
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	validationErrors := []string{}

	if cfg.Twitter.AuthToken == "" || cfg.Twitter.AuthToken == "YOUR_AUTH_TOKEN" {
		warnings = append(warnings, "X auth_token not configured")
	}
	if cfg.Twitter.CSRFToken == "" || cfg.Twitter.CSRFToken == "YOUR_CT0_TOKEN" {
		warnings = append(warnings, "X ct0 token not configured")
	}

	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if cfg.RateLimit.RequestsPerMinute < 1 || cfg.RateLimit.RequestsPerMinute > 120 {
		validationErrors = append(validationErrors, "requests_per_minute must be between 1 and 120")
	}
	if cfg.Retry.MaxAttempts < 0 || cfg.Retry.MaxAttempts > 10 {
		validationErrors = append(validationErrors, "max_attempts must be between 0 and 10")
	}
	if cfg.Scrape.TweetLimit < -1 || cfg.Scrape.TweetLimit == 0 {
		validationErrors = append(validationErrors, "tweet_limit must be positive or -1 for no limit")
	}
	if cfg.Scrape.DelayBetweenAccounts < 0 {
		validationErrors = append(validationErrors, "delay_between_accounts cannot be negative")
	}

	if len(validationErrors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, e := range validationErrors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Accounts file: %s\n", cfg.Scrape.AccountsFile)
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Delay between accounts: %.1fs\n", cfg.Scrape.DelayBetweenAccounts)
	fmt.Printf("  Tweet limit: %d\n", cfg.Scrape.TweetLimit)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
