package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"xscraper/pkg/auth"
	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/scraper"
	"xscraper/pkg/storage"
	"xscraper/pkg/targets"
	"xscraper/pkg/twitter"
	"xscraper/pkg/ui"
)

var (
	// Scrape command flags
	outputDir    string
	accountsFile string
	accountName  string
	authToken    string
	csrfToken    string
	delaySecs    float64
	tweetLimit   int
	rateLimit    int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [accounts_file]",
	Short: "Scrape tweets from each username in a list file",
	Long: `Scrape tweets and profile metadata for every username in a
line-delimited list file, one account at a time.

This command requires a valid X session to be configured either through:
  - Stored credentials (use 'xscraper auth login' to store)
  - Environment variables (AUTH_TOKEN and CT0_TOKEN)
  - Configuration file

Each account produces two timestamped JSON files in the output directory:
  tweets_<username>_<timestamp>.json
  user_metadata_<username>_<timestamp>.json

A failed account never aborts the run; its artifacts record the failure
and the loop moves on to the next username.`,
	Example: `  # Scrape the default target_accounts.txt
  xscraper scrape

  # Scrape a specific list with a 5 second pause between accounts
  xscraper scrape watchlist.txt --delay 5

  # Fetch every available tweet instead of the default 10
  xscraper scrape --limit -1 --output ./archive

  # Use a specific stored session
  xscraper scrape --account myaccount`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for JSON artifacts (default: ./output)")
	scrapeCmd.Flags().StringVar(&accountsFile, "accounts-file", "", "line-delimited username list (default: target_accounts.txt)")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored session")
	scrapeCmd.Flags().StringVar(&authToken, "auth-token", "", "auth_token cookie value")
	scrapeCmd.Flags().StringVar(&csrfToken, "csrf-token", "", "ct0 cookie value")
	scrapeCmd.Flags().Float64Var(&delaySecs, "delay", 1, "seconds to pause between accounts")
	scrapeCmd.Flags().IntVar(&tweetLimit, "limit", 10, "max tweets per account, -1 for no limit")
	scrapeCmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "requests per minute")
}

func runScrape(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		accountsFile = args[0]
	}

	flags := scrapeFlagOverrides(cmd)

	// Credentials from the manager are resolved before config validation
	// so stored sessions satisfy the required-credential check
	account := resolveAccount()
	if account != nil {
		if authToken == "" {
			flags["auth-token"] = account.AuthToken
		}
		if csrfToken == "" {
			flags["csrf-token"] = account.CSRFToken
		}
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		if errors.Is(err, config.ErrMissingCredential) {
			showCredentialHint()
		}
		os.Exit(1)
	}

	if account != nil && account.UserAgent != "" {
		cfg.Twitter.UserAgent = account.UserAgent
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("xscraper starting")

	if account != nil {
		log.WithField("account", account.Username).Info("Using stored session")
		ui.PrintInfo("Using session", account.Username)
	}

	usernames, err := targets.Load(cfg.Scrape.AccountsFile)
	if err != nil {
		log.WithError(err).Error("Failed to load accounts file")
		ui.PrintError("Failed to load accounts file", err.Error())
		os.Exit(1)
	}
	if len(usernames) == 0 {
		ui.PrintWarning("No usernames found", cfg.Scrape.AccountsFile)
		return
	}

	ui.PrintInfo("Accounts file", cfg.Scrape.AccountsFile)
	ui.PrintInfo("Targets", fmt.Sprintf("%d", len(usernames)))
	ui.PrintInfo("Output directory", cfg.Output.BaseDirectory)

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		log.WithError(err).Error("Failed to prepare output directory")
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}

	client := twitter.NewClient(cfg, log)
	s := scraper.New(cfg, client, store, log)

	ui.PrintHighlight("[STARTING TIMELINE EXTRACTION]")

	summary := s.Run(usernames)

	fmt.Println()
	ui.PrintHighlight("Run Summary")
	ui.PrintInfo("Processed", fmt.Sprintf("%d", summary.Processed))
	ui.PrintInfo("Succeeded", fmt.Sprintf("%d", summary.Succeeded))
	ui.PrintInfo("Failed", fmt.Sprintf("%d", summary.Failed))

	// Per-account failures are recorded in the artifacts; a completed
	// run exits zero regardless
	if summary.Failed > 0 {
		ui.PrintWarning("Some accounts failed", "check the metadata files for details")
	} else {
		ui.PrintSuccess("[EXTRACTION COMPLETED SUCCESSFULLY]")
	}
}

// scrapeFlagOverrides collects the command line values that override every
// other configuration source. String flags forward when non-empty; numeric
// and level flags forward when explicitly set, so passing a flag at its
// default value still overrides a config file.
func scrapeFlagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if accountsFile != "" {
		flags["accounts-file"] = accountsFile
	}
	if authToken != "" {
		flags["auth-token"] = authToken
	}
	if csrfToken != "" {
		flags["csrf-token"] = csrfToken
	}
	if cmd.Flags().Changed("delay") {
		flags["delay"] = delaySecs
	}
	if cmd.Flags().Changed("limit") {
		flags["limit"] = tweetLimit
	}
	if cmd.Flags().Changed("rate-limit") {
		flags["rate-limit"] = rateLimit
	}
	// log-level is persistent on the root command; the flag instance is
	// shared, so Changed reflects whichever command parsed it
	if rootCmd.PersistentFlags().Changed("log-level") {
		flags["log-level"] = logLevel
	}
	return flags
}

// resolveAccount picks a stored session when one is requested or available.
// Explicit cookie flags and env vars always win over stored sessions.
func resolveAccount() *auth.Account {
	if authToken != "" && csrfToken != "" {
		return nil
	}
	if os.Getenv("AUTH_TOKEN") != "" && os.Getenv("CT0_TOKEN") != "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil
	}

	if accountName != "" {
		account, err := manager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'xscraper auth list' to see stored sessions")
			os.Exit(1)
		}
		return account
	}

	account, err := manager.RetrieveDefault()
	if err != nil {
		return nil
	}
	return account
}

// Make scrape the default command when no subcommand is specified
func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// Treat the first argument as an accounts file
			scrapeCmd.Run(scrapeCmd, args)
			return nil
		}
		return cmd.Help()
	}
	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}

func showCredentialHint() {
	fmt.Println("\nTo store a session securely, run:")
	fmt.Println("  xscraper auth login")
	fmt.Println("\nOr set environment variables:")
	fmt.Println("  export AUTH_TOKEN=your_auth_token_cookie")
	fmt.Println("  export CT0_TOKEN=your_ct0_cookie")
}
