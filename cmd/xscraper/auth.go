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
	"xscraper/pkg/auth"
	"xscraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage X session credentials",
	Long: `Manage stored X session credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (backward compatibility)

Never share your cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store X session cookies securely",
	Long: `Store X session cookies securely in the system keychain or encrypted file.

You will be prompted for:
  - X username (if not provided)
  - auth_token (from the auth_token cookie)
  - CSRF token (from the ct0 cookie)
  - User Agent (optional, press Enter for default)

To get these values:
1. Log into x.com in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies > https://x.com
4. Find and copy the auth_token and ct0 values`,
	Example: `  # Interactive login
  xscraper auth login

  # Login with username
  xscraper auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials",
	Long: `Remove stored X session credentials.

If no username is provided, you will be shown a list of stored accounts
to choose from. You can also remove all accounts at once.`,
	Example: `  # Interactive logout
  xscraper auth logout

  # Logout specific account
  xscraper auth logout myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored X accounts with sanitized credential information.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowCookieExtractionGuide()

	fmt.Print("Ready to enter your cookies? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'xscraper auth login' when you're ready.")
		return
	}

	fmt.Println()

	if username == "" {
		fmt.Print("X username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read username", err.Error())
			os.Exit(1)
		}
		username = strings.TrimSpace(input)
	}

	if username == "" {
		ui.PrintError("Username is required", "")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("\nAccount '%s' already exists. Update credentials? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your cookie values (they will be hidden as you type):")
	fmt.Println()

	// auth_token is a 40 char hex string
	var authTokenValue string
	for {
		fmt.Print("auth_token cookie value: ")
		authTokenValue, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read auth_token", err.Error())
			os.Exit(1)
		}

		if len(authTokenValue) < 30 {
			fmt.Println("\nThat doesn't look like a valid auth_token.")
			fmt.Println("   It should be a long hexadecimal string, around 40 characters.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// ct0 is longer, typically 160 chars
	var csrfTokenValue string
	for {
		fmt.Print("\nct0 cookie value: ")
		csrfTokenValue, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read CSRF token", err.Error())
			os.Exit(1)
		}

		if len(csrfTokenValue) < 32 {
			fmt.Println("\nThat doesn't look like a valid ct0 token.")
			fmt.Println("   It should be at least 32 characters long.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	fmt.Print("\n\nUser Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	fmt.Println("\nSummary:")
	fmt.Printf("   Username: %s\n", username)
	fmt.Printf("   auth_token: %s...%s (hidden)\n", authTokenValue[:6], authTokenValue[len(authTokenValue)-4:])
	fmt.Printf("   ct0: %s...%s (hidden)\n", csrfTokenValue[:6], csrfTokenValue[len(csrfTokenValue)-4:])
	if userAgent != "" {
		fmt.Printf("   User Agent: %s\n", userAgent)
	}

	account := &auth.Account{
		Username:     username,
		AuthToken:    authTokenValue,
		CSRFToken:    csrfTokenValue,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	fmt.Println("\nStoring credentials securely...")
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", username))

	fmt.Println("\nYour credentials are encrypted and stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("   - System keychain (primary)")
	}
	fmt.Println("   - Encrypted file (backup)")

	fmt.Println("\nQuick start:")
	fmt.Println("   $ xscraper scrape target_accounts.txt")
	fmt.Printf("   $ xscraper scrape --account %s\n", username)
	fmt.Println("\nNever share your cookies or config files!")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		username := args[0]
		if err := manager.Delete(username); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + username)
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintError("No stored accounts found", "")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(accounts) == 1 {
		account := accounts[0]
		fmt.Printf("Remove account '%s'? (y/N): ", account.Username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}

		if err := manager.Delete(account.Username); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + account.Username)
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Username)
	}
	fmt.Printf("  %d. Remove all accounts\n", len(accounts)+1)
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return
	case choice == len(accounts)+1:
		fmt.Print("Remove ALL accounts? This cannot be undone! (yes/N): ")
		confirm, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirm) != "yes" {
			return
		}

		if err := manager.DeleteAll(); err != nil {
			ui.PrintError("Failed to remove all accounts", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("All accounts removed")
	case choice > 0 && choice <= len(accounts):
		account := accounts[choice-1]
		if err := manager.Delete(account.Username); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + account.Username)
	default:
		ui.PrintError("Invalid choice", "")
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'xscraper auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Printf("   auth_token: %s\n", sanitized.AuthToken)
		fmt.Printf("   ct0: %s\n", sanitized.CSRFToken)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
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

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
