package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testAccount(username string) *Account {
	return &Account{
		Username:  username,
		AuthToken: "8a2f1c0000000000000000000000000000000000",
		CSRFToken: "f3b9d7e1a00000000000000000000000000000000000000000000000000000",
		UserAgent: "test-agent",
	}
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, _ := NewMockManager()

	account := testAccount("scraper_account")
	if err := manager.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	retrieved, err := manager.Retrieve("scraper_account")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}

	if retrieved.AuthToken != account.AuthToken {
		t.Errorf("Auth token mismatch: got %s", retrieved.AuthToken)
	}
	if retrieved.CSRFToken != account.CSRFToken {
		t.Errorf("CSRF token mismatch: got %s", retrieved.CSRFToken)
	}
	if retrieved.LastModified.IsZero() {
		t.Error("Expected LastModified to be set on store")
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	tests := []struct {
		name    string
		account *Account
	}{
		{"missing username", &Account{AuthToken: "a", CSRFToken: "c"}},
		{"missing auth token", &Account{Username: "u", CSRFToken: "c"}},
		{"missing ct0 token", &Account{Username: "u", AuthToken: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := manager.Store(tt.account); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestManagerRetrieveNotFound(t *testing.T) {
	manager, _ := NewMockManager()

	if _, err := manager.Retrieve("nobody"); err == nil {
		t.Error("Expected error for unknown account")
	}
}

func TestManagerFallbackBetweenStores(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = errors.New("store unavailable")
	failing.RetrieveError = ErrCredentialsNotFound

	working := NewMockStore()
	manager := NewMockManagerWithStores(failing, working)

	account := testAccount("fallback_user")
	if err := manager.Store(account); err != nil {
		t.Fatalf("Expected fallback store to accept the account: %v", err)
	}

	if working.Count() != 1 {
		t.Error("Expected account in the fallback store")
	}

	retrieved, err := manager.Retrieve("fallback_user")
	if err != nil {
		t.Fatalf("Failed to retrieve through fallback: %v", err)
	}
	if retrieved.Username != "fallback_user" {
		t.Errorf("Unexpected account: %s", retrieved.Username)
	}
}

func TestManagerDelete(t *testing.T) {
	manager, store := NewMockManager()

	if err := manager.Store(testAccount("to_delete")); err != nil {
		t.Fatal(err)
	}

	if err := manager.Delete("to_delete"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if store.Exists("to_delete") {
		t.Error("Account still exists after delete")
	}

	if err := manager.Delete("to_delete"); err == nil {
		t.Error("Expected error deleting missing account")
	}
}

func TestManagerListPrefersMostRecent(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	stale := testAccount("shared")
	stale.AuthToken = "stale-token-0000000000000000000000000000"
	stale.LastModified = time.Now().Add(-time.Hour)
	older.accounts["shared"] = stale

	fresh := testAccount("shared")
	fresh.LastModified = time.Now()
	newer.accounts["shared"] = fresh

	manager := NewMockManagerWithStores(older, newer)

	accounts, err := manager.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 {
		t.Fatalf("Expected 1 merged account, got %d", len(accounts))
	}
	if accounts[0].AuthToken == stale.AuthToken {
		t.Error("Expected the most recently modified account to win")
	}
}

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "env-auth-token")
	t.Setenv("CT0_TOKEN", "env-ct0-token")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if account.Username != "default" {
		t.Errorf("Expected default username, got %s", account.Username)
	}
	if account.AuthToken != "env-auth-token" {
		t.Errorf("Unexpected auth token: %s", account.AuthToken)
	}

	if err := store.Store(account); !errors.Is(err, ErrStoreUnavailable) {
		t.Error("Environment store should not support Store")
	}
}

func TestEnvironmentStoreMissingTokens(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "")
	t.Setenv("CT0_TOKEN", "")

	store := NewEnvironmentStore()
	if _, err := store.Retrieve(""); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
	if store.Exists("") {
		t.Error("Exists should be false without tokens")
	}
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("XSCRAPER_PASSPHRASE", "test-passphrase")

	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	account := testAccount("encrypted_user")
	account.LastModified = time.Now()
	if err := store.Store(account); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	// A second store instance with the same passphrase must decrypt it
	store2, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	retrieved, err := store2.Retrieve("encrypted_user")
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if retrieved.AuthToken != account.AuthToken {
		t.Error("Decrypted auth token mismatch")
	}

	if err := store2.Delete("encrypted_user"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if store2.Exists("encrypted_user") {
		t.Error("Account still exists after delete")
	}
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("XSCRAPER_PASSPHRASE", "first-passphrase")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Store(testAccount("locked_user")); err != nil {
		t.Fatal(err)
	}

	t.Setenv("XSCRAPER_PASSPHRASE", "wrong-passphrase")
	store2, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store2.Retrieve("locked_user"); err == nil {
		t.Error("Expected decryption failure with wrong passphrase")
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("masked")
	sanitized := SanitizeAccount(account)

	if sanitized.AuthToken == account.AuthToken {
		t.Error("Auth token was not masked")
	}
	if sanitized.Username != account.Username {
		t.Error("Username should not be masked")
	}

	if SanitizeAccount(nil) != nil {
		t.Error("Expected nil for nil account")
	}
}
