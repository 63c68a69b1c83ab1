package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	mockStore := NewMockStore()
	manager := NewManagerWithStores(mockStore)

	creds := &Credentials{
		Username:     "testuser",
		Password:     "testpass123",
		LastModified: time.Now(),
	}

	if err := manager.Store(creds); err != nil {
		t.Errorf("Failed to store credentials: %v", err)
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Failed to retrieve credentials: %v", err)
	}
	if retrieved.Username != creds.Username {
		t.Errorf("Username mismatch: got %s, want %s", retrieved.Username, creds.Username)
	}
	if retrieved.Password != creds.Password {
		t.Errorf("Password mismatch")
	}

	// The stored identity is also the default login.
	def, err := manager.GetCredentials()
	if err != nil {
		t.Fatalf("Failed to get default credentials: %v", err)
	}
	if def.Username != "testuser" {
		t.Errorf("Expected default login to be testuser, got %s", def.Username)
	}

	if !manager.Exists("testuser") {
		t.Error("Expected credentials to exist")
	}

	if err := manager.Delete("testuser"); err != nil {
		t.Errorf("Failed to delete credentials: %v", err)
	}
	if _, err := manager.Retrieve("testuser"); err == nil {
		t.Error("Expected error retrieving deleted credentials")
	}
}

func TestManagerRejectsIncompleteCredentials(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	if err := manager.Store(nil); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for nil, got %v", err)
	}
	if err := manager.Store(&Credentials{Username: "u"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for missing password, got %v", err)
	}
	if err := manager.Store(&Credentials{Password: "p"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for missing username, got %v", err)
	}
}

func TestManagerFallbackChain(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("backend down")
	broken.RetrieveError = errors.New("backend down")
	working := NewMockStore()

	manager := NewManagerWithStores(broken, working)

	creds := &Credentials{Username: "testuser", Password: "testpass123"}
	if err := manager.Store(creds); err != nil {
		t.Fatalf("Expected store to fall through to working backend: %v", err)
	}

	retrieved, err := manager.GetCredentials()
	if err != nil {
		t.Fatalf("Expected retrieval to fall through: %v", err)
	}
	if retrieved.Username != "testuser" {
		t.Errorf("Unexpected username: %s", retrieved.Username)
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("IGCRAWLER_LOGIN_USERNAME", "envuser")
	os.Setenv("IGCRAWLER_LOGIN_PASSWORD", "envpass")
	defer func() {
		os.Unsetenv("IGCRAWLER_LOGIN_USERNAME")
		os.Unsetenv("IGCRAWLER_LOGIN_PASSWORD")
	}()

	store := NewEnvironmentStore()

	creds, err := store.Retrieve(defaultLoginKey)
	if err != nil {
		t.Fatalf("Failed to retrieve env credentials: %v", err)
	}
	if creds.Username != "envuser" || creds.Password != "envpass" {
		t.Errorf("Unexpected credentials: %+v", creds)
	}

	if _, err := store.Retrieve("someoneelse"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected miss for other username, got %v", err)
	}

	if err := store.Store(creds); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Environment store should be read-only, got %v", err)
	}
	if err := store.Delete("envuser"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Environment store should be read-only, got %v", err)
	}
}

func TestEnvironmentStoreWinsOverStored(t *testing.T) {
	os.Setenv("IGCRAWLER_LOGIN_USERNAME", "envuser")
	os.Setenv("IGCRAWLER_LOGIN_PASSWORD", "envpass")
	defer func() {
		os.Unsetenv("IGCRAWLER_LOGIN_USERNAME")
		os.Unsetenv("IGCRAWLER_LOGIN_PASSWORD")
	}()

	mockStore := NewMockStore()
	manager := NewManagerWithStores(NewEnvironmentStore(), mockStore)

	if err := mockStore.Store(&Credentials{Username: "fileuser", Password: "filepass"}); err != nil {
		t.Fatalf("Failed to seed mock store: %v", err)
	}

	creds, err := manager.GetCredentials()
	if err != nil {
		t.Fatalf("Failed to get credentials: %v", err)
	}
	if creds.Username != "envuser" {
		t.Errorf("Expected environment identity to win, got %s", creds.Username)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_creds.enc")

	os.Setenv("IGCRAWLER_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("IGCRAWLER_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	creds := &Credentials{
		Username:     "testuser",
		Password:     "testpass123",
		LastModified: time.Now(),
	}

	if err := store.Store(creds); err != nil {
		t.Fatalf("Failed to store credentials: %v", err)
	}

	// The file must not leak the password in plaintext.
	data, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if string(data) == "" {
		t.Fatal("Encrypted file is empty")
	}
	if bytes.Contains(data, []byte("testpass123")) {
		t.Error("Password stored in plaintext")
	}

	// A fresh store over the same file decrypts the same credentials.
	reopened, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to reopen encrypted store: %v", err)
	}
	retrieved, err := reopened.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Failed to retrieve credentials: %v", err)
	}
	if retrieved.Password != "testpass123" {
		t.Error("Password did not survive the round trip")
	}

	if err := reopened.Delete("testuser"); err != nil {
		t.Errorf("Failed to delete credentials: %v", err)
	}
	if reopened.Exists("testuser") {
		t.Error("Credentials still exist after deletion")
	}
}

func TestSanitize(t *testing.T) {
	creds := &Credentials{Username: "testuser", Password: "secret"}

	sanitized := Sanitize(creds)
	if sanitized.Password == creds.Password {
		t.Error("Password should be masked")
	}
	if sanitized.Username != creds.Username {
		t.Error("Username should not be masked")
	}
	if creds.Password != "secret" {
		t.Error("Original credentials must not be modified")
	}

	if Sanitize(nil) != nil {
		t.Error("Sanitizing nil should return nil")
	}
}
