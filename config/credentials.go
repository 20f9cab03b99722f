package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CredentialStore manages per-provider API keys. Keys are stored as plain
// TOML by default; when TKTA_CREDENTIALS_KEY is set the store switches to an
// encrypted JSON blob (see encryption.go).
type CredentialStore struct {
	credentials map[string]string // providerID → API key
	passphrase  string
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		credentials: make(map[string]string),
		passphrase:  os.Getenv("TKTA_CREDENTIALS_KEY"),
	}
}

// Get retrieves a credential for a provider.
func (c *CredentialStore) Get(providerID string) string {
	return c.credentials[providerID]
}

// Set stores a credential for a provider in memory. Call Save to persist.
func (c *CredentialStore) Set(providerID, apiKey string) {
	c.credentials[providerID] = apiKey
}

// Delete removes a credential for a provider.
func (c *CredentialStore) Delete(providerID string) {
	delete(c.credentials, providerID)
}

// Encrypted reports whether the store persists in encrypted form.
func (c *CredentialStore) Encrypted() bool {
	return c.passphrase != ""
}

func credentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.toml")
}

func encryptedCredentialsPath(dataDir string) string {
	return filepath.Join(dataDir, "credentials.enc")
}

// Load reads credentials from disk. A missing file is not an error.
func (c *CredentialStore) Load(dataDir string) error {
	if c.Encrypted() {
		return c.loadEncrypted(dataDir)
	}
	return c.loadPlainText(dataDir)
}

// Save writes credentials to disk with 0600 permissions.
func (c *CredentialStore) Save(dataDir string) error {
	if c.Encrypted() {
		return c.saveEncrypted(dataDir)
	}
	return c.savePlainText(dataDir)
}

type credentialsFile struct {
	Credentials map[string]string `toml:"credentials"`
}

func (c *CredentialStore) loadPlainText(dataDir string) error {
	path := credentialsPath(dataDir)
	if !FileExists(path) {
		return nil
	}

	var cf credentialsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if cf.Credentials != nil {
		c.credentials = cf.Credentials
	}
	return nil
}

func (c *CredentialStore) savePlainText(dataDir string) error {
	path := credentialsPath(dataDir)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(credentialsFile{Credentials: c.credentials}); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return nil
}

func (c *CredentialStore) loadEncrypted(dataDir string) error {
	path := encryptedCredentialsPath(dataDir)
	if !FileExists(path) {
		return nil
	}

	encrypted, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read encrypted credentials: %w", err)
	}

	plain, err := Decrypt(encrypted, c.passphrase)
	if err != nil {
		return fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(plain, &creds); err != nil {
		return fmt.Errorf("failed to parse decrypted credentials: %w", err)
	}
	c.credentials = creds
	return nil
}

func (c *CredentialStore) saveEncrypted(dataDir string) error {
	path := encryptedCredentialsPath(dataDir)

	plain, err := json.Marshal(c.credentials)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	encrypted, err := Encrypt(plain, c.passphrase)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	if err := os.WriteFile(path, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted credentials: %w", err)
	}
	return nil
}
