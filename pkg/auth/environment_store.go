package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and always describes the single deployment login identity.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(username string) (*Credentials, error) {
	envUser := os.Getenv("IGCRAWLER_LOGIN_USERNAME")
	envPass := os.Getenv("IGCRAWLER_LOGIN_PASSWORD")

	if envUser == "" || envPass == "" {
		return nil, ErrCredentialsNotFound
	}

	// The environment holds one identity; any requested username other than
	// the configured one (or the default key) is a miss.
	if username != "" && username != defaultLoginKey && username != envUser {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Username:     envUser,
		Password:     envPass,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(username string) bool {
	creds, err := e.Retrieve(username)
	return err == nil && creds != nil
}
