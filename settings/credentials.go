// Package settings provides storage for jp-to-en user settings.
//
// All settings live in the jp-to-en home directory:
//
//	$JP_TO_EN_HOME/  (default: ~/.jp-to-en/)
//
// Files stored:
//   - credentials.json: the OpenAI API key
//   - config.yaml:      tool configuration (loaded by the config package)
//
// The credentials file is written with 0600 permissions (owner read/write
// only).
//
// Lookup order for the API key:
//  1. --api-key flag (highest priority)
//  2. OPENAI_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName         = ".jp-to-en"
	credentialsFile = "credentials.json"

	// HomeEnv overrides the settings directory location.
	HomeEnv = "JP_TO_EN_HOME"
)

// Credentials is the content of credentials.json.
type Credentials struct {
	OpenAIAPIKey string `json:"openai_api_key"`
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// Dir returns the settings directory. $JP_TO_EN_HOME overrides the default
// of ~/.jp-to-en.
func Dir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// CredentialsPath returns the credentials.json path for display purposes.
func CredentialsPath() string {
	return filepath.Join(Dir(), credentialsFile)
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Credentials {
	data, err := os.ReadFile(CredentialsPath())
	if err != nil {
		return Credentials{}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}
	}
	return creds
}

// Save writes the credential store to disk with 0600 permissions and returns
// the path written.
func Save(creds Credentials) (string, error) {
	path := CredentialsPath()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing credentials file: %w", err)
	}

	return path, nil
}

// ---------------------------------------------------------------------------
// API key helpers
// ---------------------------------------------------------------------------

// SetAPIKey stores the OpenAI API key, preserving any other stored fields.
func SetAPIKey(key string) (string, error) {
	creds := Load()
	creds.OpenAIAPIKey = key
	return Save(creds)
}

// APIKey retrieves the stored OpenAI API key.
// Returns empty string if none is stored.
func APIKey() string {
	return Load().OpenAIAPIKey
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
