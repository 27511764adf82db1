package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this tool's secrets in the OS keychain.
	KeyringService = "jobexport"
)

var ErrNoAPIKey = errors.New("API key not found (set JSEARCH_API_KEY, pass -key, or store it with -set-key)")

func KeyringAccount(host string) string {
	return fmt.Sprintf("rapidapi:%s", strings.ToLower(strings.TrimSpace(host)))
}

func GetAPIKey(host string) (string, error) {
	key, err := keyring.Get(KeyringService, KeyringAccount(host))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("read keychain: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrNoAPIKey
	}
	return strings.TrimSpace(key), nil
}

func SetAPIKey(host, key string) error {
	if strings.TrimSpace(host) == "" {
		return errors.New("api host is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, KeyringAccount(host), strings.TrimSpace(key))
}

func DeleteAPIKey(host string) error {
	if strings.TrimSpace(host) == "" {
		return errors.New("api host is empty")
	}
	return keyring.Delete(KeyringService, KeyringAccount(host))
}

// ResolveAPIKey prefers an explicit key and falls back to the keychain.
func ResolveAPIKey(explicit, host string) (string, error) {
	if k := strings.TrimSpace(explicit); k != "" {
		return k, nil
	}
	return GetAPIKey(host)
}
