package config

import (
	"fmt"
	"os"
)

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of one provider's key pool.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Count  int          `json:"count"`
	Masked string       `json:"masked,omitempty"` // e.g., "XDZ...99I"
}

// CheckAPIKeys returns the status of all provider key pools. Yahoo and
// Naver need no key and are omitted.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkPool("Alpha Vantage", cfg.Keys.AlphaVantage, "WONDASH_KEYS_ALPHAVANTAGE"),
		checkPool("GoldAPI", cfg.Keys.GoldAPI, "WONDASH_KEYS_GOLDAPI"),
		checkPool("Twelve Data", singleton(cfg.Keys.TwelveData), "WONDASH_KEYS_TWELVEDATA"),
	}
}

func singleton(key string) []string {
	if key == "" {
		return nil
	}
	return []string{key}
}

// checkPool reports whether a key pool is populated and where it came from.
func checkPool(name string, keys []string, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: len(keys) > 0,
		Count: len(keys),
	}

	if len(keys) > 0 {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(keys[0])
		if len(keys) > 1 {
			status.Masked = fmt.Sprintf("%s (+%d more)", status.Masked, len(keys)-1)
		}
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
