// Package env reads process environment variables directly, for the few
// knobs the service needs before the typed configuration is loaded.
package env

import "os"

// Get returns the value of key, or fallback when the variable is unset
// or blank.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
