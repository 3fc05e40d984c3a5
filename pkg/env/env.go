package env

import "os"

// Get reads an environment variable, falling back when it is unset or blank.
// Blank counts as unset so that `FIELDHR_X=` in a .env file does not clobber
// the default.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
