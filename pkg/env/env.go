package env

import "os"

// GetEnv returns the value of the variable or the given default when unset.
func GetEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return def
}
