package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// lookup parses an environment variable, falling back when it is unset or unparsable.
func lookup[T any](key string, defaultVal T, parse func(string) (T, error)) T {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	v, err := parse(strings.TrimSpace(value))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	return lookup(key, defaultVal, strconv.Atoi)
}

func getEnvAsBool(key string, defaultVal bool) bool {
	return lookup(key, defaultVal, strconv.ParseBool)
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	return lookup(key, defaultVal, time.ParseDuration)
}

// getEnvAsBytes accepts plain byte counts as well as sizes like "10MiB" or "5MB".
func getEnvAsBytes(key string, defaultVal int64) int64 {
	return lookup(key, defaultVal, func(v string) (int64, error) {
		n, err := humanize.ParseBytes(v)
		return int64(n), err
	})
}

func getEnvAsStringSlice(key string, defaults []string) []string {
	filtered := lookup(key, []string(nil), func(v string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	})
	if len(filtered) == 0 {
		return defaults
	}
	return filtered
}
