// Package envutil reads typed settings from environment variables.
package envutil

import (
	"os"
	"strconv"

	"github.com/workflow-templates/templatelint/pkg/logger"
)

// GetIntFromEnv parses name as an integer within [minValue, maxValue].
// Unset, malformed or out-of-range values fall back to defaultValue. log may
// be nil.
func GetIntFromEnv(name string, defaultValue, minValue, maxValue int, log *logger.Logger) int {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Printf("Ignoring %s=%q: not an integer", name, raw)
		}
		return defaultValue
	}
	if value < minValue || value > maxValue {
		if log != nil {
			log.Printf("Ignoring %s=%d: outside [%d, %d]", name, value, minValue, maxValue)
		}
		return defaultValue
	}
	return value
}

// IsGitHubActions reports whether the process runs inside a GitHub Actions job.
func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}
