//go:build !integration

package envutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/workflow-templates/templatelint/pkg/logger"
)

func TestGetIntFromEnv(t *testing.T) {
	const testEnvVar = "TEMPLATELINT_TEST_INT_VALUE"

	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		minValue     int
		maxValue     int
		expected     int
	}{
		{name: "default when unset", envValue: "", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 300},
		{name: "value in range", envValue: "750", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 750},
		{name: "value at minimum", envValue: "10", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 10},
		{name: "value at maximum", envValue: "5000", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 5000},
		{name: "below minimum", envValue: "5", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 300},
		{name: "above maximum", envValue: "9000", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 300},
		{name: "not a number", envValue: "fast", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 300},
		{name: "whitespace is not trimmed", envValue: " 50 ", defaultValue: 300, minValue: 10, maxValue: 5000, expected: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testEnvVar, tt.envValue)
			got := GetIntFromEnv(testEnvVar, tt.defaultValue, tt.minValue, tt.maxValue, logger.New("test:envutil"))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGetIntFromEnv_WithoutLogger(t *testing.T) {
	t.Setenv("TEMPLATELINT_TEST_INT_NO_LOG", "oops")
	assert.Equal(t, 7, GetIntFromEnv("TEMPLATELINT_TEST_INT_NO_LOG", 7, 1, 10, nil), "nil logger must be tolerated")
}

func TestIsGitHubActions(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, IsGitHubActions())

	t.Setenv("GITHUB_ACTIONS", "")
	assert.False(t, IsGitHubActions())
}
