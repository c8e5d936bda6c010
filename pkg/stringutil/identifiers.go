// Package stringutil provides string helpers for template names and URLs.
package stringutil

import (
	"regexp"
	"strconv"
	"strings"
)

// templateNamePattern allows lowercase letters, digits and inner underscores.
var templateNamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_]*[a-z0-9])?$`)

// IsValidTemplateName reports whether name follows the file naming convention
// for templates.
func IsValidTemplateName(name string) bool {
	return templateNamePattern.MatchString(name)
}

// IsSafeFileStem reports whether name can be joined onto the template root
// without escaping it.
func IsSafeFileStem(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsRune(name, 0)
}

// Plural returns "1 error" or "2 errors".
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
