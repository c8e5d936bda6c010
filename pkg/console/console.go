// Package console formats messages for terminal output. Styling is applied
// with lipgloss and only when color is enabled.
package console

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/workflow-templates/templatelint/pkg/tty"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
)

// ColorEnabled decides whether stdout output should be styled. NO_COLOR and
// an explicit opt-out both disable it; otherwise stdout must be a terminal.
func ColorEnabled(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return tty.IsStdoutTerminal()
}

// Styler applies styles when enabled and passes text through otherwise.
type Styler struct {
	enabled bool
}

// NewStyler returns a Styler; color false yields plain text.
func NewStyler(color bool) Styler {
	return Styler{enabled: color}
}

func (s Styler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// Error styles text as an error.
func (s Styler) Error(text string) string { return s.render(errorStyle, text) }

// Warning styles text as a warning.
func (s Styler) Warning(text string) string { return s.render(warningStyle, text) }

// Success styles text as a success.
func (s Styler) Success(text string) string { return s.render(successStyle, text) }

// Info styles text as information.
func (s Styler) Info(text string) string { return s.render(infoStyle, text) }

// Muted styles secondary text.
func (s Styler) Muted(text string) string { return s.render(mutedStyle, text) }

// FormatErrorMessage prefixes msg with an error marker, styled when stderr
// is a terminal.
func FormatErrorMessage(msg string) string {
	return NewStyler(tty.IsStderrTerminal()).Error("✗ ") + msg
}

// FormatInfoMessage prefixes msg with an info marker, styled when color is
// set. Callers pass the same color decision they render reports with.
func FormatInfoMessage(msg string, color bool) string {
	return NewStyler(color).Info("ℹ ") + msg
}
