// Package logger provides namespaced debug logging controlled by the DEBUG
// environment variable, in the style of the npm debug package.
package logger

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/workflow-templates/templatelint/pkg/tty"
)

// Logger writes debug lines for a single namespace such as "checks:files".
type Logger struct {
	namespace string
	enabled   bool
	color     string

	mu      sync.Mutex
	lastLog time.Time
}

var (
	// debugEnv is read once; tests overwrite it directly.
	debugEnv = os.Getenv("DEBUG")

	debugColors = os.Getenv("DEBUG_COLORS") != "0"

	isTTY = tty.IsStderrTerminal()

	// output is where enabled loggers write.
	output io.Writer = os.Stderr

	palette = []string{
		"\033[38;5;33m",
		"\033[38;5;35m",
		"\033[38;5;166m",
		"\033[38;5;125m",
		"\033[38;5;37m",
		"\033[38;5;161m",
		"\033[38;5;136m",
		"\033[38;5;63m",
	}
)

const colorReset = "\033[0m"

// New creates a Logger for namespace. Whether it prints is decided here,
// from the DEBUG patterns:
//
//	DEBUG=*                 every namespace
//	DEBUG=checks:*          every namespace starting with "checks:"
//	DEBUG=index,report      exact namespaces
//	DEBUG=*,-watch:*        everything except the watch namespaces
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   computeEnabled(namespace),
		color:     selectColor(namespace),
		lastLog:   time.Now(),
	}
}

// Enabled reports whether the logger prints anything.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf logs a formatted line followed by the time since the previous line.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print logs its arguments concatenated like fmt.Sprint.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(message string) {
	l.mu.Lock()
	now := time.Now()
	diff := now.Sub(l.lastLog)
	l.lastLog = now
	l.mu.Unlock()

	ns := l.namespace
	if l.color != "" {
		ns = l.color + ns + colorReset
	}
	fmt.Fprintf(output, "%s %s +%s\n", ns, message, formatDuration(diff))
}

func selectColor(namespace string) string {
	if !debugColors || !isTTY {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(namespace))
	return palette[h.Sum32()%uint32(len(palette))]
}

// computeEnabled evaluates the DEBUG patterns; exclusions always win.
func computeEnabled(namespace string) bool {
	enabled := false
	for pattern := range strings.SplitSeq(debugEnv, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if excluded, ok := strings.CutPrefix(pattern, "-"); ok {
			if matchPattern(namespace, excluded) {
				return false
			}
			continue
		}
		if matchPattern(namespace, pattern) {
			enabled = true
		}
	}
	return enabled
}

// matchPattern supports a single "*" wildcard at the start, end or middle.
func matchPattern(namespace, pattern string) bool {
	if pattern == "*" || pattern == namespace {
		return true
	}
	before, after, found := strings.Cut(pattern, "*")
	if !found {
		return false
	}
	if len(namespace) < len(before)+len(after) {
		return false
	}
	return strings.HasPrefix(namespace, before) && strings.HasSuffix(namespace, after)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
