package output

import (
	"os"
	"strings"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

func colorize(text, code string, color bool) string {
	if !color {
		return text
	}
	return code + text + colorReset
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

// List renders items as a comma-separated list, or a dimmed "none".
func List(items []string, color bool) string {
	if len(items) == 0 {
		return Dimmed("none", color)
	}
	return colorize(strings.Join(items, ", "), colorCyan, color)
}
