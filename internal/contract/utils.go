package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/finmap/schema"
)

// Investment level label constants.
const (
	TopValue      = "Top"      // Top value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	TopColor      = color.New(color.FgBlue, color.Bold) // TopColor marks the highest investment quartile.
	HighColor     = color.New(color.FgCyan, color.Bold) // HighColor marks the upper-middle quartile.
	ModerateColor = color.New(color.FgGreen)            // ModerateColor marks the lower-middle quartile.
	LowColor      = color.New(color.FgYellow)           // LowColor marks the bottom quartile.
	MissingColor  = color.New(color.FgHiBlack)          // MissingColor marks regions without data.
)

// GetPlainLabel returns a plain text label for an investment level, where
// position is the value's place within the observed [min, max] range (0..1).
// A nil position means the region has no investment data.
func GetPlainLabel(position *float64) string {
	if position == nil {
		return schema.NotAvailable
	}
	switch p := *position; {
	case p >= 0.75:
		return TopValue
	case p >= 0.5:
		return HighValue
	case p >= 0.25:
		return ModerateValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(position *float64) string {
	text := GetPlainLabel(position)

	switch text {
	case TopValue:
		return TopColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	case LowValue:
		return LowColor.Sprint(text)
	default:
		return MissingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs a progress message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// TruncateName truncates a region name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to ensure there's space for both the "..." suffix and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
