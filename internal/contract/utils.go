package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/ghrelinlab/posemetrics/schema"
)

// Color variables for console output.
var (
	StrongColor = color.New(color.FgGreen, color.Bold) // p < 0.01
	SignifColor = color.New(color.FgGreen)             // p < 0.05
	WeakColor   = color.New(color.FgHiBlack)           // not significant
)

// GetColorSignificance returns the colored significance stars for console
// output. CSV and JSON writers use schema.SignificanceLabel directly.
func GetColorSignificance(p float64) string {
	text := schema.SignificanceLabel(p)
	switch text {
	case "***", "**":
		return StrongColor.Sprint(text)
	case "*":
		return SignifColor.Sprint(text)
	default:
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateName truncates a name to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for both the "..." prefix and at
// least one character of content.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return name
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

// ParseIntList parses a comma-separated list of integers. Empty input yields
// an empty list.
func ParseIntList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseFloatList parses a comma-separated list of floats. Empty input yields
// an empty list.
func ParseFloatList(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// GetDefaultDBFilePath returns the SQLite file used when no connection string
// is configured.
func GetDefaultDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".posemetrics.db"
	}
	return filepath.Join(homeDir, ".posemetrics.db")
}
