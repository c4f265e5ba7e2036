package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/sonar-cli/schema"
)

// Color variables for console output.
var (
	BlockerColor  = color.New(color.FgRed, color.Bold)     // BlockerColor represents standard danger.
	CriticalColor = color.New(color.FgMagenta, color.Bold) // CriticalColor represents strong, distinct warning.
	MajorColor    = color.New(color.FgYellow)              // MajorColor represents standard caution, not bold.
	MinorColor    = color.New(color.FgCyan)                // MinorColor represents informational signal.
	PassColor     = color.New(color.FgGreen, color.Bold)
	FailColor     = color.New(color.FgRed, color.Bold)
	WarnColor     = color.New(color.FgYellow, color.Bold)
)

// GetSeverityLabel returns a colored severity for console output (table).
func GetSeverityLabel(s schema.Severity) string {
	text := string(s)
	switch s {
	case schema.SeverityBlocker:
		return BlockerColor.Sprint(text)
	case schema.SeverityCritical:
		return CriticalColor.Sprint(text)
	case schema.SeverityMajor:
		return MajorColor.Sprint(text)
	case schema.SeverityMinor:
		return MinorColor.Sprint(text)
	default:
		return text
	}
}

// GetGateLabel returns a colored quality gate status for console output.
func GetGateLabel(status schema.GateStatus) string {
	text := schema.GateLabel(status)
	switch status {
	case schema.GateOK:
		return PassColor.Sprint(text)
	case schema.GateWarn:
		return WarnColor.Sprint(text)
	default:
		return FailColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
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

// GetDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".sonar_snapshots.db"
	}
	return filepath.Join(homeDir, ".sonar_snapshots.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
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
