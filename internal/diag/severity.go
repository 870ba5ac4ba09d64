package diag

import "github.com/fatih/color"

// Severity orders diagnostics by importance.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// IsFailure reports whether a diagnostic of this severity stops assembly.
func (s Severity) IsFailure() bool { return s >= SevError }

// Color returns a fresh color for the severity label; callers toggle it
// independently of color.NoColor.
func (s Severity) Color() *color.Color {
	switch s {
	case SevError:
		return color.New(color.FgRed, color.Bold)
	case SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
