// Package output handles formatting CLI output as table, JSON, or compact.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// OutputEnv selects the default format when no flag is given.
const OutputEnv = "LUMINA_OUTPUT"

// Detect returns the appropriate format based on flags and environment.
// Default is table when no explicit format is set.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}
	if tableFlag {
		return FormatTable
	}

	switch os.Getenv(OutputEnv) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}

	return FormatTable
}

// ColorEnabled reports whether w is a terminal that accepts color and the
// user has not set NO_COLOR.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(termenv.File)
	if !ok {
		return false
	}
	out := termenv.NewOutput(f)
	return !out.EnvNoColor() && out.EnvColorProfile() != termenv.Ascii
}
