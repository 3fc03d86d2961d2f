//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the prun module embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the embedded semantic version with surrounding whitespace
// removed.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "prun"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Run a process or a pipeline from an installed namespace"
	// RunCommand is the subcommand name under which namespaces are routed.
	RunCommand = "run"
)

// Prog returns the program prefix shown in usage lines, for example
// "prun run" or "prun run ns target".
func Prog(elem ...string) string {
	return strings.Join(append([]string{Name, RunCommand}, elem...), " ")
}
