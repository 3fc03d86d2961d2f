// Package pipeline models processes, process groups and the runnable
// pipelines built from them.
package pipeline

import (
	"strings"

	"github.com/ardnew/prun/docstr"
)

// Process is a single unit of computation.
//
// The pointer-typed runtime knobs are nil until something assigns them, in
// which case the execution engine falls back to its configured defaults.
type Process struct {
	Name string
	Doc  string

	// Input declares the input columns, each "key" or "key:type". An element
	// may also hold several comma-separated declarations.
	Input     []string
	InputData Table

	// Output declares the outputs, each "key:kind:template" where kind is one
	// of var, file or dir. "key:template" is shorthand for a var output.
	Output []string
	Script string

	Requires []*Process
	Envs     map[string]any

	Cache           *bool
	Dirsig          *bool
	Export          *bool
	ErrorStrategy   string
	NumRetries      *int
	Forks           *int
	SubmissionBatch *int
	PluginOpts      map[string]any
	SchedulerOpts   map[string]any
}

// InputKey is one parsed input declaration.
type InputKey struct {
	Name string
	// Type is informational only.
	Type string
}

// InputKeys parses the input declarations of p in order.
func (p *Process) InputKeys() []InputKey {
	var keys []InputKey

	for _, decl := range p.Input {
		for field := range strings.SplitSeq(decl, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}

			name, typ, _ := strings.Cut(field, ":")
			keys = append(keys, InputKey{
				Name: strings.TrimSpace(name),
				Type: strings.TrimSpace(typ),
			})
		}
	}

	return keys
}

// HasInput reports whether p declares any input.
func (p *Process) HasInput() bool { return len(p.InputKeys()) > 0 }

// Summary returns the short description of p.
func (p *Process) Summary() string { return docstr.Summary(p.Doc) }

// Depends reports whether p requires q directly.
func (p *Process) Depends(q *Process) bool {
	for _, r := range p.Requires {
		if r == q {
			return true
		}
	}

	return false
}

// Pipeline wraps p in a one-process pipeline named name.
func (p *Process) Pipeline(name string) (*Pipeline, error) {
	pl := New(name)
	pl.Desc = p.Summary()

	return pl.SetStart(p), nil
}

func (p *Process) String() string { return p.Name }
