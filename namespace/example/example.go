// Package example registers a small namespace of demonstration processes
// and groups.
//
// Import it for its side effect:
//
//	import _ "github.com/ardnew/prun/namespace/example"
package example

import (
	"fmt"

	"github.com/ardnew/prun/entry"
	"github.com/ardnew/prun/pipeline"
)

// Name is the namespace name the package registers under.
const Name = "example"

func init() {
	entry.Register(Name, func() (*pipeline.Module, error) { return Module(), nil })
}

// Module returns a new instance of the namespace. Every call returns fresh
// processes and group definitions.
func Module() *pipeline.Module {
	return &pipeline.Module{
		Doc: "Demonstration processes and groups.",
		Members: []pipeline.Member{
			{Name: "P1", Process: copyProc()},
			{Name: "UndescribedProc", Process: undescribed()},
			{Name: "ExampleProcGroup", Group: group()},
		},
	}
}

func copyProc() *pipeline.Process {
	return &pipeline.Process{
		Name: "P1",
		Doc: `The first process.

Copies a file into the output directory.

Input:
    infile: The file to copy

Envs:
    suffix: Text appended after the file content`,
		Input:  []string{"infile:file"},
		Output: []string{"outfile:file:out.txt"},
		Envs:   map[string]any{"suffix": ""},
		Script: "cat {{quote .in.infile}} > {{quote .out.outfile}}\n" +
			"printf '%s' {{quote .envs.suffix}} >> {{quote .out.outfile}}",
	}
}

func undescribed() *pipeline.Process {
	return &pipeline.Process{
		Name:   "UndescribedProc",
		Input:  []string{"a"},
		Output: []string{"a:{{.in.a}}"},
		Script: "echo {{.in.a}}",
	}
}

func group() *pipeline.GroupDef {
	return &pipeline.GroupDef{
		Name: "ExampleProcGroup",
		Doc: `Write each input to a file, then append a marker.

Args:
    input (list): The input values`,
		Defaults: map[string]any{"input": []string{"100"}},
		Builders: []pipeline.Builder{
			{Name: "p1", Role: pipeline.RoleStart, Build: buildWrite},
			{Name: "p2", Role: pipeline.RoleEnd, Build: buildMark},
		},
	}
}

func buildWrite(g *pipeline.Group) (*pipeline.Process, error) {
	data, err := pipeline.MakeTable([]string{"a"}, [][]string{values(g.Opt("input"))})
	if err != nil {
		return nil, err
	}

	return &pipeline.Process{
		Name:      "P1",
		Doc:       "Write the input to a file.",
		Input:     []string{"a"},
		InputData: data,
		Output:    []string{"outfile:file:out.txt"},
		Script:    "echo {{.in.a}} > {{quote .out.outfile}}",
	}, nil
}

func buildMark(g *pipeline.Group) (*pipeline.Process, error) {
	return &pipeline.Process{
		Name:     "P2",
		Doc:      "Append a marker line.",
		Requires: []*pipeline.Process{g.Proc("p1")},
		Input:    []string{"infile:file"},
		Output:   []string{"outfile:file:out.txt"},
		Script: "cat {{quote .in.infile}} > {{quote .out.outfile}}; " +
			"echo 123 >> {{quote .out.outfile}}",
	}, nil
}

func values(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			out[i] = fmt.Sprint(e)
		}

		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
