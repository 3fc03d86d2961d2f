package entry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

func runnableNames(m *pipeline.Module) []string {
	var out []string
	for _, mb := range m.Runnable() {
		out = append(out, mb.Name)
	}

	return out
}

func TestLoadYAML(t *testing.T) {
	m, err := LoadYAML("testdata/demo.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if m.Summary() != "Demo namespace." {
		t.Errorf("Summary() = %q", m.Summary())
	}

	if diff := cmp.Diff([]string{"Echo", "Pair"}, runnableNames(m)); diff != "" {
		t.Errorf("runnable mismatch (-want +got):\n%s", diff)
	}

	echo, _ := m.Lookup("Echo")

	want := map[string]any{"count": 3, "ratio": 0.5, "label": "demo"}
	if diff := cmp.Diff(want, echo.Process.Envs); diff != "" {
		t.Errorf("Envs mismatch (-want +got):\n%s", diff)
	}

	tail := m.Members[1].Process
	if len(tail.Requires) != 1 || tail.Requires[0] != echo.Process {
		t.Error("Tail does not require Echo")
	}

	pair, _ := m.Lookup("Pair")

	g, err := pair.Group.Build(map[string]any{"input": []any{"1", "2"}})
	if err != nil {
		t.Fatal(err)
	}

	first := g.Proc("First")
	wantData := pipeline.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}

	if diff := cmp.Diff(wantData, first.InputData); diff != "" {
		t.Errorf("InputData mismatch (-want +got):\n%s", diff)
	}

	if g.Proc("Second").Requires[0] != first {
		t.Error("Second does not require First")
	}
}

func TestLoadHCL(t *testing.T) {
	m, err := LoadHCL("testdata/demo.hcl")
	if err != nil {
		t.Fatal(err)
	}

	echo, ok := m.Lookup("Echo")
	if !ok {
		t.Fatal("Echo not runnable")
	}

	want := map[string]any{"count": 3, "ratio": 0.5, "label": "demo"}
	if diff := cmp.Diff(want, echo.Process.Envs); diff != "" {
		t.Errorf("Envs mismatch (-want +got):\n%s", diff)
	}

	wantData := pipeline.Table{Columns: []string{"a"}, Rows: [][]string{{"x"}, {"2"}}}
	if diff := cmp.Diff(wantData, echo.Process.InputData); diff != "" {
		t.Errorf("InputData mismatch (-want +got):\n%s", diff)
	}

	if echo.Process.NumRetries == nil || *echo.Process.NumRetries != 2 {
		t.Errorf("NumRetries = %v", echo.Process.NumRetries)
	}

	pair, _ := m.Lookup("Pair")

	g, err := pair.Group.Build(nil)
	if err != nil {
		t.Fatal(err)
	}

	col, _ := g.Proc("First").InputData.Column("a")
	if diff := cmp.Diff([]string{"100", "200"}, col); diff != "" {
		t.Errorf("input_from column mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown field", "processes:\n  - name: A\n    bogus: 1\n"},
		{"unknown requirement", "processes:\n  - name: A\n    requires: [B]\n"},
		{"bad role", "groups:\n  - name: G\n    processes:\n      - name: A\n        role: middle\n"},
		{"bad expression", "groups:\n  - name: G\n    processes:\n      - name: A\n        input_from: \"{a:\"\n"},
		{"ragged input", "processes:\n  - name: A\n    input: [a, b]\n    input_data: {a: [1], b: [1, 2]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeYAML(tt.name, []byte(tt.data))
			if !errors.Is(err, pkg.ErrManifest) {
				t.Errorf("expected ErrManifest, got %v", err)
			}
		})
	}
}

func TestLoadYAML_UnknownField(t *testing.T) {
	if _, err := LoadYAML("testdata/broken.yaml"); !errors.Is(err, pkg.ErrManifest) {
		t.Errorf("expected ErrManifest, got %v", err)
	}
}
