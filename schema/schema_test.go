package schema

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/prun/pipeline"
)

func exampleGroup(t *testing.T, opts map[string]any) *pipeline.Group {
	t.Helper()

	def := &pipeline.GroupDef{
		Name: "G",
		Doc: `Two processes.

Args:
    input (list): Values for P1.
    label: A label.
`,
		Defaults: map[string]any{"input": []any{"100"}, "label": "x"},
		Builders: []pipeline.Builder{
			{Name: "P1", Role: pipeline.RoleStart, Build: func(g *pipeline.Group) (*pipeline.Process, error) {
				col := g.Opt("input")

				var data []string
				switch c := col.(type) {
				case []string:
					data = c
				case []any:
					data = stringList(c)
				}

				tab, err := pipeline.MakeTable([]string{"a"}, [][]string{data})

				return &pipeline.Process{
					Name:      "P1",
					Doc:       "First.\n\nInput:\n    a: The value.\n",
					Input:     []string{"a"},
					InputData: tab,
				}, err
			}},
			{Name: "P2", Role: pipeline.RoleEnd, Build: func(g *pipeline.Group) (*pipeline.Process, error) {
				return &pipeline.Process{
					Name:     "P2",
					Doc:      "Second.\n\nEnvs:\n    suffix: Appended literal.\n",
					Input:    []string{"infile:file"},
					Requires: []*pipeline.Process{g.Proc("P1")},
					Envs:     map[string]any{"suffix": "123", "n_lines": 2},
				}, nil
			}},
		},
	}

	g, err := def.Build(opts)
	if err != nil {
		t.Fatal(err)
	}

	return g
}

func singleProcess() *pipeline.Process {
	return &pipeline.Process{
		Name:  "P1",
		Doc:   "Produce a file.\n\nInput:\n    a: The value.\n    b: Other.\n",
		Input: []string{"a, b:file"},
		Envs:  map[string]any{"flag": false, "ratio": 0.5, "opts": map[string]any{"k": 1}},
	}
}

func paths(s *Schema) []string {
	var out []string
	for _, f := range s.Fields() {
		out = append(out, f.Path)
	}

	return out
}

func TestSynthesize_Single(t *testing.T) {
	s, err := Synthesize("ns", "P1", singleProcess(), false)
	if err != nil {
		t.Fatal(err)
	}

	if !s.Single || s.Desc != "Produce a file." || s.Prog != "prun run ns P1" {
		t.Errorf("unexpected schema header: %+v", s)
	}

	for _, p := range paths(s) {
		if strings.HasPrefix(p, "P1.") {
			t.Errorf("single process field %q carries the process prefix", p)
		}
	}

	for _, want := range []string{"in.a", "in.b", "envs.flag", "envs.opts", "envs.ratio"} {
		if _, ok := s.Field(want); !ok {
			t.Errorf("missing field %q", want)
		}
	}

	if _, ok := s.Field("error-strategy"); !ok {
		t.Error("missing pipeline-level error-strategy")
	}

	f, _ := s.Field("in.b")
	if !f.Required || f.Kind != KindList || f.Hint != "file" || f.Desc != "Other." {
		t.Errorf("unexpected in.b field: %+v", f)
	}

	kinds := map[string]Kind{"envs.flag": KindBool, "envs.ratio": KindFloat, "envs.opts": KindJSON}
	for path, want := range kinds {
		if f, _ := s.Field(path); f.Kind != want {
			t.Errorf("%s: kind %v, want %v", path, f.Kind, want)
		}
	}
}

func TestSynthesize_Group(t *testing.T) {
	g := exampleGroup(t, nil)

	s, err := Synthesize("ns", "G", g, false)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"G.input", "G.label",
		"P1", "P1.in", "P1.in.a", "P1.envs", "P1.cache", "P1.error-strategy",
		"P2", "P2.envs.suffix", "P2.envs.n_lines", "P2.scheduler-opts",
	} {
		if _, ok := s.Field(want); !ok {
			t.Errorf("missing field %q", want)
		}
	}

	if _, ok := s.Field("P2.in.infile"); ok {
		t.Error("non-start process exposes input fields")
	}

	in, _ := s.Field("P1.in.a")
	if in.Required || !cmp.Equal(in.Default, []string{"100"}) {
		t.Errorf("input carried by the process should be the default: %+v", in)
	}

	knob, _ := s.Field("P1.error-strategy")
	if knob.Show || knob.DefaultText != FromConfig {
		t.Errorf("unexpected knob: %+v", knob)
	}

	opt, _ := s.Field("G.input")
	if opt.Kind != KindList || opt.Desc != "Values for P1." {
		t.Errorf("unexpected group option: %+v", opt)
	}

	full, err := Synthesize("ns", "G", g, true)
	if err != nil {
		t.Fatal(err)
	}

	if knob, _ := full.Field("P1.error-strategy"); !knob.Show {
		t.Error("full options should show knobs")
	}
}

type runnableFunc func(string) (*pipeline.Pipeline, error)

func (f runnableFunc) Pipeline(name string) (*pipeline.Pipeline, error) { return f(name) }

func TestSynthesize_NoStart(t *testing.T) {
	target := runnableFunc(func(name string) (*pipeline.Pipeline, error) {
		return pipeline.New(name), nil
	})

	if _, err := Synthesize("ns", "X", target, false); !errors.Is(err, pipeline.ErrNoStart) {
		t.Errorf("expected ErrNoStart, got %v", err)
	}
}

func TestSynthesize_NameClash(t *testing.T) {
	build := func(name string) pipeline.Builder {
		return pipeline.Builder{Name: name, Role: pipeline.RoleStart, Build: func(*pipeline.Group) (*pipeline.Process, error) {
			return &pipeline.Process{Name: name, Input: []string{"a"}}, nil
		}}
	}

	tests := []struct {
		group string
		proc  string
	}{
		{"G", "cache"},
		{"G", "outdir"},
		{"G", "full_opts"},
		{"P1", "P1"},
	}

	for _, tt := range tests {
		t.Run(tt.proc, func(t *testing.T) {
			def := &pipeline.GroupDef{Name: tt.group, Builders: []pipeline.Builder{build(tt.proc)}}

			g, err := def.Build(nil)
			if err != nil {
				t.Fatal(err)
			}

			_, err = Synthesize("ns", tt.group, g, false)
			if !errors.Is(err, ErrNameClash) {
				t.Fatalf("expected ErrNameClash, got %v", err)
			}

			if !strings.Contains(err.Error(), tt.proc) {
				t.Errorf("error %q does not name the process", err)
			}
		})
	}
}

func TestForGroup(t *testing.T) {
	g := exampleGroup(t, nil)
	s := ForGroup("ns", "G", g.Def)

	if diff := cmp.Diff([]string{"G", "G.input", "G.label"}, paths(s)); diff != "" {
		t.Errorf("ForGroup() mismatch (-want +got):\n%s", diff)
	}
}

func TestHelp_FullOptions(t *testing.T) {
	s, err := Synthesize("ns", "G", exampleGroup(t, nil), false)
	if err != nil {
		t.Fatal(err)
	}

	var plain, full bytes.Buffer

	s.Help(&plain, false)
	s.Help(&full, true)

	for _, want := range []string{"Usage: prun run ns G", "--G.input", "--P1.in.a", "--P2.envs.suffix", "Appended literal."} {
		if !strings.Contains(plain.String(), want) {
			t.Errorf("help missing %q:\n%s", want, plain.String())
		}
	}

	if strings.Contains(plain.String(), "--P1.error-strategy") {
		t.Errorf("plain help shows hidden knob:\n%s", plain.String())
	}

	for _, want := range []string{"--P1.error-strategy", "retry, halt, ignore", FromConfig, "--scheduler-opts"} {
		if !strings.Contains(full.String(), want) {
			t.Errorf("full help missing %q:\n%s", want, full.String())
		}
	}
}

func TestUsage_Required(t *testing.T) {
	s, err := Synthesize("ns", "P1", singleProcess(), false)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	s.Usage(&buf)

	if got := buf.String(); got != "Usage: prun run ns P1 [OPTIONS] --in.a A ... --in.b B ...\n" {
		t.Errorf("Usage() = %q", got)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNamespace, "ns"},
		{KindList, "list"},
		{KindBool, "bool"},
		{KindInt, "int"},
		{KindFloat, "float"},
		{KindString, "str"},
		{KindChoice, "choice"},
		{KindJSON, "json"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
