package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Single(t *testing.T) {
	s, err := Synthesize("ns", "P1", singleProcess(), false)
	if err != nil {
		t.Fatal(err)
	}

	v, err := s.Parse([]string{
		"--in.a", "1", "2", "--in.b=x", "--in.b", "y",
		"--envs.flag", "--envs.opts", `{"k": 2}`, "--outdir", "/tmp/out",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !v.Single || v.Target == nil {
		t.Errorf("unexpected header: %+v", v)
	}

	want := map[string]any{
		"full-opts":        false,
		"name":             "P1",
		"outdir":           "/tmp/out",
		"workdir":          nil,
		"cache":            nil,
		"dirsig":           nil,
		"error_strategy":   nil,
		"num_retries":      nil,
		"forks":            nil,
		"submission_batch": nil,
		"scheduler":        nil,
		"plugin_opts":      nil,
		"scheduler_opts":   nil,
		"in": map[string]any{
			"a": []string{"1", "2"},
			"b": []string{"x", "y"},
		},
		"envs": map[string]any{
			"flag":  true,
			"ratio": 0.5,
			"opts":  map[string]any{"k": float64(2)},
		},
	}

	if diff := cmp.Diff(want, v.Tree); diff != "" {
		t.Errorf("Parse() tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Group(t *testing.T) {
	s, err := Synthesize("ns", "G", exampleGroup(t, map[string]any{"input": []string{"1"}}), false)
	if err != nil {
		t.Fatal(err)
	}

	v, err := s.Parse([]string{
		"--P1.error_strategy", "retry", "--P1.forks=4", "--P2.envs.n-lines", "3",
		"--P2.export=false", "--full-opts",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !v.FullOpts {
		t.Error("full-opts not reported")
	}

	p1 := v.Map("P1")

	if diff := cmp.Diff([]string{"1"}, p1["in"].(map[string]any)["a"]); diff != "" {
		t.Errorf("P1.in.a mismatch (-want +got):\n%s", diff)
	}

	if p1["error_strategy"] != "retry" || p1["forks"] != 4 {
		t.Errorf("unexpected P1 knobs: %v", p1)
	}

	if val, ok := p1["cache"]; !ok || val != nil {
		t.Errorf("unset knob should be present and nil, got %v, %v", val, ok)
	}

	p2 := v.Map("P2")
	if _, ok := p2["in"]; ok {
		t.Error("non-start process has input subtree")
	}

	if p2["export"] != false {
		t.Errorf("P2.export = %v", p2["export"])
	}

	if n, _ := v.Lookup("P2", "envs", "n_lines"); n != 3 {
		t.Errorf("P2.envs.n_lines = %v", n)
	}
}

func TestParse_Errors(t *testing.T) {
	group, err := Synthesize("ns", "G", exampleGroup(t, nil), false)
	if err != nil {
		t.Fatal(err)
	}

	single, err := Synthesize("ns", "P1", singleProcess(), false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		schema *Schema
		args   []string
		want   string
	}{
		{"invalid choice", group, []string{"--P1.error-strategy", "xyz"}, "invalid choice: 'xyz'"},
		{"invalid json", group, []string{"--P1.plugin-opts", "{bad"}, "invalid json"},
		{"invalid int", group, []string{"--P1.forks", "many"}, "--P1.forks"},
		{"unknown flag", group, []string{"--P3.forks", "1"}, "unknown flag: --P3.forks"},
		{"positional", group, []string{"stray"}, "unrecognized arguments: stray"},
		{"missing required", single, []string{"--in.a", "1"}, "required: --in.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.schema.Parse(tt.args)

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParse_Help(t *testing.T) {
	s, err := Synthesize("ns", "P1", singleProcess(), false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []string
		full bool
		help bool
	}{
		{[]string{"-h"}, false, true},
		{[]string{"--in.a", "1", "--help"}, false, true},
		{[]string{"--help+"}, true, true},
		{[]string{"--", "--help"}, false, false},
	}

	for _, tt := range tests {
		_, err := s.Parse(tt.args)

		var he *HelpError
		if got := errors.As(err, &he); got != tt.help {
			t.Errorf("%v: help = %v, want %v", tt.args, got, tt.help)

			continue
		}

		if tt.help && (he.Full != tt.full || !errors.Is(err, ErrHelp)) {
			t.Errorf("%v: unexpected help error %+v", tt.args, he)
		}
	}
}

func TestParseKnown_IgnoresUnknown(t *testing.T) {
	g := exampleGroup(t, nil)
	s := ForGroup("ns", "G", g.Def)

	v, err := s.ParseKnown([]string{
		"--P1.in.a", "9", "--G.input", "1", "2", "--full-opts", "--G.label=y", "extra",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{"input": []string{"1", "2"}, "label": "y"}
	if diff := cmp.Diff(want, v.Map("G")); diff != "" {
		t.Errorf("ParseKnown() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_SeparateValues(t *testing.T) {
	s, err := Synthesize("ns", "P1", singleProcess(), false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		a    []string
		flag bool
	}{
		{"negative list values", []string{"--in.a", "-1", "-2.5", "3", "--in.b", "x"}, []string{"-1", "-2.5", "3"}, false},
		{"list after assignment", []string{"--in.a=-1", "-2", "--in.b", "x"}, []string{"-1", "-2"}, false},
		{"bool false", []string{"--in.a", "1", "--in.b", "x", "--envs.flag", "false"}, []string{"1"}, false},
		{"bool TRUE", []string{"--envs.flag", "TRUE", "--in.a", "1", "--in.b", "x"}, []string{"1"}, true},
		{"bare bool", []string{"--envs.flag", "--in.a", "1", "--in.b", "x"}, []string{"1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := s.Parse(tt.args)
			if err != nil {
				t.Fatal(err)
			}

			a, _ := v.Lookup("in", "a")
			if diff := cmp.Diff(tt.a, a); diff != "" {
				t.Errorf("in.a mismatch (-want +got):\n%s", diff)
			}

			if flag, _ := v.Lookup("envs", "flag"); flag != tt.flag {
				t.Errorf("envs.flag = %v, want %v", flag, tt.flag)
			}
		})
	}
}
