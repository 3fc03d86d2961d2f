package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func twoStep(calls *int) *GroupDef {
	return &GroupDef{
		Name:     "Two",
		Doc:      "Two steps.\n\nArgs:\n    input (list): Values.",
		Defaults: map[string]any{"input": []any{"100"}},
		Builders: []Builder{
			{
				Name: "P2",
				Role: RoleEnd,
				Build: func(g *Group) (*Process, error) {
					return &Process{Name: "P2", Input: []string{"x"}, Requires: []*Process{g.Proc("P1")}}, nil
				},
			},
			{
				Name: "P1",
				Role: RoleStart,
				Build: func(g *Group) (*Process, error) {
					*calls++

					return &Process{Name: "P1", Input: []string{"a"}}, nil
				},
			},
		},
	}
}

func TestGroupDef_Build_Memoizes(t *testing.T) {
	var calls int

	g, err := twoStep(&calls).Build(map[string]any{"input": []any{"1"}})
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("P1 built %d times", calls)
	}

	if diff := cmp.Diff([]string{"P1", "P2"}, names(g.Procs())); diff != "" {
		t.Errorf("Procs() mismatch (-want +got):\n%s", diff)
	}

	if g.Proc("P2").Requires[0] != g.Proc("P1") {
		t.Error("P2 does not require the memoized P1")
	}

	if diff := cmp.Diff([]any{"1"}, g.Opt("input")); diff != "" {
		t.Errorf("options not layered over defaults:\n%s", diff)
	}

	pl, err := g.Pipeline("Two")
	if err != nil {
		t.Fatal(err)
	}

	if !pl.IsStart(g.Proc("P1")) || !pl.IsEnd(g.Proc("P2")) {
		t.Error("roles not carried into pipeline")
	}
}

func TestGroupDef_Build_NoStart(t *testing.T) {
	a := &Process{Name: "A"}
	def := &GroupDef{
		Name: "Loop",
		Builders: []Builder{{
			Name: "B",
			Build: func(*Group) (*Process, error) {
				return &Process{Name: "B", Requires: []*Process{a}}, nil
			},
		}},
	}

	if _, err := def.Build(nil); !errors.Is(err, ErrNoStart) {
		t.Errorf("expected ErrNoStart, got %v", err)
	}
}

func TestGroupDef_Build_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		def  *GroupDef
		want error
	}{
		{
			name: "builder error",
			def: &GroupDef{Name: "G", Builders: []Builder{{
				Name:  "A",
				Build: func(*Group) (*Process, error) { return nil, boom },
			}}},
			want: boom,
		},
		{
			name: "unknown reference",
			def: &GroupDef{Name: "G", Builders: []Builder{{
				Name: "A",
				Build: func(g *Group) (*Process, error) {
					return &Process{Requires: []*Process{g.Proc("Z")}}, nil
				},
			}}},
			want: ErrBuild,
		},
		{
			name: "self reference",
			def: &GroupDef{Name: "G", Builders: []Builder{{
				Name: "A",
				Build: func(g *Group) (*Process, error) {
					return &Process{Requires: []*Process{g.Proc("A")}}, nil
				},
			}}},
			want: ErrCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.def.Build(nil); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestInstances_Get_Singleton(t *testing.T) {
	var calls int

	def := twoStep(&calls)
	reg := NewInstances()

	g1, err := reg.Get(def, map[string]any{"input": []any{"1"}})
	if err != nil {
		t.Fatal(err)
	}

	g2, err := reg.Get(def, map[string]any{"input": []any{"2"}})
	if err != nil {
		t.Fatal(err)
	}

	if g1 != g2 || calls != 1 {
		t.Errorf("expected a single instance, got %p %p after %d builds", g1, g2, calls)
	}
}

func TestModule_Runnable(t *testing.T) {
	m := &Module{Members: []Member{
		{Name: "NoInput", Process: &Process{Name: "NoInput"}},
		{Name: "P1", Process: &Process{Name: "P1", Input: []string{"a"}}},
		{Name: "Base", Group: &GroupDef{Name: "Base", Abstract: true}},
		{Name: "G", Group: &GroupDef{Name: "G", Doc: "A group."}},
	}}

	var got []string
	for _, mb := range m.Runnable() {
		got = append(got, mb.Name+":"+mb.Kind())
	}

	if diff := cmp.Diff([]string{"P1:process", "G:group"}, got); diff != "" {
		t.Errorf("Runnable() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := m.Lookup("NoInput"); ok {
		t.Error("process without input is selectable")
	}

	if mb, ok := m.Lookup("G"); !ok || mb.Summary() != "A group." {
		t.Errorf("Lookup(G) = %+v, %v", mb, ok)
	}
}

func TestRole_String(t *testing.T) {
	got := []string{RoleNone.String(), RoleStart.String(), RoleEnd.String(), Role(-1).String()}
	want := []string{"none", "start", "end", "Role(-1)"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Role.String mismatch (-want +got):\n%s", diff)
	}
}
