package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func names(procs []*Process) []string {
	out := make([]string, len(procs))
	for i, p := range procs {
		out[i] = p.Name
	}

	return out
}

func TestProcess_InputKeys(t *testing.T) {
	p := &Process{Input: []string{"a", "b:file, c:var", " "}}

	want := []InputKey{{Name: "a"}, {Name: "b", Type: "file"}, {Name: "c", Type: "var"}}
	if diff := cmp.Diff(want, p.InputKeys()); diff != "" {
		t.Errorf("InputKeys() mismatch (-want +got):\n%s", diff)
	}

	if (&Process{}).HasInput() {
		t.Error("process without input reports input")
	}
}

func TestPipeline_Procs_Order(t *testing.T) {
	a := &Process{Name: "A"}
	b := &Process{Name: "B", Requires: []*Process{a}}
	c := &Process{Name: "C", Requires: []*Process{a}}
	d := &Process{Name: "D", Requires: []*Process{b, c}}
	e := &Process{Name: "E", Requires: []*Process{d, a}}

	p := New("p").SetStart(a).WithProcs(e, d, c, b)

	got, err := p.Procs()
	if err != nil {
		t.Fatalf("Procs() error: %v", err)
	}

	// Every process follows all of its requirements.
	pos := map[*Process]int{}
	for i, proc := range got {
		pos[proc] = i
	}

	for _, proc := range got {
		for _, req := range proc.Requires {
			if pos[req] > pos[proc] {
				t.Errorf("%s placed before its requirement %s", proc.Name, req.Name)
			}
		}
	}

	if len(got) != 5 {
		t.Errorf("expected 5 members, got %v", names(got))
	}

	ends, err := p.Ends()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"E"}, names(ends)); diff != "" {
		t.Errorf("Ends() mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Procs_Errors(t *testing.T) {
	outside := &Process{Name: "X"}
	a := &Process{Name: "A"}
	b := &Process{Name: "B", Requires: []*Process{a, outside}}

	if _, err := New("none").Procs(); !errors.Is(err, ErrNoStart) {
		t.Errorf("expected ErrNoStart, got %v", err)
	}

	_, err := New("dangling").SetStart(a).WithProcs(b).Procs()
	if !errors.Is(err, ErrDangling) {
		t.Errorf("expected ErrDangling, got %v", err)
	}
}

func TestProcess_Pipeline_Single(t *testing.T) {
	p := &Process{Name: "P1", Doc: "Produce a file.\n\nMore.", Input: []string{"a"}}

	pl, err := p.Pipeline("P1")
	if err != nil {
		t.Fatal(err)
	}

	procs, err := pl.Procs()
	if err != nil {
		t.Fatal(err)
	}

	if len(procs) != 1 || procs[0] != p || !pl.IsStart(p) || !pl.IsEnd(p) {
		t.Errorf("unexpected single pipeline %v", names(procs))
	}

	if pl.Desc != "Produce a file." {
		t.Errorf("Desc = %q", pl.Desc)
	}
}

func TestMakeTable(t *testing.T) {
	tab, err := MakeTable([]string{"a", "b"}, [][]string{{"1", "2"}, {"x", "y"}})
	if err != nil {
		t.Fatal(err)
	}

	want := Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "x"}, {"2", "y"}}}
	if diff := cmp.Diff(want, tab); diff != "" {
		t.Errorf("MakeTable() mismatch (-want +got):\n%s", diff)
	}

	col, ok := tab.Column("b")
	if !ok || !cmp.Equal(col, []string{"x", "y"}) {
		t.Errorf("Column(b) = %v, %v", col, ok)
	}

	if diff := cmp.Diff(map[string]string{"a": "2", "b": "y"}, tab.Row(1)); diff != "" {
		t.Errorf("Row(1) mismatch:\n%s", diff)
	}

	if _, err := MakeTable([]string{"a", "b"}, [][]string{{"1"}, {"x", "y"}}); !errors.Is(err, ErrRaggedTable) {
		t.Errorf("expected ErrRaggedTable, got %v", err)
	}
}
