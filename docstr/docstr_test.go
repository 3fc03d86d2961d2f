package docstr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", ""},
		{"blank", "  \n\t\n", ""},
		{"stops at blank line", "Line1\nLine2\n\nLine3", "Line1 Line2"},
		{"leading blanks", "\n\n  First line.  \n  second\n", "First line. second"},
		{"single", "Only", "Only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.doc); got != tt.want {
				t.Errorf("Summary(%q) = %q, want %q", tt.doc, got, tt.want)
			}
		})
	}
}

func TestParse_Sections(t *testing.T) {
	doc := `Concatenate the input with a literal.

    Long description paragraph.

    Input:
        a: The first value.
        infile (file): The file from the
            previous process.
    Envs:
        suffix: Literal appended
            to the output.
    Args:
        input (list): Values fed to P1.
`

	got := Parse(doc)
	want := Sections{
		"Input": {
			{Name: "a", Desc: "The first value."},
			{Name: "infile", Hint: "file", Desc: "The file from the previous process."},
		},
		"Envs": {
			{Name: "suffix", Desc: "Literal appended to the output."},
		},
		"Args": {
			{Name: "input", Hint: "list", Desc: "Values fed to P1."},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestSections_Desc(t *testing.T) {
	secs := Parse("Input:\n  a: Alpha.\n  b:\n")

	if got := secs.Desc("Input", "a", "Undescribed."); got != "Alpha." {
		t.Errorf("got %q", got)
	}
	if got := secs.Desc("Input", "b", "Undescribed."); got != "Undescribed." {
		t.Errorf("empty description: got %q", got)
	}
	if got := secs.Desc("Envs", "a", "Undescribed."); got != "Undescribed." {
		t.Errorf("missing section: got %q", got)
	}
}
