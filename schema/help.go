package schema

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpStyle renders help text for one writer.
type helpStyle struct {
	title, flag, meta, required, hint lipgloss.Style
}

func newHelpStyle(w io.Writer) helpStyle {
	r := lipgloss.NewRenderer(w)

	return helpStyle{
		title:    r.NewStyle().Bold(true).Underline(true),
		flag:     r.NewStyle().Foreground(lipgloss.Color("6")),
		meta:     r.NewStyle().Foreground(lipgloss.Color("8")),
		required: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		hint:     r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Usage writes the one-line usage of s.
func (s *Schema) Usage(w io.Writer) {
	var req []string

	for _, f := range s.fields {
		if f.Required {
			req = append(req, "--"+f.Flag()+" "+metavar(f))
		}
	}

	line := "Usage: " + s.Prog + " [OPTIONS]"
	if len(req) > 0 {
		line += " " + strings.Join(req, " ")
	}

	fmt.Fprintln(w, line)
}

// Help writes the help of s. Hidden fields are listed when full is set or
// the schema was synthesized with full options.
func (s *Schema) Help(w io.Writer, full bool) {
	st := newHelpStyle(w)
	full = full || s.FullOpts

	s.Usage(w)

	if s.Desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Desc)
	}

	type section struct {
		title string
		rows  [][2]string
	}

	var (
		order []string
		secs  = map[string]*section{}
		width int
	)

	get := func(name string) *section {
		sec, ok := secs[name]
		if !ok {
			sec = &section{title: s.sectionTitle(name)}
			secs[name] = sec
			order = append(order, name)
		}

		return sec
	}

	get(SectionOptions).rows = append(get(SectionOptions).rows,
		[2]string{"-h, --help", "Show help message and exit."},
		[2]string{"--help+", "Show full help message and exit."},
	)

	for _, f := range s.fields {
		if f.Kind == KindNamespace || (!f.Show && !full) {
			continue
		}

		left := "--" + f.Flag()
		if f.Kind != KindBool {
			left += " " + metavar(f)
		}

		width = max(width, lipgloss.Width(left))

		sec := get(f.Section)
		sec.rows = append(sec.rows, [2]string{left, s.describe(st, f)})
	}

	width = max(width, len("-h, --help"))

	for _, name := range order {
		sec := secs[name]
		if len(sec.rows) == 0 {
			continue
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, st.title.Render(sec.title))

		for _, row := range sec.rows {
			pad := strings.Repeat(" ", width-lipgloss.Width(row[0])+2)
			fmt.Fprintln(w, "  "+st.flag.Render(row[0])+pad+row[1])
		}
	}
}

func (s *Schema) sectionTitle(name string) string {
	switch name {
	case SectionOptions:
		return "OPTIONS"
	case SectionPipeline:
		return "PIPELINE OPTIONS"
	}

	if f, ok := s.index[normalize(name)]; ok && f.Kind == KindNamespace {
		return strings.ToUpper(name) + ": " + f.Desc
	}

	return strings.ToUpper(name)
}

func (s *Schema) describe(st helpStyle, f *Field) string {
	desc := f.Desc
	if len(f.Choices) > 0 {
		desc = strings.ReplaceAll(desc, "{choices}", strings.Join(f.Choices, ", "))
	}

	parts := []string{desc}

	if f.Hint != "" {
		parts = append(parts, st.hint.Render("("+f.Hint+")"))
	}

	switch {
	case f.Required:
		parts = append(parts, st.required.Render("[required]"))
	case f.DefaultText != "":
		parts = append(parts, st.meta.Render(f.DefaultText))
	}

	return strings.Join(parts, " ")
}

func metavar(f *Field) string {
	switch f.Kind {
	case KindList:
		return strings.ToUpper(lastSegment(f.Path)) + " ..."
	case KindChoice:
		return "{" + strings.Join(f.Choices, ",") + "}"
	case KindJSON:
		return "JSON"
	case KindBool:
		return ""
	default:
		return strings.ToUpper(f.Kind.String())
	}
}

func lastSegment(path string) string {
	return strings.ReplaceAll(path[strings.LastIndexByte(path, '.')+1:], "-", "_")
}
