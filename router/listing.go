package router

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/prun/log"
	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

type listStyle struct {
	title, name, kind, errorLabel, suggestion lipgloss.Style
}

func newListStyle(w io.Writer) listStyle {
	r := lipgloss.NewRenderer(w)

	return listStyle{
		title:      r.NewStyle().Bold(true).Underline(true),
		name:       r.NewStyle().Foreground(lipgloss.Color("6")),
		kind:       r.NewStyle().Foreground(lipgloss.Color("8")),
		errorLabel: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		suggestion: r.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

type row struct {
	name, kind, desc string
}

func writeTable(w io.Writer, st listStyle, title string, rows []row) {
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.name))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.title.Render(title))

	for _, r := range rows {
		line := "  " + st.name.Render(r.name) + strings.Repeat(" ", width-lipgloss.Width(r.name)+2)
		if r.kind != "" {
			line += st.kind.Render(fmt.Sprintf("%-9s", "["+r.kind+"]")) + " "
		}

		fmt.Fprintln(w, strings.TrimRight(line+r.desc, " "))
	}
}

// ListNamespaces writes the namespace listing to w. Namespaces that fail to
// load are listed with a placeholder description and logged.
func (r *Router) ListNamespaces(w io.Writer) {
	st := newListStyle(w)

	fmt.Fprintf(w, "Usage: %s <namespace> [<process|group>] [OPTIONS]\n", pkg.Prog())

	names := r.Registry.Names()
	if len(names) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No namespaces installed.")

		return
	}

	rows := make([]row, 0, len(names))

	for _, name := range names {
		desc := "(failed to load)"

		m, err := r.Registry.Resolve(name)
		if err != nil {
			log.Warn("cannot load namespace",
				slog.String("namespace", name), slog.Any("error", err))
		} else {
			desc = m.Summary()
		}

		rows = append(rows, row{name: name, desc: desc})
	}

	writeTable(w, st, "NAMESPACES", rows)
}

// listMembers writes the runnable members of a namespace.
func listMembers(w io.Writer, ns string, m *pipeline.Module) {
	st := newListStyle(w)

	fmt.Fprintf(w, "Usage: %s <process|group> [OPTIONS]\n", pkg.Prog(ns))

	if desc := m.Summary(); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, desc)
	}

	var rows []row

	for _, mb := range m.Runnable() {
		rows = append(rows, row{name: mb.Name, kind: mb.Kind(), desc: mb.Summary()})
	}

	if len(rows) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No runnable processes or groups.")

		return
	}

	writeTable(w, st, "PROCESSES AND GROUPS", rows)
}

// invalidChoice writes the error for an unknown token with the valid
// choices and the closest matches.
func invalidChoice(w io.Writer, prog, arg, tok string, valid []string) {
	st := newListStyle(w)

	quoted := make([]string, len(valid))
	for i, v := range valid {
		quoted[i] = "'" + v + "'"
	}

	fmt.Fprintf(w, "%s: %s argument %s: invalid choice: '%s' (choose from %s)\n",
		prog, st.errorLabel.Render("error:"), arg, tok, strings.Join(quoted, ", "))

	if s := suggest(tok, valid); len(s) > 0 {
		for i := range s {
			s[i] = st.suggestion.Render(s[i])
		}

		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(s, ", "))
	}
}

// suggest returns the valid choices that fuzzy-match tok, best first.
func suggest(tok string, valid []string) []string {
	var out []string

	for _, m := range fuzzy.Find(tok, valid) {
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}

	return out
}
