package engine

import (
	"slices"
	"strings"
	"text/template"

	"github.com/ardnew/prun/pkg"
)

// Output kinds.
const (
	KindVar  = "var"
	KindFile = "file"
	KindDir  = "dir"
)

// ErrOutput is returned for a malformed output declaration.
var ErrOutput = pkg.MakeErrorf("invalid output declaration")

// output is a parsed "key:kind:template" declaration.
type output struct {
	key  string
	kind string
	tmpl *template.Template
}

// parseOutputs parses the output declarations of a process. "key:template"
// declares a var output.
func parseOutputs(decls []string) ([]output, error) {
	var outs []output

	for _, decl := range decls {
		for field := range strings.SplitSeq(decl, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}

			key, rest, ok := strings.Cut(field, ":")
			if !ok || key == "" {
				return nil, ErrOutput.Wrapf("%q: want key:kind:template", field)
			}

			kind := KindVar

			if k, tmpl, ok := strings.Cut(rest, ":"); ok {
				switch k {
				case KindVar, KindFile, KindDir:
					kind, rest = k, tmpl
				}
			}

			t, err := newTemplate(key, rest)
			if err != nil {
				return nil, ErrOutput.Wrapf("%q", field).Wrap(err)
			}

			outs = append(outs, output{key: strings.TrimSpace(key), kind: kind, tmpl: t})
		}
	}

	return outs, nil
}

// newTemplate parses a script or output template. Templates see the job
// data as .in, .out, .envs and .job, plus a quote function for shell words.
func newTemplate(name, text string) (*template.Template, error) {
	return template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{"quote": shellQuote}).
		Parse(text)
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder

	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// shellQuote quotes s as a single POSIX shell word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
