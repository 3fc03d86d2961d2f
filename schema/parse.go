package schema

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// ErrHelp is matched by the error [Schema.Parse] returns when help was
// requested.
var ErrHelp = errors.New("help requested")

// HelpError reports a help request. Full is set for --help+.
type HelpError struct {
	Full bool
}

func (e *HelpError) Error() string { return ErrHelp.Error() }

func (e *HelpError) Unwrap() error { return ErrHelp }

// ParseError is a user error found while parsing arguments.
type ParseError struct {
	Prog string
	Err  error
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses args against s.
//
// It returns a *[HelpError] if -h, --help or --help+ appear before "--",
// and a *[ParseError] for unknown flags, invalid values, unexpected
// positional arguments and missing required fields.
func (s *Schema) Parse(args []string) (*Values, error) {
	if full, ok := helpRequested(args); ok {
		return nil, &HelpError{Full: full}
	}

	return s.parse(args, false)
}

// ParseKnown parses the flags of args that s defines and ignores the rest.
// Required fields are not enforced.
func (s *Schema) ParseKnown(args []string) (*Values, error) {
	return s.parse(args, true)
}

func (s *Schema) parse(args []string, lenient bool) (*Values, error) {
	fs := pflag.NewFlagSet(s.Prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetNormalizeFunc(normalizeFlag)
	fs.SortFlags = false
	fs.ParseErrorsWhitelist.UnknownFlags = lenient

	vals := make(map[*Field]*value, len(s.fields))

	for _, f := range s.fields {
		if f.Kind == KindNamespace {
			continue
		}

		v := newValue(f)
		vals[f] = v

		flag := fs.VarPF(v, f.Flag(), "", f.Desc)
		if f.Kind == KindBool {
			flag.NoOptDefVal = "true"
		}
	}

	fs.BoolP("help", "h", false, "Show help and exit.")
	fs.Bool("help+", false, "Show full help and exit.")

	if err := fs.Parse(s.expandArgs(args)); err != nil {
		return nil, &ParseError{Prog: s.Prog, Err: err}
	}

	if !lenient && fs.NArg() > 0 {
		return nil, &ParseError{
			Prog: s.Prog,
			Err:  fmt.Errorf("unrecognized arguments: %s", strings.Join(fs.Args(), " ")),
		}
	}

	tree := map[string]any{}

	var missing []string

	for _, f := range s.fields {
		v, ok := vals[f]
		if !ok {
			continue
		}

		if v.val == nil && f.Required && !lenient {
			missing = append(missing, "--"+f.Flag())
		}

		// Input columns without data are left out so the process keeps
		// whatever data it has.
		if v.val == nil && f.Kind == KindList {
			continue
		}

		setPath(tree, f.Dest, v.val)
	}

	if len(missing) > 0 {
		return nil, &ParseError{
			Prog: s.Prog,
			Err: fmt.Errorf("the following arguments are required: %s",
				strings.Join(missing, ", ")),
		}
	}

	full, _ := tree[FullOptsFlag].(bool)

	return &Values{
		Tree:     tree,
		Single:   s.Single,
		Target:   s.Target,
		FullOpts: full,
	}, nil
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(normalize(name))
}

// expandArgs rewrites args into the form pflag expects:
//
//   - "--list a b c" becomes "--list a --list=b --list=c" so that list fields
//     accept several values per occurrence. Numeric tokens such as "-1" are
//     list values, not flags.
//   - "--bool false" becomes "--bool=false"; a bare "--bool" still means true.
func (s *Schema) expandArgs(args []string) []string {
	out := make([]string, 0, len(args))

	var (
		list      string
		needValue bool
	)

	for i := 0; i < len(args); i++ {
		a := args[i]

		switch {
		case a == "--":
			return append(out, args[i:]...)

		case list != "" && (!strings.HasPrefix(a, "-") || isNumber(a)):
			if !needValue {
				a = "--" + list + "=" + a
			}

			needValue = false

		case strings.HasPrefix(a, "--"):
			list, needValue = "", false

			name, _, hasValue := strings.Cut(a[2:], "=")

			f, ok := s.Field(name)
			if !ok {
				break
			}

			switch {
			case f.Kind == KindList:
				list, needValue = name, !hasValue
			case f.Kind == KindBool && !hasValue && i+1 < len(args) && isBool(args[i+1]):
				i++
				a += "=" + args[i]
			}

		case strings.HasPrefix(a, "-"):
			list, needValue = "", false
		}

		out = append(out, a)
	}

	return out
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)

	return err == nil
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

// helpRequested scans args up to "--" for a help flag.
func helpRequested(args []string) (full, ok bool) {
	for _, a := range args {
		switch a {
		case "--":
			return full, ok
		case "--help+":
			full, ok = true, true
		case "-h", "--help":
			ok = true
		}
	}

	return full, ok
}

func setPath(tree map[string]any, path []string, v any) {
	for _, key := range path[:len(path)-1] {
		sub, ok := tree[key].(map[string]any)
		if !ok {
			sub = map[string]any{}
			tree[key] = sub
		}

		tree = sub
	}

	tree[path[len(path)-1]] = v
}
