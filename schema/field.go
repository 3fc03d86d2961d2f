package schema

//go:generate go tool stringer --linecomment --type Kind --output field_string.go

import "strings"

// Kind is the value type of a [Field].
type Kind int

const (
	// KindNamespace marks a node that only groups other fields.
	KindNamespace Kind = iota // ns
	KindList                  // list
	KindBool                  // bool
	KindInt                   // int
	KindFloat                 // float
	KindString                // str
	KindChoice                // choice
	KindJSON                  // json
)

// kindOf infers the kind of a field from its default value.
func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int, int64, uint64:
		return KindInt
	case float64, float32:
		return KindFloat
	case []any, []string:
		return KindList
	case map[string]any:
		return KindJSON
	default:
		return KindString
	}
}

// Field is one entry of a [Schema].
type Field struct {
	// Path is the dotted flag name without leading dashes.
	Path string
	// Dest is the location of the parsed value in [Values.Tree].
	Dest []string
	Desc string
	Kind Kind
	// Hint is informational type metadata, such as the ":file" suffix of an
	// input declaration.
	Hint        string
	Default     any
	DefaultText string
	Choices     []string
	Required    bool
	Show        bool
	// Section is the path of the namespace node the field is listed under.
	Section string
}

// Flag returns the flag name of f as given on the command line.
func (f *Field) Flag() string { return normalize(f.Path) }

// normalize replaces underscores with hyphens in the final segment of a
// dotted path.
func normalize(path string) string {
	i := strings.LastIndexByte(path, '.')

	return path[:i+1] + strings.ReplaceAll(path[i+1:], "_", "-")
}

// join builds a dotted path, skipping empty segments.
func join(elem ...string) string {
	var parts []string

	for _, e := range elem {
		if e != "" {
			parts = append(parts, e)
		}
	}

	return strings.Join(parts, ".")
}
