package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// value adapts a [Field] to [pflag.Value]. It holds the field default until
// the flag is given; list fields then collect every occurrence.
type value struct {
	field *Field
	val   any
	set   bool
}

func newValue(f *Field) *value {
	v := &value{field: f}

	switch d := f.Default.(type) {
	case []string:
		v.val = slices.Clone(d)
	case []any:
		v.val = stringList(d)
	default:
		v.val = d
	}

	return v
}

func (v *value) Set(s string) error {
	var (
		parsed any
		err    error
	)

	switch v.field.Kind {
	case KindList:
		var list []string
		if v.set {
			list, _ = v.val.([]string)
		}

		v.val, v.set = append(list, s), true

		return nil

	case KindBool:
		parsed, err = strconv.ParseBool(s)

	case KindInt:
		parsed, err = strconv.Atoi(s)

	case KindFloat:
		parsed, err = strconv.ParseFloat(s, 64)

	case KindChoice:
		if !slices.Contains(v.field.Choices, s) {
			return fmt.Errorf("invalid choice: '%s' (choose from %s)",
				s, quoteList(v.field.Choices))
		}

		parsed = s

	case KindJSON:
		var m map[string]any

		if err = json.Unmarshal([]byte(s), &m); err != nil {
			return fmt.Errorf("invalid json: %w", err)
		}

		parsed = m

	default:
		parsed = s
	}

	if err != nil {
		return err
	}

	v.val, v.set = parsed, true

	return nil
}

func (v *value) String() string {
	if v == nil || v.val == nil {
		return ""
	}

	return formatDefault(v.val)
}

func (v *value) Type() string { return v.field.Kind.String() }

func stringList(list []any) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = fmt.Sprint(e)
	}

	return out
}

func quoteList(list []string) string {
	q := make([]string, len(list))
	for i, s := range list {
		q[i] = "'" + s + "'"
	}

	return strings.Join(q, ", ")
}
