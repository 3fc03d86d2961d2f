package schema

import "github.com/ardnew/prun/pipeline"

// Values holds parsed arguments. Tree mirrors the Dest paths of the schema
// fields; unset runtime knobs are present with a nil value.
type Values struct {
	Tree     map[string]any
	Single   bool
	Target   *pipeline.Pipeline
	Hooked   []string
	FullOpts bool
}

// Lookup returns the value at path in the tree.
func (v *Values) Lookup(path ...string) (any, bool) {
	var cur any = v.Tree

	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}

	return cur, true
}

// Map returns the subtree at path, or nil if there is none.
func (v *Values) Map(path ...string) map[string]any {
	sub, _ := v.Lookup(path...)
	m, _ := sub.(map[string]any)

	return m
}
