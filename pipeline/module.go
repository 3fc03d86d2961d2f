package pipeline

import "github.com/ardnew/prun/docstr"

// Runnable is a target that can be turned into a pipeline.
type Runnable interface {
	Pipeline(name string) (*Pipeline, error)
}

// Member is a named process or group definition exported by a namespace.
// Exactly one of Process and Group is set.
type Member struct {
	Name    string
	Process *Process
	Group   *GroupDef
}

// Runnable reports whether m may be selected as a run target: a process
// with declared input, or a group that is not abstract.
func (m Member) Runnable() bool {
	switch {
	case m.Process != nil:
		return m.Process.HasInput()
	case m.Group != nil:
		return !m.Group.Abstract
	default:
		return false
	}
}

// Kind returns "process" or "group".
func (m Member) Kind() string {
	if m.Group != nil {
		return "group"
	}

	return "process"
}

// Summary returns the short description of m.
func (m Member) Summary() string {
	switch {
	case m.Process != nil:
		return m.Process.Summary()
	case m.Group != nil:
		return m.Group.Summary()
	default:
		return ""
	}
}

// Module is the content of a namespace.
type Module struct {
	Doc     string
	Members []Member
}

// Summary returns the short description of m.
func (m *Module) Summary() string { return docstr.Summary(m.Doc) }

// Runnable returns the members that may be selected as run targets, in
// declaration order.
func (m *Module) Runnable() []Member {
	var out []Member

	for _, mb := range m.Members {
		if mb.Runnable() {
			out = append(out, mb)
		}
	}

	return out
}

// Lookup returns the runnable member named name.
func (m *Module) Lookup(name string) (Member, bool) {
	for _, mb := range m.Members {
		if mb.Name == name && mb.Runnable() {
			return mb, true
		}
	}

	return Member{}, false
}
