package pipeline

//go:generate go tool stringer --linecomment --type Role --output role_string.go

import (
	"maps"
	"slices"

	"github.com/ardnew/prun/docstr"
	"github.com/ardnew/prun/pkg"
)

// Role tags the process produced by a [Builder].
type Role int

const (
	RoleNone  Role = iota // none
	RoleStart             // start
	RoleEnd               // end
)

// Builder constructs one process of a group. Build may call [Group.Proc] to
// obtain the processes it requires.
type Builder struct {
	Name  string
	Role  Role
	Build func(g *Group) (*Process, error)
}

// GroupDef declares a process group.
type GroupDef struct {
	Name string
	Doc  string
	// Defaults holds the default group options.
	Defaults map[string]any
	// Abstract groups are never listed as runnable.
	Abstract bool
	Builders []Builder
}

// Summary returns the short description of d.
func (d *GroupDef) Summary() string { return docstr.Summary(d.Doc) }

// Build constructs a group from d using opts layered over d.Defaults.
//
// Builders run in table order, each at most once. It returns [ErrNoStart] if
// the group has no start process.
func (d *GroupDef) Build(opts map[string]any) (*Group, error) {
	g := &Group{
		Def:      d,
		Opts:     maps.Clone(d.Defaults),
		built:    map[string]*Process{},
		building: map[string]bool{},
	}

	if g.Opts == nil {
		g.Opts = map[string]any{}
	}

	maps.Copy(g.Opts, opts)

	for _, b := range d.Builders {
		g.Proc(b.Name)
	}

	if g.err != nil {
		return nil, g.err
	}

	if len(g.Starts()) == 0 {
		return nil, ErrNoStart.Wrapf("group %q", d.Name)
	}

	return g, nil
}

func (d *GroupDef) builder(name string) (Builder, bool) {
	for _, b := range d.Builders {
		if b.Name == name {
			return b, true
		}
	}

	return Builder{}, false
}

// Group is a constructed process group.
type Group struct {
	Def  *GroupDef
	Opts map[string]any

	procs    []*Process
	roles    []Role
	built    map[string]*Process
	building map[string]bool
	err      error
}

// Opt returns the group option key.
func (g *Group) Opt(key string) any { return g.Opts[key] }

// Proc returns the process produced by the builder named name, building it
// on first use. Errors are recorded on g and reported by [GroupDef.Build];
// Proc returns nil after an error.
func (g *Group) Proc(name string) *Process {
	if p, ok := g.built[name]; ok {
		return p
	}

	if g.err != nil {
		return nil
	}

	b, ok := g.Def.builder(name)
	if !ok {
		g.err = ErrBuild.Wrapf("%s: no builder named %q", g.Def.Name, name)

		return nil
	}

	if g.building[name] {
		g.err = ErrCycle.Wrapf("%s.%s", g.Def.Name, name)

		return nil
	}

	g.building[name] = true
	defer delete(g.building, name)

	p, err := b.Build(g)
	if err == nil && p == nil {
		err = pkg.MakeErrorf("builder returned no process")
	}

	if err != nil {
		if g.err == nil {
			g.err = ErrBuild.Wrapf("%s.%s", g.Def.Name, name).Wrap(err)
		}

		return nil
	}

	if g.err != nil {
		return nil
	}

	if p.Name == "" {
		p.Name = name
	}

	g.built[name] = p
	g.procs = append(g.procs, p)
	g.roles = append(g.roles, b.Role)

	return p
}

// Procs returns the built processes in build order.
func (g *Group) Procs() []*Process { return slices.Clone(g.procs) }

// Starts returns the processes built with [RoleStart], or when no builder
// carries that role, the processes that require nothing.
func (g *Group) Starts() []*Process {
	if s := g.withRole(RoleStart); len(s) > 0 {
		return s
	}

	var s []*Process

	for _, p := range g.procs {
		if len(p.Requires) == 0 {
			s = append(s, p)
		}
	}

	return s
}

// Ends returns the processes built with [RoleEnd].
func (g *Group) Ends() []*Process { return g.withRole(RoleEnd) }

func (g *Group) withRole(r Role) []*Process {
	var out []*Process

	for i, p := range g.procs {
		if g.roles[i] == r {
			out = append(out, p)
		}
	}

	return out
}

// Pipeline returns a pipeline named name running g.
func (g *Group) Pipeline(name string) (*Pipeline, error) {
	starts := g.Starts()
	if len(starts) == 0 {
		return nil, ErrNoStart.Wrapf("group %q", g.Def.Name)
	}

	p := New(name).SetStart(starts...).WithProcs(g.procs...).SetEnd(g.Ends()...)
	p.Desc = g.Def.Summary()

	return p, nil
}
