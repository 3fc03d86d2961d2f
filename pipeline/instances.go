package pipeline

// Instances maps each group definition to its single constructed group.
//
// A group is created on the first successful construction and kept for the
// lifetime of the registry. Instances is not safe for concurrent use.
type Instances struct {
	groups map[*GroupDef]*Group
}

// NewInstances returns an empty registry.
func NewInstances() *Instances {
	return &Instances{groups: map[*GroupDef]*Group{}}
}

// Get returns the group constructed from def, building it with opts if it
// does not exist yet. Options given after construction are ignored.
func (r *Instances) Get(def *GroupDef, opts map[string]any) (*Group, error) {
	if g, ok := r.groups[def]; ok {
		return g, nil
	}

	g, err := def.Build(opts)
	if err != nil {
		return nil, err
	}

	r.groups[def] = g

	return g, nil
}

