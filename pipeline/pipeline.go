package pipeline

import "slices"

// Options holds the pipeline-level run options. Zero values defer to the
// execution engine's configuration.
type Options struct {
	Cache           *bool
	Dirsig          *bool
	ErrorStrategy   string
	NumRetries      *int
	Forks           *int
	SubmissionBatch *int
	Scheduler       string
	PluginOpts      map[string]any
	SchedulerOpts   map[string]any
}

// Pipeline is a runnable graph of processes.
type Pipeline struct {
	Name    string
	Desc    string
	Outdir  string
	Workdir string
	Options Options

	// Hooked holds pass-through tokens ("+flag", "+flag=value") meant for a
	// downstream argument consumer.
	Hooked []string

	starts   []*Process
	ends     []*Process
	universe []*Process
}

// New returns an empty pipeline named name.
func New(name string) *Pipeline {
	return &Pipeline{Name: name}
}

// SetStart sets the start processes of p and adds them to its universe.
func (p *Pipeline) SetStart(procs ...*Process) *Pipeline {
	p.starts = slices.Clone(procs)

	return p.WithProcs(procs...)
}

// SetEnd designates the end processes of p. Without it, the ends are the
// members that no other member requires.
func (p *Pipeline) SetEnd(procs ...*Process) *Pipeline {
	p.ends = slices.Clone(procs)

	return p
}

// WithProcs adds candidate members to the universe searched by [Pipeline.Procs].
func (p *Pipeline) WithProcs(procs ...*Process) *Pipeline {
	for _, proc := range procs {
		if !slices.Contains(p.universe, proc) {
			p.universe = append(p.universe, proc)
		}
	}

	return p
}

// Starts returns the start processes.
func (p *Pipeline) Starts() []*Process { return p.starts }

// IsStart reports whether proc is a start process of p.
func (p *Pipeline) IsStart(proc *Process) bool {
	return slices.Contains(p.starts, proc)
}

// Procs returns the members of p in dependency order.
//
// Membership is found by walking dependents breadth first from the start
// processes, visiting candidates in the order they were added. It returns
// [ErrNoStart] without start processes, [ErrDangling] when a member requires
// a process outside the pipeline, and [ErrCycle] for cyclic requirements.
func (p *Pipeline) Procs() ([]*Process, error) {
	if len(p.starts) == 0 {
		return nil, ErrNoStart.Wrapf("pipeline %q", p.Name)
	}

	members := slices.Clone(p.starts)

	for i := 0; i < len(members); i++ {
		for _, cand := range p.universe {
			if cand.Depends(members[i]) && !slices.Contains(members, cand) {
				members = append(members, cand)
			}
		}
	}

	for _, m := range members {
		for _, req := range m.Requires {
			if !slices.Contains(members, req) {
				return nil, ErrDangling.Wrapf(
					"%s requires %s", m.Name, req.Name,
				)
			}
		}
	}

	return order(members)
}

// Ends returns the end processes of p.
func (p *Pipeline) Ends() ([]*Process, error) {
	members, err := p.Procs()
	if err != nil {
		return nil, err
	}

	if len(p.ends) > 0 {
		return p.ends, nil
	}

	var ends []*Process

	for _, m := range members {
		if !slices.ContainsFunc(members, func(o *Process) bool { return o.Depends(m) }) {
			ends = append(ends, m)
		}
	}

	return ends, nil
}

// IsEnd reports whether proc is an end process of p.
func (p *Pipeline) IsEnd(proc *Process) bool {
	ends, err := p.Ends()

	return err == nil && slices.Contains(ends, proc)
}

// order sorts members so that every process follows its requirements,
// keeping discovery order among independent processes.
func order(members []*Process) ([]*Process, error) {
	sorted := make([]*Process, 0, len(members))

	for len(sorted) < len(members) {
		progress := false

		for _, m := range members {
			if slices.Contains(sorted, m) {
				continue
			}

			ready := true

			for _, req := range m.Requires {
				if !slices.Contains(sorted, req) {
					ready = false

					break
				}
			}

			if ready {
				sorted = append(sorted, m)
				progress = true
			}
		}

		if !progress {
			return nil, ErrCycle
		}
	}

	return sorted, nil
}
