package profile

// Profiler describes a profiling session.
//
// Mode selects one of [Modes]; Path is the directory receiving the profile
// output; Quiet suppresses the profiler's own start and stop messages.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Start begins profiling and returns the handle that ends it.
//
// If the binary was built without the pprof tag, or Mode is empty or unknown,
// Start returns a no-op. Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether profiling support was compiled in.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
