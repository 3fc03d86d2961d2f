// Package profile provides optional runtime profiling for the prun command.
//
// Profiling is backed by [github.com/pkg/profile] and must be enabled at build
// time with the "pprof" build tag. Without the tag every [Profiler] is a
// no-op and [Modes] is empty.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// From the command line:
//
//	go build -tags pprof -o prun .
//	./prun --pprof-mode cpu run example ExampleProcGroup
//	go tool pprof -http=: ./prun "$XDG_CACHE_HOME/prun/pprof/cpu.pprof"
//
// Builds with the tag also register the [net/http/pprof] handlers.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
