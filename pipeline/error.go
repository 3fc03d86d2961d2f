package pipeline

import "github.com/ardnew/prun/pkg"

var (
	// ErrNoStart is returned when a group or pipeline has no start process.
	ErrNoStart = pkg.MakeErrorf(
		"no start processes found (did the group declare any?)",
	)

	// ErrDangling is returned when a pipeline member requires a process that
	// does not belong to the pipeline.
	ErrDangling = pkg.MakeErrorf("process requires a non-member")

	// ErrCycle is returned when process requirements form a cycle.
	ErrCycle = pkg.MakeErrorf("process requirements form a cycle")

	// ErrBuild is returned when a group builder fails.
	ErrBuild = pkg.MakeErrorf("failed to build process")

	// ErrRaggedTable is returned when input columns differ in length.
	ErrRaggedTable = pkg.MakeErrorf("input columns differ in length")
)
