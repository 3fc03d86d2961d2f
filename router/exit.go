package router

import "fmt"

// Exit statuses of routing outcomes that take no action.
const (
	// ExitHelp follows a help message or a listing.
	ExitHelp = 1
	// ExitUsage follows a usage error.
	ExitUsage = 2
)

// ExitError ends a command without running anything. The message has
// already been written when it is returned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }
