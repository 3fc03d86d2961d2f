package router

import "regexp"

var (
	hookedFlag  = regexp.MustCompile(`^\+[-\w.]+$`)
	hookedValue = regexp.MustCompile(`^\+[-\w.]+=.+$`)
)

// IsHooked reports whether arg is meant for a downstream argument consumer:
// "+flag" or "+flag=value".
func IsHooked(arg string) bool {
	return hookedFlag.MatchString(arg) || hookedValue.MatchString(arg)
}

// SkipHookedArgs returns args without the hooked tokens. A hooked token never
// consumes the token that follows it.
func SkipHookedArgs(args []string) []string {
	out := make([]string, 0, len(args))

	for _, a := range args {
		if !IsHooked(a) {
			out = append(out, a)
		}
	}

	return out
}

// HookedArgs returns the hooked tokens of args in order.
func HookedArgs(args []string) []string {
	var out []string

	for _, a := range args {
		if IsHooked(a) {
			out = append(out, a)
		}
	}

	return out
}
