// Package trace provides a minimal, opt-in debug printf gated by an
// environment variable, the same way the teacher gated its timer debug
// output behind GB_DEBUG_TIMER.
package trace

import (
	"fmt"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
)

func isEnabled() bool {
	once.Do(func() {
		enabled = os.Getenv("LYNXGO_TRACE") != ""
	})
	return enabled
}

// Printf writes a trace line to stderr when LYNXGO_TRACE is set in the
// environment; it is a no-op otherwise.
func Printf(format string, args ...any) {
	if !isEnabled() {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
