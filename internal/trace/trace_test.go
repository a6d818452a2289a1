package trace

import "testing"

// Printf is env-gated and writes to stderr; this only checks it doesn't
// panic with or without format args, matching the teacher's own minimal
// coverage of its debug-printf helper.
func TestPrintfDoesNotPanic(t *testing.T) {
	Printf("no args")
	Printf("with args: %d %s", 42, "x")
}
