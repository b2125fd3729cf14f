// Package debug holds the build-time debug flag and assertion helper used
// across zkenc components.
package debug

import "fmt"

// Assert panics if condition is false. It is compiled to a no-op branch when
// Debug is false, so it may guard invariants on hot paths.
func Assert(condition bool, args ...interface{}) {
	if Debug && !condition {
		if len(args) > 0 {
			panic(fmt.Sprint(args...))
		}
		panic("assertion failed")
	}
}
