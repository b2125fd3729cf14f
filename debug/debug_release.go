//go:build !debug

package debug

// Debug is false unless the binary is built with the debug tag.
const Debug = false
