//go:build debug

package debug

const Debug = true
