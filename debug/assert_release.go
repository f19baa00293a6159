//go:build !debug

// Package debug holds consistency checks for the write backlog that only
// run in builds tagged debug (go test -tags debug). In release builds
// Assert does nothing and code behind Enabled is compiled out.
package debug

// Enabled is false unless built with the debug tag.
const Enabled = false

// Assert does nothing without the debug tag.
func Assert(b bool, message string) {}
