//go:build debug

package debug

// Enabled is true in builds tagged debug. The memory package uses it to
// recount the request backlog against the buffered bytes after every change.
const Enabled = true

// Assert panics with message if b is false.
func Assert(b bool, message string) {
	if !b {
		panic("debug: " + message)
	}
}
