// Package pump drains a child process's stdout on a background goroutine
// and delivers it as fixed-size frames.
//
// A Pump runs through idle, running, draining and stopped. While running it
// alternates a non-blocking exit check with a blocking read of at most the
// bytes the pending frame still needs. Once the child is seen to have
// exited (or stdout reaches EOF) it drains what is left in the pipe, emits
// any frames that completes and drops a truncated tail.
//
// Anything that goes wrong on the pump goroutine, including an error or
// panic from the frame handler, is stored once and surfaced by Err after
// Join; it is never raised on the pump goroutine itself.
package pump
