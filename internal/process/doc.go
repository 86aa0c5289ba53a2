// Package process spawns and supervises one external child process.
//
// A Process starts the executable with a literal argv, always captures its
// stdout as a pipe, and reaps it on a background goroutine so that Poll
// never blocks and no zombie outlives the handle. Signals sent after the
// child has exited are silently dropped.
package process
