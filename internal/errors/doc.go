// Package errors defines error types for the frame pump.
//
// This package provides structured error types for the failure classes of
// the pipeline: spawning the child, waiting on it, reassembling frames and
// running the pump goroutine. All error types support error unwrapping and
// can be checked using errors.Is, errors.As, and errors.AsType.
package errors
