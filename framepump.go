package framepump

import (
	"context"

	"github.com/wagiedev/frame-pump-go/internal/config"
	"github.com/wagiedev/frame-pump-go/internal/frame"
	"github.com/wagiedev/frame-pump-go/internal/platform"
	"github.com/wagiedev/frame-pump-go/internal/process"
	"github.com/wagiedev/frame-pump-go/internal/pump"
)

// Process is a spawned child process.
type Process = process.Process

// Pump drains a process's stdout into frames on its own goroutine.
type Pump = pump.Pump

// FrameSource is what a Pump reads from. *Process implements it; custom
// sources can be injected for testing.
type FrameSource = pump.Source

// FrameHandler receives each complete frame on the pump goroutine.
type FrameHandler = frame.Handler

// FrameHandlerFunc adapts a function to FrameHandler.
type FrameHandlerFunc = frame.HandlerFunc

// Reassembler cuts a byte stream into fixed-size frames.
type Reassembler = frame.Reassembler

// State is the lifecycle stage of a Pump.
type State = pump.State

// Pump states.
const (
	StateIdle     = pump.StateIdle
	StateRunning  = pump.StateRunning
	StateDraining = pump.StateDraining
	StateStopped  = pump.StateStopped
)

// Stats are a pump's frame and byte counters.
type Stats = pump.Stats

// StreamMode selects how a child's stdin or stderr is wired.
type StreamMode = config.StreamMode

// Stream modes.
const (
	StreamDiscard = config.StreamDiscard
	StreamInherit = config.StreamInherit
	StreamPipe    = config.StreamPipe
)

// PipelineSpec describes a pipeline loaded from a JSON file.
type PipelineSpec = config.PipelineSpec

// Compile-time verification that *Process can feed a Pump.
var _ FrameSource = (*Process)(nil)

// Spawn launches name with args as a literal argument vector.
//
// The executable is looked up in PATH and then in WithSearchPaths
// directories unless name contains a path separator. On Windows the child
// is created without a console window. Failure returns a *SpawnError.
func Spawn(ctx context.Context, name string, args []string, opts ...Option) (*Process, error) {
	return process.Spawn(ctx, name, args, applyOptions(opts))
}

// NewPump binds a pump to src for frames of frameSize bytes. It claims
// src's stdout, so a second pump over the same process fails with
// ErrStdoutClaimed. Only WithLogger is consulted from opts.
func NewPump(src FrameSource, frameSize int, handler FrameHandler, opts ...Option) (*Pump, error) {
	return pump.New(applyOptions(opts).Logger, src, frameSize, handler)
}

// NewReassembler returns an empty reassembler for frames of size bytes.
func NewReassembler(size int) (*Reassembler, error) {
	return frame.New(size)
}

// ParseStreamMode parses "discard", "inherit" or "pipe". The empty string
// and "null" mean discard; "parent" means inherit.
func ParseStreamMode(s string) (StreamMode, error) {
	return config.ParseStreamMode(s)
}

// ParsePipelineSpec decodes and validates a JSON pipeline spec.
func ParsePipelineSpec(data []byte) (*PipelineSpec, error) {
	return config.ParsePipelineSpec(data)
}

// LoadPipelineSpec reads and validates a JSON pipeline spec file.
func LoadPipelineSpec(path string) (*PipelineSpec, error) {
	return config.LoadPipelineSpec(path)
}

// CreationFlags returns the OS process creation flags Spawn uses.
// It is zero everywhere but Windows.
func CreationFlags() uint32 {
	return platform.CreationFlags()
}
