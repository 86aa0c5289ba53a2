// Package frame reassembles an unbounded byte stream into fixed-size frames.
//
// A Reassembler has no I/O of its own. It is fed whatever chunks a reader
// produced, emits every frame those chunks complete, and holds back at most
// one partial frame (the remainder) until more bytes or end of stream
// arrive. The emitted sequence depends only on the bytes, never on how the
// stream was split into reads.
package frame
