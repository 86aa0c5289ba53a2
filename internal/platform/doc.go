// Package platform resolves the OS-specific parts of launching and
// signalling a child process.
//
// Process creation flags, the mapping of interrupt/terminate/kill onto the
// host's signal primitives, and the decoding of a reaped process's exit
// status live here so that the rest of the module stays platform neutral.
package platform
