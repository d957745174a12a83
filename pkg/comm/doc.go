// Package comm provides the host side of the Sparki serial protocol.
package comm

// The protocol runs over a half-duplex serial line with no sequence numbers
// or acknowledgements. Every value, including the single character opcode,
// is sent as ASCII text followed by one Terminator byte. The firmware emits
// Sync bytes while it is idle and ready for the next command, which is the
// only flow control available: before each command the host discards any
// buffered input and waits for a fresh Sync.
//
// Responses use the same framing. Sync bytes may be interleaved with
// response bytes and are dropped by the Decoder.
//
// Producer: Sparki firmware
// Consumer: host library
