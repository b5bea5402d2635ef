// Package frame implements the length-prefixed framing used by all stream
// transports of the key-value store. Every message travels as a frame of
// the form
//
//	[2 bytes: payload length, big endian][N bytes: payload]
//
// The length field counts only the payload, never itself, which caps a
// single frame at 65535 payload bytes. A zero-length payload is a legal
// frame consisting of a bare header.
//
// The package offers two decoding styles:
//
//   - Decode operates on an in-memory buffer and reports ErrIncomplete
//     when the buffer does not yet hold a full frame. This suits callers
//     that accumulate bytes themselves.
//
//   - Read pulls exactly one frame from an io.Reader using blocking reads.
//     A stream that ends between frames yields io.EOF; a stream that ends
//     inside a frame yields ErrTruncated.
//
// Framing errors never corrupt the stream from the writer's side: Write
// and Encode reject oversized payloads before emitting a single byte.
package frame
