// Package wire defines the request/response message model of the key-value
// store and its encoding in Protocol Buffers wire format. Messages are
// encoded and decoded by hand on top of the protowire primitives; the
// schema the package implements is, in proto3 notation:
//
//	message Request {
//	  oneof command {
//	    Get get = 1;
//	    Put put = 2;
//	    Del del = 3;
//	  }
//	}
//
//	message Get { string key = 1; }
//	message Put { string key = 1; bytes value = 2; }
//	message Del { string key = 1; }
//
//	message Response {
//	  int32  code  = 1;
//	  string key   = 2;
//	  bytes  value = 3;
//	}
//
// The oneof is modeled as the Command interface implemented by exactly the
// Get, Put and Del types, which makes "at most one command" a property of
// the type system rather than a runtime check.
//
// Decoding follows standard proto3 semantics:
//
//   - Fields with unknown numbers (or known numbers with an unexpected
//     wire type) are skipped, so old servers tolerate newer clients.
//   - Repeated occurrences of a field follow last-one-wins, including
//     the command oneof.
//   - Missing fields decode to their zero values; a Request without a
//     command is syntactically valid (the server answers CodeNotImpl).
//   - Any syntactic violation (truncated varint, length past the end of
//     the buffer, invalid UTF-8 in a string field) fails the whole
//     message with an error wrapping ErrMalformed.
//
// Thread Safety:
//
//	Marshal and Unmarshal operate on the receiver only; distinct message
//	values can be encoded and decoded concurrently without locking.
package wire
