package wire

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// --------------------------------------------------------------------------
// Response Codes
// --------------------------------------------------------------------------

// Code is the status code carried by every Response.
type Code int32

const (
	// CodeOK signals a successful operation.
	CodeOK Code = 0
	// CodeNotFound signals that the requested key does not exist.
	CodeNotFound Code = 404
	// CodeNotImpl signals that the request carried no usable command.
	CodeNotImpl Code = 500
)

// String returns a human-readable name for the code.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNotFound:
		return "not found"
	case CodeNotImpl:
		return "not implemented"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}

// --------------------------------------------------------------------------
// Decode Errors
// --------------------------------------------------------------------------

// ErrMalformed is the base error for every decoding failure: truncated
// varints, length fields pointing past the buffer, invalid UTF-8 in string
// fields. A malformed message invalidates the whole frame; there is no
// partial decode.
var ErrMalformed = errors.New("wire: malformed message")

// malformedf wraps ErrMalformed with positional detail.
func malformedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Shared field helpers
// --------------------------------------------------------------------------

// consumeString decodes a length-delimited string field and validates that
// it contains well-formed UTF-8, matching the schema's string semantics.
func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", 0, malformedf("truncated string field")
	}
	if !utf8.Valid(v) {
		return "", 0, malformedf("string field contains invalid UTF-8")
	}
	return string(v), n, nil
}

// skipField consumes a field of any wire type, including nested groups.
// Unknown field numbers are tolerated so the schema can evolve.
func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, malformedf("cannot skip field %d: %v", num, protowire.ParseError(n))
	}
	return n, nil
}
