package wire

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Response message.
const (
	fieldResponseCode  = 1 // Response.code  (int32)
	fieldResponseKey   = 2 // Response.key   (string)
	fieldResponseValue = 3 // Response.value (bytes)
)

// Response is the server's answer to a single Request. Code carries the
// outcome, Key echoes the key the command referred to and Value carries
// the payload where the operation has one (Get hit, Put echo, Del prior
// value).
type Response struct {
	Code  Code
	Key   string
	Value []byte
}

// --------------------------------------------------------------------------
// Response Factory Functions
// --------------------------------------------------------------------------

// NewOKResponse creates a successful response echoing key and value.
func NewOKResponse(key string, value []byte) *Response {
	return &Response{Code: CodeOK, Key: key, Value: value}
}

// NewNotFoundResponse creates a miss response for the given key.
func NewNotFoundResponse(key string) *Response {
	return &Response{Code: CodeNotFound, Key: key}
}

// NewNotImplResponse creates the response for requests without a usable
// command. All other fields stay at their zero values.
func NewNotImplResponse() *Response {
	return &Response{Code: CodeNotImpl}
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Marshal encodes the response in protobuf wire format with proto3 zero
// value elision: a Response{0, "", nil} encodes to an empty byte slice.
func (r *Response) Marshal() []byte {
	var buf []byte

	if r.Code != 0 {
		buf = protowire.AppendTag(buf, fieldResponseCode, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(int64(r.Code)))
	}
	if r.Key != "" {
		buf = protowire.AppendTag(buf, fieldResponseKey, protowire.BytesType)
		buf = protowire.AppendString(buf, r.Key)
	}
	if len(r.Value) > 0 {
		buf = protowire.AppendTag(buf, fieldResponseValue, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Value)
	}

	return buf
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Unmarshal decodes a response from protobuf wire format. Missing fields
// keep their zero values, unknown fields are skipped and repeated fields
// follow last-one-wins.
func (r *Response) Unmarshal(data []byte) error {
	*r = Response{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformedf("truncated tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldResponseCode && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return malformedf("truncated code field")
			}
			r.Code = Code(int32(v))
			data = data[n:]

		case num == fieldResponseKey && typ == protowire.BytesType:
			key, n, err := consumeString(data)
			if err != nil {
				return err
			}
			r.Key = key
			data = data[n:]

		case num == fieldResponseValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return malformedf("truncated value field")
			}
			r.Value = bytes.Clone(v)
			data = data[n:]

		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return err
			}
			data = data[n:]
		}
	}

	return nil
}
