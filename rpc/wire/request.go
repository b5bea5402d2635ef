package wire

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Request message and its nested command messages.
const (
	fieldRequestGet = 1 // Request.get    (message)
	fieldRequestPut = 2 // Request.put    (message)
	fieldRequestDel = 3 // Request.del    (message)

	fieldCommandKey   = 1 // Get.key / Put.key / Del.key  (string)
	fieldCommandValue = 2 // Put.value                    (bytes)
)

// --------------------------------------------------------------------------
// Request and the command union
// --------------------------------------------------------------------------

// Request is the envelope for every client operation. It carries at most
// one command; a nil Cmd is a syntactically valid request that the server
// answers with CodeNotImpl.
type Request struct {
	Cmd Command
}

// Command is the closed union of operations a Request can carry. Exactly
// the types Get, Put and Del implement it, so holding a Command gives
// "at most one of" by construction.
type Command interface {
	isCommand()
}

// Get asks for the value stored under Key.
type Get struct {
	Key string
}

// Put stores Value under Key, overwriting any previous value.
type Put struct {
	Key   string
	Value []byte
}

// Del removes Key and reports the value it held.
type Del struct {
	Key string
}

func (*Get) isCommand() {}
func (*Put) isCommand() {}
func (*Del) isCommand() {}

// --------------------------------------------------------------------------
// Request Factory Functions
// --------------------------------------------------------------------------

// NewGetRequest creates a Request carrying a Get command.
func NewGetRequest(key string) *Request {
	return &Request{Cmd: &Get{Key: key}}
}

// NewPutRequest creates a Request carrying a Put command.
func NewPutRequest(key string, value []byte) *Request {
	return &Request{Cmd: &Put{Key: key, Value: value}}
}

// NewDelRequest creates a Request carrying a Del command.
func NewDelRequest(key string) *Request {
	return &Request{Cmd: &Del{Key: key}}
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Marshal encodes the request in protobuf wire format. Zero values are
// elided per proto3 rules, so a request without a command encodes to an
// empty byte slice.
func (r *Request) Marshal() []byte {
	var buf []byte

	switch cmd := r.Cmd.(type) {
	case *Get:
		buf = protowire.AppendTag(buf, fieldRequestGet, protowire.BytesType)
		buf = protowire.AppendBytes(buf, cmd.encode())
	case *Put:
		buf = protowire.AppendTag(buf, fieldRequestPut, protowire.BytesType)
		buf = protowire.AppendBytes(buf, cmd.encode())
	case *Del:
		buf = protowire.AppendTag(buf, fieldRequestDel, protowire.BytesType)
		buf = protowire.AppendBytes(buf, cmd.encode())
	}

	return buf
}

func (g *Get) encode() []byte {
	return appendKeyField(nil, g.Key)
}

func (p *Put) encode() []byte {
	buf := appendKeyField(nil, p.Key)
	if len(p.Value) > 0 {
		buf = protowire.AppendTag(buf, fieldCommandValue, protowire.BytesType)
		buf = protowire.AppendBytes(buf, p.Value)
	}
	return buf
}

func (d *Del) encode() []byte {
	return appendKeyField(nil, d.Key)
}

func appendKeyField(buf []byte, key string) []byte {
	if key == "" {
		return buf
	}
	buf = protowire.AppendTag(buf, fieldCommandKey, protowire.BytesType)
	return protowire.AppendString(buf, key)
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Unmarshal decodes a request from protobuf wire format. Unknown fields
// are skipped; if the command field occurs more than once, the last
// occurrence wins. Any syntactic error is fatal and reported via
// ErrMalformed, leaving r in an unspecified state.
func (r *Request) Unmarshal(data []byte) error {
	r.Cmd = nil

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformedf("truncated tag: %v", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldRequestGet && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return malformedf("truncated get command")
			}
			cmd := &Get{}
			if err := cmd.decode(body); err != nil {
				return err
			}
			r.Cmd = cmd
			data = data[n:]

		case num == fieldRequestPut && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return malformedf("truncated put command")
			}
			cmd := &Put{}
			if err := cmd.decode(body); err != nil {
				return err
			}
			r.Cmd = cmd
			data = data[n:]

		case num == fieldRequestDel && typ == protowire.BytesType:
			body, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return malformedf("truncated del command")
			}
			cmd := &Del{}
			if err := cmd.decode(body); err != nil {
				return err
			}
			r.Cmd = cmd
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

func (g *Get) decode(data []byte) error {
	return decodeKeyOnly(data, &g.Key, "get")
}

func (d *Del) decode(data []byte) error {
	return decodeKeyOnly(data, &d.Key, "del")
}

func (p *Put) decode(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformedf("put: truncated tag")
		}
		data = data[n:]

		switch {
		case num == fieldCommandKey && typ == protowire.BytesType:
			key, n, err := consumeString(data)
			if err != nil {
				return err
			}
			p.Key = key
			data = data[n:]

		case num == fieldCommandValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return malformedf("put: truncated value field")
			}
			// Copy out of the caller's buffer, it may be reused.
			p.Value = bytes.Clone(v)
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

// decodeKeyOnly decodes the shared shape of Get and Del: a single string
// field holding the key.
func decodeKeyOnly(data []byte, key *string, what string) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return malformedf("%s: truncated tag", what)
		}
		data = data[n:]

		if num == fieldCommandKey && typ == protowire.BytesType {
			k, n, err := consumeString(data)
			if err != nil {
				return err
			}
			*key = k
			data = data[n:]
			continue
		}

		n, err := skipField(num, typ, data)
		if err != nil {
			return err
		}
		data = data[n:]
	}

	return nil
}
