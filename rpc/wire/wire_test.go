package wire

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

// testRequests creates a set of requests covering every command shape
func testRequests() []*Request {
	return []*Request{
		// No command at all
		{},

		// Get
		NewGetRequest("hello"),
		NewGetRequest(""),

		// Put
		NewPutRequest("hello", []byte("world")),
		NewPutRequest("empty-value", nil),
		NewPutRequest("", []byte("keyless")),
		NewPutRequest("large", bytes.Repeat([]byte{0x5a}, 16*1024)),

		// Del
		NewDelRequest("hello"),
	}
}

// TestRequestRoundTrip tests that requests survive encoding unchanged
func TestRequestRoundTrip(t *testing.T) {
	for i, req := range testRequests() {
		data := req.Marshal()

		var result Request
		if err := result.Unmarshal(data); err != nil {
			t.Errorf("Failed to unmarshal request %d: %v", i, err)
			continue
		}

		if !reflect.DeepEqual(*req, result) {
			t.Errorf("Request %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
				i, req, &result)
		}
	}
}

// TestResponseRoundTrip tests that responses survive encoding unchanged
func TestResponseRoundTrip(t *testing.T) {
	testCases := []*Response{
		NewOKResponse("hello", []byte("world")),
		NewOKResponse("", nil),
		NewNotFoundResponse("missing"),
		NewNotImplResponse(),
		{Code: 42, Key: "custom", Value: []byte{0x00, 0xff}},
	}

	for i, resp := range testCases {
		data := resp.Marshal()

		var result Response
		if err := result.Unmarshal(data); err != nil {
			t.Errorf("Failed to unmarshal response %d: %v", i, err)
			continue
		}

		if !reflect.DeepEqual(*resp, result) {
			t.Errorf("Response %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
				i, resp, &result)
		}
	}
}

// TestZeroValueElision tests proto3 encoding of all-zero messages
func TestZeroValueElision(t *testing.T) {
	if data := (&Request{}).Marshal(); len(data) != 0 {
		t.Errorf("Empty request should encode to zero bytes, got %d", len(data))
	}

	if data := (&Response{}).Marshal(); len(data) != 0 {
		t.Errorf("Zero response should encode to zero bytes, got %d", len(data))
	}

	// An empty value slice is elided like a nil one and decodes as nil
	req := NewPutRequest("k", []byte{})
	var result Request
	if err := result.Unmarshal(req.Marshal()); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	put, ok := result.Cmd.(*Put)
	if !ok {
		t.Fatalf("Expected *Put command, got %T", result.Cmd)
	}
	if put.Key != "k" || len(put.Value) != 0 {
		t.Errorf("Unexpected put after round trip: %+v", put)
	}
}

// TestCommandPresence tests that an encoded command survives even when all
// its fields hold zero values
func TestCommandPresence(t *testing.T) {
	data := NewGetRequest("").Marshal()
	if len(data) == 0 {
		t.Fatal("A request with a command must not encode to zero bytes")
	}

	var result Request
	if err := result.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := result.Cmd.(*Get); !ok {
		t.Errorf("Expected *Get command, got %T", result.Cmd)
	}
}

// TestUnknownFieldsSkipped tests that decoders tolerate foreign fields
func TestUnknownFieldsSkipped(t *testing.T) {
	// Unknown varint and string fields surrounding a valid get command
	data := protowire.AppendTag(nil, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)
	data = append(data, NewGetRequest("hello").Marshal()...)
	data = protowire.AppendTag(data, 100, protowire.BytesType)
	data = protowire.AppendString(data, "future extension")

	var req Request
	if err := req.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	get, ok := req.Cmd.(*Get)
	if !ok || get.Key != "hello" {
		t.Errorf("Expected Get(hello), got %+v", req.Cmd)
	}

	// Unknown field nested inside a command message
	body := protowire.AppendTag(nil, 9, protowire.Fixed32Type)
	body = protowire.AppendFixed32(body, 0xdeadbeef)
	body = protowire.AppendTag(body, fieldCommandKey, protowire.BytesType)
	body = protowire.AppendString(body, "inner")

	data = protowire.AppendTag(nil, fieldRequestDel, protowire.BytesType)
	data = protowire.AppendBytes(data, body)

	if err := req.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	del, ok := req.Cmd.(*Del)
	if !ok || del.Key != "inner" {
		t.Errorf("Expected Del(inner), got %+v", req.Cmd)
	}

	// A known field number with the wrong wire type counts as unknown
	data = protowire.AppendTag(nil, fieldRequestGet, protowire.VarintType)
	data = protowire.AppendVarint(data, 1)

	if err := req.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.Cmd != nil {
		t.Errorf("Expected no command, got %+v", req.Cmd)
	}
}

// TestDuplicateFieldsLastWins tests proto3 merge semantics for repeated
// occurrences of singular fields, including the command oneof
func TestDuplicateFieldsLastWins(t *testing.T) {
	// Two different commands in one request: the later one wins
	data := append(NewGetRequest("first").Marshal(), NewPutRequest("second", []byte("v")).Marshal()...)

	var req Request
	if err := req.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	put, ok := req.Cmd.(*Put)
	if !ok || put.Key != "second" {
		t.Errorf("Expected the later Put command to win, got %+v", req.Cmd)
	}

	// The same command twice: the later one wins
	data = append(NewGetRequest("first").Marshal(), NewGetRequest("second").Marshal()...)
	if err := req.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	get, ok := req.Cmd.(*Get)
	if !ok || get.Key != "second" {
		t.Errorf("Expected the later Get command to win, got %+v", req.Cmd)
	}

	// A duplicated scalar field inside a response
	data = protowire.AppendTag(nil, fieldResponseCode, protowire.VarintType)
	data = protowire.AppendVarint(data, 404)
	data = protowire.AppendTag(data, fieldResponseCode, protowire.VarintType)
	data = protowire.AppendVarint(data, 500)

	var resp Response
	if err := resp.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if resp.Code != CodeNotImpl {
		t.Errorf("Expected code %v, got %v", CodeNotImpl, resp.Code)
	}
}

// TestMalformedInput tests that syntactic violations fail the whole message
func TestMalformedInput(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{
			name: "Truncated tag varint",
			data: []byte{0x80},
		},
		{
			name: "Length past end of buffer",
			data: []byte{0x0a, 0x05, 0x01, 0x02},
		},
		{
			name: "Truncated nested command",
			data: []byte{0x0a, 0x01, 0x80},
		},
		{
			name: "Invalid UTF-8 in key",
			data: []byte{0x0a, 0x04, 0x0a, 0x02, 0xff, 0xfe},
		},
		{
			name: "Truncated value length",
			data: []byte{0x12, 0x03, 0x12, 0xff, 0xff},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req Request
			if err := req.Unmarshal(tc.data); !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}

	// Response decoding rejects the same class of errors
	var resp Response
	if err := resp.Unmarshal([]byte{0x08, 0x80}); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed for truncated code, got %v", err)
	}
}

// TestValueIsDetached tests that decoded byte fields do not alias the input
func TestValueIsDetached(t *testing.T) {
	data := NewPutRequest("k", []byte("original")).Marshal()

	var req Request
	if err := req.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	// Clobber the input buffer, the decoded value must be unaffected
	for i := range data {
		data[i] = 0
	}

	put := req.Cmd.(*Put)
	if !bytes.Equal(put.Value, []byte("original")) {
		t.Errorf("Decoded value aliases the input buffer: %q", put.Value)
	}
}

// TestCodeString tests the human-readable code names
func TestCodeString(t *testing.T) {
	testCases := []struct {
		code Code
		want string
	}{
		{CodeOK, "ok"},
		{CodeNotFound, "not found"},
		{CodeNotImpl, "not implemented"},
		{Code(123), "code(123)"},
	}

	for _, tc := range testCases {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("Code(%d).String() = %q, want %q", int32(tc.code), got, tc.want)
		}
	}
}
