package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// TestEncodeDecodeRoundTrip tests that payloads survive framing unchanged
func TestEncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
	}{
		{name: "Empty payload", payload: []byte{}},
		{name: "Single byte", payload: []byte{0x42}},
		{name: "Short text", payload: []byte("hello world")},
		{name: "Binary data", payload: []byte{0x00, 0xff, 0x00, 0xff}},
		{name: "Max payload", payload: bytes.Repeat([]byte{0xab}, MaxPayload)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			framed, err := Encode(tc.payload)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			if len(framed) != HeaderLen+len(tc.payload) {
				t.Errorf("Expected frame length %d, got %d", HeaderLen+len(tc.payload), len(framed))
			}

			payload, n, err := Decode(framed)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if n != len(framed) {
				t.Errorf("Expected %d bytes consumed, got %d", len(framed), n)
			}
			if !bytes.Equal(payload, tc.payload) {
				t.Errorf("Payload mismatch after round trip: expected %v, got %v", tc.payload, payload)
			}
		})
	}
}

// TestEncodeTooLarge tests that oversized payloads are rejected
func TestEncodeTooLarge(t *testing.T) {
	payload := make([]byte, MaxPayload+1)

	if _, err := Encode(payload); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge from Encode, got %v", err)
	}

	var sink bytes.Buffer
	if err := Write(&sink, payload); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge from Write, got %v", err)
	}
	if sink.Len() != 0 {
		t.Errorf("Write must not emit bytes for oversized payloads, wrote %d", sink.Len())
	}
}

// TestDecodeIncomplete tests that partial buffers report ErrIncomplete
// until the full frame has arrived
func TestDecodeIncomplete(t *testing.T) {
	framed, err := Encode([]byte("incremental"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Every strict prefix of the frame is incomplete
	for i := 0; i < len(framed); i++ {
		if _, _, err := Decode(framed[:i]); !errors.Is(err, ErrIncomplete) {
			t.Errorf("Expected ErrIncomplete for %d of %d bytes, got %v", i, len(framed), err)
		}
	}

	// The full frame decodes
	payload, n, err := Decode(framed)
	if err != nil {
		t.Fatalf("Decode of full frame failed: %v", err)
	}
	if n != len(framed) || !bytes.Equal(payload, []byte("incremental")) {
		t.Errorf("Unexpected decode result: n=%d payload=%q", n, payload)
	}
}

// TestDecodeTrailingBytes tests that Decode only consumes the first frame
func TestDecodeTrailingBytes(t *testing.T) {
	first, _ := Encode([]byte("first"))
	second, _ := Encode([]byte("second"))
	buf := append(append([]byte{}, first...), second...)

	payload, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(payload, []byte("first")) {
		t.Errorf("Expected first payload, got %q", payload)
	}

	payload, _, err = Decode(buf[n:])
	if err != nil {
		t.Fatalf("Decode of second frame failed: %v", err)
	}
	if !bytes.Equal(payload, []byte("second")) {
		t.Errorf("Expected second payload, got %q", payload)
	}
}

// TestWriteRead tests the stream-oriented framing path
func TestWriteRead(t *testing.T) {
	payloads := [][]byte{
		[]byte("one"),
		{},
		[]byte("three"),
	}

	var stream bytes.Buffer
	for _, p := range payloads {
		if err := Write(&stream, p); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	buf := make([]byte, 16)
	for i, want := range payloads {
		got, err := Read(&stream, buf)
		if err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Payload %d mismatch: expected %q, got %q", i, want, got)
		}
	}

	// Stream exhausted at a frame boundary
	if _, err := Read(&stream, buf); err != io.EOF {
		t.Errorf("Expected io.EOF at frame boundary, got %v", err)
	}
}

// TestReadTruncated tests that streams ending inside a frame are detected
func TestReadTruncated(t *testing.T) {
	framed, err := Encode([]byte("truncate me"))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "Mid header", data: framed[:1]},
		{name: "Header only", data: framed[:HeaderLen]},
		{name: "Mid payload", data: framed[:HeaderLen+4]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tc.data), nil)
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("Expected ErrTruncated, got %v", err)
			}
		})
	}
}

// TestReadBufferReuse tests that Read uses the provided buffer when possible
func TestReadBufferReuse(t *testing.T) {
	framed, _ := Encode([]byte("fits"))

	buf := make([]byte, 64)
	payload, err := Read(bytes.NewReader(framed), buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if &payload[0] != &buf[0] {
		t.Error("Expected payload to alias the provided buffer")
	}

	// Undersized buffer triggers a fresh allocation
	small := make([]byte, 2)
	payload, err = Read(bytes.NewReader(framed), small)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(payload, []byte("fits")) {
		t.Errorf("Unexpected payload: %q", payload)
	}
}
