package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

// --------------------------------------------------------------------------
// Constants and Errors
// --------------------------------------------------------------------------

const (
	// HeaderLen is the fixed size of the length prefix in bytes.
	HeaderLen = 2

	// MaxPayload is the largest payload a single frame can carry. The
	// length field is an unsigned 16-bit big-endian integer, so payloads
	// are limited to 65535 bytes.
	MaxPayload = 1<<(8*HeaderLen) - 1
)

var (
	// ErrTooLarge is returned when a payload exceeds MaxPayload. Nothing
	// is written to the stream in that case.
	ErrTooLarge = errors.New("frame: payload too large")

	// ErrIncomplete is returned by Decode when the buffer does not yet
	// contain a full frame. It signals "need more input", not a protocol
	// violation: the caller should read more bytes and try again.
	ErrIncomplete = errors.New("frame: incomplete frame")

	// ErrTruncated is returned by Read when the stream ends inside a
	// frame (mid-header or mid-payload). Unlike ErrIncomplete no more
	// input can arrive, so the frame is unrecoverable.
	ErrTruncated = errors.New("frame: truncated frame")
)

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Encode returns a complete frame for the given payload: a 2-byte
// big-endian length prefix followed by the payload bytes. The prefix
// counts payload bytes only. A zero-length payload yields a bare header.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(payload), MaxPayload)
	}

	buf := make([]byte, HeaderLen+len(payload))
	binary.BigEndian.PutUint16(buf[:HeaderLen], uint16(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf, nil
}

// Write frames the payload and writes it to w. The oversize check happens
// before any bytes reach the stream, so a failed Write never leaves a
// partial frame behind. Header and payload are handed to the kernel as a
// vectored write when w supports it.
func Write(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(payload), MaxPayload)
	}

	var header [HeaderLen]byte
	binary.BigEndian.PutUint16(header[:], uint16(len(payload)))

	if len(payload) == 0 {
		_, err := w.Write(header[:])
		return err
	}

	b := net.Buffers{header[:], payload}
	_, err := b.WriteTo(w)
	return err
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Decode extracts the first frame from buf. It returns the payload and the
// total number of bytes consumed (header plus payload). If buf holds less
// than a complete frame, Decode returns ErrIncomplete and the caller should
// accumulate more input. The returned payload aliases buf; callers that
// keep it past the next read must copy it.
func Decode(buf []byte) (payload []byte, n int, err error) {
	if len(buf) < HeaderLen {
		return nil, 0, ErrIncomplete
	}

	length := int(binary.BigEndian.Uint16(buf[:HeaderLen]))
	total := HeaderLen + length

	if len(buf) < total {
		return nil, 0, ErrIncomplete
	}

	return buf[HeaderLen:total], total, nil
}

// Read reads exactly one frame from r and returns its payload. The buffer
// buf is reused for the payload when large enough, otherwise a temporary
// buffer is allocated.
//
// A clean EOF at a frame boundary is reported as io.EOF. EOF inside the
// header or the payload is reported as ErrTruncated.
func Read(r io.Reader, buf []byte) ([]byte, error) {
	var header [HeaderLen]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: stream ended inside header", ErrTruncated)
		}
		return nil, err
	}

	length := int(binary.BigEndian.Uint16(header[:]))
	if length == 0 {
		return []byte{}, nil
	}

	if len(buf) < length {
		buf = make([]byte, length)
	}

	if _, err := io.ReadFull(r, buf[:length]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: stream ended inside payload (want %d bytes)", ErrTruncated, length)
		}
		return nil, err
	}

	return buf[:length], nil
}
