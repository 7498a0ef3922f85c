// Package wire implements the shared message framing and per-message body
// encodings used by all three protocol roles (C1 in the protocol's message
// flow): a length-prefixed {type, data} record on the outside, and a fixed
// binary layout per message type on the inside. Defining both here, in one
// place, is what lets Bob, the Tumbler, and Alice agree on the wire without
// duplicating the schema.
package wire

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/a2lprotocol/a2l-go/pkg/a2lerr"
)

// MaxFrameBytes bounds how large a single frame's data section may be, to
// keep a malformed length prefix from causing an unbounded allocation.
const MaxFrameBytes = 16 << 20

var (
	errFrameTooLarge  = errors.New("wire: declared frame length exceeds maximum")
	errTypeNotTerminated = errors.New("wire: type field is not null-terminated")
	errShortRead      = errors.New("wire: short read while filling frame")
)

// Frame is a raw {type, data} record as carried on the wire, before the
// type string's specific body layout is interpreted.
type Frame struct {
	Type string
	Data []byte
}

// WriteFrame serializes f as u32 type_len || u32 data_len || type_bytes ||
// data_bytes, big-endian, where type_len counts the type string's trailing
// NUL terminator.
func WriteFrame(w io.Writer, f Frame) error {
	typeBytes := append([]byte(f.Type), 0)

	var lens [8]byte
	binary.BigEndian.PutUint32(lens[0:4], uint32(len(typeBytes)))
	binary.BigEndian.PutUint32(lens[4:8], uint32(len(f.Data)))

	if _, err := w.Write(lens[:]); err != nil {
		return a2lerr.Wrap("wire.WriteFrame", a2lerr.ErrTransport, err)
	}
	if _, err := w.Write(typeBytes); err != nil {
		return a2lerr.Wrap("wire.WriteFrame", a2lerr.ErrTransport, err)
	}
	if len(f.Data) > 0 {
		if _, err := w.Write(f.Data); err != nil {
			return a2lerr.Wrap("wire.WriteFrame", a2lerr.ErrTransport, err)
		}
	}
	return nil
}

// ReadFrame reads and decodes one frame. It returns a2lerr.ErrInvalidMessage
// for any malformed length prefix (declared lengths exceeding MaxFrameBytes,
// or a type field missing its terminating zero byte); the codec neither
// trims nor pads declared lengths.
func ReadFrame(r io.Reader) (Frame, error) {
	var lens [8]byte
	if _, err := io.ReadFull(r, lens[:]); err != nil {
		return Frame{}, a2lerr.Wrap("wire.ReadFrame", a2lerr.ErrTransport, err)
	}
	typeLen := binary.BigEndian.Uint32(lens[0:4])
	dataLen := binary.BigEndian.Uint32(lens[4:8])

	if typeLen == 0 || typeLen > MaxFrameBytes || dataLen > MaxFrameBytes {
		return Frame{}, a2lerr.Wrap("wire.ReadFrame", a2lerr.ErrInvalidMessage, errFrameTooLarge)
	}

	typeBytes := make([]byte, typeLen)
	if _, err := io.ReadFull(r, typeBytes); err != nil {
		return Frame{}, a2lerr.Wrap("wire.ReadFrame", a2lerr.ErrTransport, errShortRead)
	}
	if typeBytes[typeLen-1] != 0 {
		return Frame{}, a2lerr.Wrap("wire.ReadFrame", a2lerr.ErrInvalidMessage, errTypeNotTerminated)
	}

	data := make([]byte, dataLen)
	if dataLen > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return Frame{}, a2lerr.Wrap("wire.ReadFrame", a2lerr.ErrTransport, errShortRead)
		}
	}

	return Frame{Type: string(typeBytes[:typeLen-1]), Data: data}, nil
}

// Marshal encodes f as a standalone byte slice (header + type + data),
// useful for codec round-trip tests that do not want an io.Writer.
func Marshal(f Frame) []byte {
	var buf writeBuffer
	_ = WriteFrame(&buf, f)
	return buf.b
}

// Unmarshal decodes a byte slice produced by Marshal (or an equivalent
// producer). Trailing bytes after a complete frame are ignored, matching
// ReadFrame's stream-oriented behavior.
func Unmarshal(b []byte) (Frame, error) {
	return ReadFrame(newReader(b))
}

type writeBuffer struct{ b []byte }

func (w *writeBuffer) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

func newReader(b []byte) io.Reader {
	return &byteReader{b: b}
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
