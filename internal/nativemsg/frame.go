// Package nativemsg speaks the browser native-messaging protocol on a pair of
// byte streams: every message is a 4-byte little-endian length followed by
// that many bytes of UTF-8 JSON.
package nativemsg

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

const (
	// MaxFrameSize is the largest message the host accepts or emits.
	MaxFrameSize = 1 << 20
	bufferSize   = 1 << 16
	headerSize   = 4
)

var ErrFrameTooLarge = errors.New("native message frame too large")

// ReadFrame reads one length-prefixed payload. A clean end of stream before
// the header returns io.EOF.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.LittleEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, "read frame payload")
	}
	return payload, nil
}

// WriteFrame marshals v and writes it as a single frame, then flushes.
func WriteFrame(w *bufio.Writer, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal frame")
	}
	if len(encoded) > MaxFrameSize {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", len(encoded))
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(encoded)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}
	return w.Flush()
}
