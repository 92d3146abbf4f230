// Package record implements the on-disk frame codec. A frame is one length
// byte L in [1,255] followed by L 32-bit floats in host byte order; a
// recording is a plain concatenation of frames with no header or trailer.
// Recordings are not portable across hosts with a different byte order.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxFrameLen is the largest number of floats a single frame can carry,
// bounded by the one-byte length prefix.
const MaxFrameLen = 255

// ErrTruncatedFrame reports a frame whose payload ends before the length
// prefix says it should. A crash mid-append leaves one of these as the last
// frame of a recording.
var ErrTruncatedFrame = errors.New("truncated frame payload")

// PeekReader is the stream shape DecodeFrame needs: a one-byte lookahead so
// the length prefix can be inspected without consuming it.
type PeekReader interface {
	Peek() (byte, error)
	ReadByte() (byte, error)
	Read(p []byte) (int, error)
}

// EncodedSize returns the on-disk size in bytes of a frame of n floats.
func EncodedSize(n int) int {
	return 1 + 4*n
}

// EncodeFrame encodes one sample vector as a frame. The vector must hold
// between 1 and MaxFrameLen floats.
func EncodeFrame(vals []float32) ([]byte, error) {
	if len(vals) == 0 || len(vals) > MaxFrameLen {
		return nil, fmt.Errorf("frame length %d out of range [1,%d]", len(vals), MaxFrameLen)
	}

	buf := make([]byte, EncodedSize(len(vals)))
	buf[0] = byte(len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(buf[1+4*i:], math.Float32bits(v))
	}

	return buf, nil
}

// DecodeFrame reads the next frame from r into buf. Return values mirror the
// store's read contract:
//
//   - (0, io.EOF) at end of recording; nothing is consumed.
//   - (-L, nil) when the next frame holds L floats but len(buf) <= L; the
//     length byte is left in the stream so the caller can retry with a
//     larger buffer.
//   - (L, nil) on success, with the payload in buf[:L].
//   - (0, ErrTruncatedFrame) when the payload ends early; the stream
//     position is undefined afterwards.
func DecodeFrame(r PeekReader, buf []float32) (int, error) {
	prefix, err := r.Peek()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, err
	}

	n := int(prefix)
	if len(buf) <= n {
		return -n, nil
	}

	if _, err := r.ReadByte(); err != nil {
		return 0, fmt.Errorf("consuming length prefix: %w", err)
	}

	payload := make([]byte, 4*n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, ErrTruncatedFrame
	}

	for i := 0; i < n; i++ {
		buf[i] = math.Float32frombits(binary.NativeEndian.Uint32(payload[4*i:]))
	}

	return n, nil
}
