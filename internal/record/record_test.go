package record

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
)

// byteStream adapts a byte slice to the PeekReader shape.
type byteStream struct {
	br *bufio.Reader
}

func newByteStream(b []byte) *byteStream {
	return &byteStream{br: bufio.NewReader(bytes.NewReader(b))}
}

func (s *byteStream) Peek() (byte, error) {
	b, err := s.br.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *byteStream) ReadByte() (byte, error) {
	return s.br.ReadByte()
}

func (s *byteStream) Read(p []byte) (int, error) {
	return s.br.Read(p)
}

func TestEncodeFrameLayout(t *testing.T) {
	vals := []float32{1.5, -2.25, 3.0}

	frame, err := EncodeFrame(vals)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	if len(frame) != 13 {
		t.Errorf("frame size = %d, want 13", len(frame))
	}
	if frame[0] != 3 {
		t.Errorf("length prefix = %d, want 3", frame[0])
	}
	for i, v := range vals {
		got := binary.NativeEndian.Uint32(frame[1+4*i:])
		if got != math.Float32bits(v) {
			t.Errorf("float %d = %#x, want %#x", i, got, math.Float32bits(v))
		}
	}
}

func TestEncodeFrameRejectsBadLengths(t *testing.T) {
	if _, err := EncodeFrame(nil); err == nil {
		t.Error("EncodeFrame(nil) should fail")
	}
	if _, err := EncodeFrame([]float32{}); err == nil {
		t.Error("EncodeFrame(empty) should fail")
	}
	if _, err := EncodeFrame(make([]float32, 256)); err == nil {
		t.Error("EncodeFrame(256 floats) should fail")
	}
}

func TestEncodeFrameMaxLength(t *testing.T) {
	vals := make([]float32, MaxFrameLen)
	for i := range vals {
		vals[i] = float32(i)
	}

	frame, err := EncodeFrame(vals)
	if err != nil {
		t.Fatalf("EncodeFrame at max length failed: %v", err)
	}
	if len(frame) != EncodedSize(MaxFrameLen) {
		t.Errorf("frame size = %d, want %d", len(frame), EncodedSize(MaxFrameLen))
	}
}

func TestDecodeFrameRoundtrip(t *testing.T) {
	cases := [][]float32{
		{1.0},
		{2.0, 3.0},
		{4.0, 5.0, 6.0},
		make([]float32, MaxFrameLen),
	}
	for i := range cases[3] {
		cases[3][i] = float32(i) * 0.5
	}

	var stream []byte
	for _, vals := range cases {
		frame, err := EncodeFrame(vals)
		if err != nil {
			t.Fatalf("EncodeFrame failed: %v", err)
		}
		stream = append(stream, frame...)
	}

	r := newByteStream(stream)
	buf := make([]float32, MaxFrameLen+1)

	for i, want := range cases {
		n, err := DecodeFrame(r, buf)
		if err != nil {
			t.Fatalf("frame %d: DecodeFrame failed: %v", i, err)
		}
		if n != len(want) {
			t.Fatalf("frame %d: n = %d, want %d", i, n, len(want))
		}
		for j := range want {
			if buf[j] != want[j] {
				t.Errorf("frame %d sample %d = %v, want %v", i, j, buf[j], want[j])
			}
		}
	}

	if n, err := DecodeFrame(r, buf); n != 0 || err != io.EOF {
		t.Errorf("after last frame: n = %d, err = %v, want 0, io.EOF", n, err)
	}
}

func TestDecodeFrameEmptyStream(t *testing.T) {
	r := newByteStream(nil)
	n, err := DecodeFrame(r, make([]float32, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("n = %d, err = %v, want 0, io.EOF", n, err)
	}
}

func TestDecodeFrameInsufficientBuffer(t *testing.T) {
	frame, err := EncodeFrame([]float32{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	r := newByteStream(frame)

	// A buffer of exactly the frame length is also too small; the contract
	// requires room for strictly more than L floats.
	small := make([]float32, 5)
	for i := 0; i < 2; i++ {
		n, err := DecodeFrame(r, small)
		if n != -5 || err != nil {
			t.Fatalf("attempt %d: n = %d, err = %v, want -5, nil", i, n, err)
		}
	}

	// After the refusals the frame is still intact.
	big := make([]float32, 6)
	n, err := DecodeFrame(r, big)
	if n != 5 || err != nil {
		t.Fatalf("n = %d, err = %v, want 5, nil", n, err)
	}
	for i, want := range []float32{1, 2, 3, 4, 5} {
		if big[i] != want {
			t.Errorf("sample %d = %v, want %v", i, big[i], want)
		}
	}
}

func TestDecodeFrameTruncatedPayload(t *testing.T) {
	frame, err := EncodeFrame([]float32{1, 2, 3})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	// Chop the payload short, as a crash mid-append would.
	r := newByteStream(frame[:len(frame)-2])

	n, err := DecodeFrame(r, make([]float32, 8))
	if n != 0 || err != ErrTruncatedFrame {
		t.Errorf("n = %d, err = %v, want 0, ErrTruncatedFrame", n, err)
	}
}
