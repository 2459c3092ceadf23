package bitmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PIX is the storage container for a packed bitmap: a little endian uint16
// width, a little endian uint16 height and the packed rows.
const pixHeader = 4

var (
	// ErrDimensions is returned when a bitmap does not have the size the
	// caller requires.
	ErrDimensions = errors.New("bitmap: wrong dimensions")

	errNotEnough = errors.New("bitmap: not enough PIX data")
	errTooBig    = errors.New("bitmap: too large for PIX")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// EncodePIX writes b to w as a PIX payload.
func EncodePIX(w io.Writer, b *Bitmap) error {
	if b.width > 0xffff || b.height > 0xffff {
		return errTooBig
	}
	var hdr [pixHeader]byte
	binary.LittleEndian.PutUint16(hdr[0:], uint16(b.width))
	binary.LittleEndian.PutUint16(hdr[2:], uint16(b.height))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(Pack(b))
	return err
}

// MarshalPIX returns b as a PIX payload.
func MarshalPIX(b *Bitmap) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := EncodePIX(buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePIXConfig returns the dimensions stored in a PIX payload without
// decoding the rows.
func DecodePIXConfig(r io.Reader) (width, height int, err error) {
	var hdr [pixHeader]byte
	if err := readFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, 0, errNotEnough
		}
		return 0, 0, err
	}
	return int(binary.LittleEndian.Uint16(hdr[0:])), int(binary.LittleEndian.Uint16(hdr[2:])), nil
}

// DecodePIX reads a PIX payload that must be exactly wantW by wantH. A size
// mismatch is reported, never coerced.
func DecodePIX(r io.Reader, wantW, wantH int) (*Bitmap, error) {
	w, h, err := DecodePIXConfig(r)
	if err != nil {
		return nil, err
	}
	if w != wantW || h != wantH {
		return nil, fmt.Errorf("%w: PIX is %dx%d, want %dx%d", ErrDimensions, w, h, wantW, wantH)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unpack(body, w, h)
}

// UnmarshalPIX decodes a PIX payload held in memory.
func UnmarshalPIX(data []byte, wantW, wantH int) (*Bitmap, error) {
	return DecodePIX(bytes.NewReader(data), wantW, wantH)
}
