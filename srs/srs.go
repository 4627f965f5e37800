// Package srs implements the binary layout of the ceremony's structured
// reference string: an 8-byte little-endian count of G1 points, the G1
// points themselves, then exactly 2 G2 points, all in the compressed
// gnark-crypto encoding. Files are written once and never mutated; each
// version is identified by the SHA-256 digest of its bytes.
package srs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

var (
	ErrMalformedFile = errors.New("malformed SRS file")
	ErrInvalidPoint  = errors.New("invalid curve point")
)

const (
	G1PointSize = bls12381.SizeOfG1AffineCompressed
	G2PointSize = bls12381.SizeOfG2AffineCompressed

	// Raw (uncompressed) encodings, used by the upstream Filecoin export
	G1RawSize = bls12381.SizeOfG1AffineUncompressed
	G2RawSize = bls12381.SizeOfG2AffineUncompressed

	headerSize = 8
)

// BatchSize bounds how many G1 points are resident per streamed chunk.
const BatchSize = 1 << 20

type Header struct {
	NumG1 uint64
}

func (h *Header) ReadFrom(reader io.Reader) error {
	buff := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, buff); err != nil {
		return fmt.Errorf("%w: reading G1 count: %v", ErrMalformedFile, err)
	}
	h.NumG1 = binary.LittleEndian.Uint64(buff)
	if h.NumG1 < 2 {
		return fmt.Errorf("%w: SRS must hold at least 2 G1 points, got %d", ErrMalformedFile, h.NumG1)
	}
	return nil
}

func (h *Header) WriteTo(writer io.Writer) error {
	buff := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(buff, h.NumG1)
	_, err := writer.Write(buff)
	return err
}

// ExpectedFileSize returns the byte size of an SRS file holding n G1 points.
func ExpectedFileSize(n uint64) int64 {
	return headerSize + int64(n)*G1PointSize + 2*G2PointSize
}

// DecodeErr classifies a point decoder failure: truncated input means the
// file is malformed, anything else is a bad point encoding.
func DecodeErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrMalformedFile
	}
	return ErrInvalidPoint
}
