package srs

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Digest computes the SHA-256 content digest identifying an SRS version.
// The whole file is hashed, header included, in one buffered pass.
func Digest(path string) ([32]byte, error) {
	var digest [32]byte
	file, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer file.Close()

	sha := sha256.New()
	if _, err := io.Copy(sha, bufio.NewReaderSize(file, 1<<20)); err != nil {
		return digest, err
	}
	copy(digest[:], sha.Sum(nil))
	return digest, nil
}

// ReadG2Points returns the two G2 points stored at the tail of an SRS file.
func ReadG2Points(path string) ([2]bls12381.G2Affine, error) {
	var g2s [2]bls12381.G2Affine

	file, err := os.Open(path)
	if err != nil {
		return g2s, err
	}
	defer file.Close()

	var header Header
	if err := header.ReadFrom(file); err != nil {
		return g2s, err
	}

	info, err := file.Stat()
	if err != nil {
		return g2s, err
	}
	if info.Size() != ExpectedFileSize(header.NumG1) {
		return g2s, fmt.Errorf("%w: file is %d bytes, expected %d for %d G1 points",
			ErrMalformedFile, info.Size(), ExpectedFileSize(header.NumG1), header.NumG1)
	}

	if _, err := file.Seek(-2*G2PointSize, io.SeekEnd); err != nil {
		return g2s, err
	}

	dec := bls12381.NewDecoder(file)
	for i := range g2s {
		if err := dec.Decode(&g2s[i]); err != nil {
			return g2s, fmt.Errorf("%w: G2 point %d: %v", ErrInvalidPoint, i, err)
		}
	}
	return g2s, nil
}
