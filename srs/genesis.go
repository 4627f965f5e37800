package srs

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bnbchain/kzg-ceremony/lagrange"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"github.com/rs/zerolog/log"
)

// ExtractGenesisPoint reads the upstream Filecoin phase1radix2m<power>
// export, converts its first G1 section from evaluation form to
// coefficient form and writes the first non-trivial power [τ]₁ to
// outputPath. That point, together with the genesis SRS digest, anchors
// the ceremony's proof chain.
//
// The radix file begins with [α]₁, [β]₁, [β]₂ in the raw uncompressed
// encoding; only the τ powers that follow are of interest here.
func ExtractGenesisPoint(radixPath string, power int, outputPath string) error {
	inputFile, err := os.Open(radixPath)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	n := 1 << power

	// Skip [α]₁, [β]₁ and [β]₂
	if _, err := inputFile.Seek(2*G1RawSize+G2RawSize, io.SeekStart); err != nil {
		return err
	}

	log.Info().Int("points", n).Msg("reading G1 evaluation points from radix file")
	reader := bufio.NewReaderSize(inputFile, 1<<26)
	dec := bls12381.NewDecoder(reader)
	buff := make([]bls12381.G1Affine, n)
	for i := 0; i < n; i++ {
		if err := dec.Decode(&buff[i]); err != nil {
			return fmt.Errorf("%w: radix G1 point %d: %v", DecodeErr(err), i, err)
		}
	}

	log.Info().Msg("converting G1 points from evaluation form to coefficient form")
	domain := fft.NewDomain(uint64(n))
	lagrange.ConvertG1(buff, domain)

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer outputFile.Close()

	point := buff[1].Bytes()
	if _, err := outputFile.Write(point[:]); err != nil {
		return err
	}

	log.Info().Str("path", outputPath).Msg("genesis point extracted")
	return nil
}

// ReadGenesisPoint loads a pinned genesis point file written by
// ExtractGenesisPoint.
func ReadGenesisPoint(path string) (bls12381.G1Affine, error) {
	var point bls12381.G1Affine

	bytes, err := os.ReadFile(path)
	if err != nil {
		return point, err
	}
	if len(bytes) != G1PointSize {
		return point, fmt.Errorf("%w: genesis point file is %d bytes, expected %d",
			ErrMalformedFile, len(bytes), G1PointSize)
	}
	if err := point.Unmarshal(bytes); err != nil {
		return point, fmt.Errorf("%w: genesis point: %v", ErrInvalidPoint, err)
	}
	return point, nil
}
