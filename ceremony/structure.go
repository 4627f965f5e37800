package ceremony

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/bnbchain/kzg-ceremony/common"
	"github.com/bnbchain/kzg-ceremony/srs"
	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/rs/zerolog/log"
)

// VerifyStructure checks that the SRS at path is a geometric progression
// of G1 powers consistent with its two G2 points, holding exactly 2^power
// G1 points.
//
// Checking every consecutive pair with its own pairing would cost 2(n-1)
// pairings. Instead both sides are folded with powers of one random
// scalar r: A = Σ rⁱ·Pᵢ over i = 0..n-2 and B = Σ rⁱ·Pᵢ₊₁ over the same
// range, then a single product check e(A, Q₁) = e(B, Q₀) decides. If the
// sequence is not a true progression the check passes with probability at
// most (n-1)/|Fr| over the choice of r. The file is processed in batches
// of bounded size; powers of r carry across batch boundaries so no
// consecutive pair escapes the fold.
func VerifyStructure(path string, power int) error {
	inputFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	reader := bufio.NewReaderSize(inputFile, buffSize)

	var header srs.Header
	if err := header.ReadFrom(reader); err != nil {
		return err
	}
	n := int(header.NumG1)
	if n != 1<<power {
		return fmt.Errorf("%w: expected %d G1 points, header records %d", srs.ErrMalformedFile, 1<<power, n)
	}

	log.Info().Int("points", n).Msg("verifying SRS structure")

	var r fr.Element
	for {
		if _, err := r.SetRandom(); err != nil {
			return err
		}
		if !r.IsZero() {
			break
		}
	}

	dec := bls12381.NewDecoder(reader)

	initialSize := n
	if initialSize > srs.BatchSize {
		initialSize = srs.BatchSize
	}
	buff := make([]bls12381.G1Affine, initialSize)

	_, _, g1, g2 := bls12381.Generators()

	var accA, accB bls12381.G1Jac
	var startPower, prevPower fr.Element
	startPower.SetOne()

	processed := 0
	for processed < n {
		readCount := n - processed
		if readCount > srs.BatchSize {
			readCount = srs.BatchSize
		}
		for i := 0; i < readCount; i++ {
			if err := dec.Decode(&buff[i]); err != nil {
				return fmt.Errorf("%w: G1 point %d: %v", srs.DecodeErr(err), processed+i, err)
			}
			if buff[i].IsInfinity() {
				return fmt.Errorf("%w: G1 point %d is the point at infinity", srs.ErrInvalidPoint, processed+i)
			}
		}
		if processed == 0 && !buff[0].Equal(&g1) {
			return fmt.Errorf("%w: first G1 point is not the generator", ErrStructuralMismatch)
		}

		// scalars[i] = r^(processed+i)
		scalars := common.Powers(&startPower, &r, readCount)

		// A folds points with global index <= n-2
		aCount := readCount
		if processed+readCount == n {
			aCount--
		}
		if aCount > 0 {
			var tmp bls12381.G1Affine
			if _, err := tmp.MultiExp(buff[:aCount], scalars[:aCount], ecc.MultiExpConfig{}); err != nil {
				return err
			}
			accA.AddMixed(&tmp)
		}

		// B folds points with global index >= 1, point j weighted by r^(j-1)
		bScalars := scalars
		bPoints := buff[:readCount]
		if processed == 0 {
			bPoints = bPoints[1:]
		} else {
			// the first point of this batch pairs with the last power of the previous one
			bScalars = append([]fr.Element{prevPower}, scalars[:readCount-1]...)
		}
		if len(bPoints) > 0 {
			var tmp bls12381.G1Affine
			if _, err := tmp.MultiExp(bPoints, bScalars[:len(bPoints)], ecc.MultiExpConfig{}); err != nil {
				return err
			}
			accB.AddMixed(&tmp)
		}

		prevPower.Set(&scalars[readCount-1])
		startPower.Mul(&scalars[readCount-1], &r)
		processed += readCount
	}

	var q0, q1 bls12381.G2Affine
	if err := dec.Decode(&q0); err != nil {
		return fmt.Errorf("%w: G2 point 0: %v", srs.DecodeErr(err), err)
	}
	if err := dec.Decode(&q1); err != nil {
		return fmt.Errorf("%w: G2 point 1: %v", srs.DecodeErr(err), err)
	}

	var trailing [1]byte
	if _, err := reader.Read(trailing[:]); err != io.EOF {
		return fmt.Errorf("%w: trailing bytes after G2 points", srs.ErrMalformedFile)
	}

	if !q0.Equal(&g2) {
		return fmt.Errorf("%w: first G2 point is not the generator", ErrStructuralMismatch)
	}
	if q1.IsInfinity() {
		return fmt.Errorf("%w: scaled G2 point is the point at infinity", ErrStructuralMismatch)
	}
	if q1.Equal(&g2) {
		return fmt.Errorf("%w: scaled G2 point is the generator", ErrStructuralMismatch)
	}

	var a, b bls12381.G1Affine
	a.FromJacobian(&accA)
	b.FromJacobian(&accB)

	// e(Σ rⁱ·Pᵢ, [τ]₂) = e(Σ rⁱ·Pᵢ₊₁, [1]₂)
	if !common.SameRatio(a, b, q1, q0) {
		return fmt.Errorf("%w: batched pairing check failed", ErrStructuralMismatch)
	}

	log.Info().Str("srs", path).Msg("SRS structure is correct")
	return nil
}
