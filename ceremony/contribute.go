package ceremony

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/bnbchain/kzg-ceremony/common"
	"github.com/bnbchain/kzg-ceremony/srs"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/rs/zerolog/log"
)

const buffSize = 1 << 26

// Contribute applies the secret delta to the SRS at oldPath, producing the
// next SRS version and its update proof in one streaming pass. The outputs
// are staged as temporary files and renamed into place only after the
// freshly created proof has been re-verified locally, so an interrupted
// run never leaves files that could pass for a completed contribution.
//
// delta is zeroed before Contribute returns; it is toxic waste.
func Contribute(oldPath, proofsDir string, delta *fr.Element) (string, string, error) {
	defer delta.SetZero()

	if delta.IsZero() {
		return "", "", ErrZeroContribution
	}

	existing, err := CountProofs(proofsDir)
	if err != nil {
		return "", "", err
	}
	index := uint64(existing) + 1

	newPath := filepath.Join(filepath.Dir(oldPath), fmt.Sprintf("srs%d", index))
	proofPath := ProofPath(proofsDir, index)

	inputFile, err := os.Open(oldPath)
	if err != nil {
		return "", "", err
	}
	defer inputFile.Close()

	outputFile, err := os.Create(newPath + ".tmp")
	if err != nil {
		return "", "", err
	}
	defer outputFile.Close()
	defer os.Remove(newPath + ".tmp")

	log.Info().Uint64("index", index).Msg("re-randomizing the SRS")

	oldSha := sha256.New()
	newSha := sha256.New()
	reader := io.TeeReader(bufio.NewReaderSize(inputFile, buffSize), oldSha)
	writer := bufio.NewWriterSize(outputFile, buffSize)
	out := io.MultiWriter(writer, newSha)

	oldQ1, newQ1, err := applyContribution(reader, out, delta)
	if err != nil {
		return "", "", err
	}
	if err := writer.Flush(); err != nil {
		return "", "", err
	}
	if err := outputFile.Sync(); err != nil {
		return "", "", err
	}

	var oldDigest, newDigest [32]byte
	copy(oldDigest[:], oldSha.Sum(nil))
	copy(newDigest[:], newSha.Sum(nil))

	// The update must extend the recorded chain, not some other SRS file.
	if index > 1 {
		last, err := ReadProofFile(ProofPath(proofsDir, index-1))
		if err != nil {
			return "", "", err
		}
		if last.NewDigest != oldDigest {
			return "", "", fmt.Errorf("%w: SRS at %s does not match the last recorded update", ErrChainBroken, oldPath)
		}
	}

	proof, err := NewUpdateProof(index, oldDigest, newDigest, oldQ1, newQ1, delta)
	if err != nil {
		return "", "", err
	}

	// Replay the verifier's check before publishing anything.
	if err := proof.Verify(); err != nil {
		return "", "", err
	}

	proofFile, err := os.Create(proofPath + ".tmp")
	if err != nil {
		return "", "", err
	}
	defer os.Remove(proofPath + ".tmp")
	if err := proof.WriteTo(proofFile); err != nil {
		proofFile.Close()
		return "", "", err
	}
	if err := proofFile.Sync(); err != nil {
		proofFile.Close()
		return "", "", err
	}
	if err := proofFile.Close(); err != nil {
		return "", "", err
	}

	// Atomic finalize: both outputs are complete and self-verified.
	if err := os.Rename(newPath+".tmp", newPath); err != nil {
		return "", "", err
	}
	if err := os.Rename(proofPath+".tmp", proofPath); err != nil {
		return "", "", err
	}

	log.Info().
		Str("srs", newPath).
		Str("proof", proofPath).
		Msg("contribution complete")
	return newPath, proofPath, nil
}

// applyContribution streams the old SRS from reader to writer, scaling
// G1 point i by deltaⁱ and the second G2 point by delta. Point i of the
// output reflects point i of the input exactly once; index order is
// preserved by scaling each batch in place before it is written.
func applyContribution(reader io.Reader, writer io.Writer, delta *fr.Element) (bls12381.G2Affine, bls12381.G2Affine, error) {
	var oldQ1, newQ1 bls12381.G2Affine

	var header srs.Header
	if err := header.ReadFrom(reader); err != nil {
		return oldQ1, newQ1, err
	}
	if err := header.WriteTo(writer); err != nil {
		return oldQ1, newQ1, err
	}
	n := int(header.NumG1)

	dec := bls12381.NewDecoder(reader)
	enc := bls12381.NewEncoder(writer)

	initialSize := n
	if initialSize > srs.BatchSize {
		initialSize = srs.BatchSize
	}
	buff := make([]bls12381.G1Affine, initialSize)

	var startPower fr.Element
	startPower.SetOne()

	remaining := n
	for remaining > 0 {
		readCount := remaining
		if readCount > srs.BatchSize {
			readCount = srs.BatchSize
		}
		for i := 0; i < readCount; i++ {
			if err := dec.Decode(&buff[i]); err != nil {
				return oldQ1, newQ1, fmt.Errorf("%w: G1 point %d: %v", srs.DecodeErr(err), n-remaining+i, err)
			}
		}

		// Powers of delta for this batch, continuing from the previous one
		scalars := common.Powers(&startPower, delta, readCount)
		startPower.Mul(&scalars[readCount-1], delta)

		common.Parallelize(readCount, func(start, end int) {
			var tmpBi big.Int
			for i := start; i < end; i++ {
				scalars[i].BigInt(&tmpBi)
				buff[i].ScalarMultiplication(&buff[i], &tmpBi)
			}
		})

		for i := 0; i < readCount; i++ {
			if err := enc.Encode(&buff[i]); err != nil {
				return oldQ1, newQ1, err
			}
		}

		remaining -= readCount
	}

	// Q₀ passes through untouched, Q₁ picks up the delta factor
	var q0 bls12381.G2Affine
	if err := dec.Decode(&q0); err != nil {
		return oldQ1, newQ1, fmt.Errorf("%w: G2 point 0: %v", srs.DecodeErr(err), err)
	}
	if err := enc.Encode(&q0); err != nil {
		return oldQ1, newQ1, err
	}

	if err := dec.Decode(&oldQ1); err != nil {
		return oldQ1, newQ1, fmt.Errorf("%w: G2 point 1: %v", srs.DecodeErr(err), err)
	}
	var deltaBi big.Int
	delta.BigInt(&deltaBi)
	newQ1.ScalarMultiplication(&oldQ1, &deltaBi)
	deltaBi.SetInt64(0)
	if err := enc.Encode(&newQ1); err != nil {
		return oldQ1, newQ1, err
	}

	// No trailing bytes allowed after the G2 pair
	var trailing [1]byte
	if _, err := reader.Read(trailing[:]); err != io.EOF {
		return oldQ1, newQ1, fmt.Errorf("%w: trailing bytes after G2 points", srs.ErrMalformedFile)
	}

	return oldQ1, newQ1, nil
}
