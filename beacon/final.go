package beacon

import (
	"fmt"
	"math/big"

	"github.com/bnbchain/kzg-ceremony/ceremony"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/blake2b"
)

// DeriveSecret turns the beacon randomness and the commitment salt into
// the final contribution scalar. Blake2b-512, a wide hash distinct from
// the SHA-256 used for the commitment, produces the 32-byte seed; the
// seed then drives the same deterministic sampler as interactive
// contributions. The result is reproducible by anyone from public data.
func DeriveSecret(randomness [32]byte, salt [SaltSize]byte) (fr.Element, error) {
	hasher, err := blake2b.New512(nil)
	if err != nil {
		return fr.Element{}, err
	}
	hasher.Write(randomness[:])
	hasher.Write(salt[:])

	var seed [32]byte
	copy(seed[:], hasher.Sum(nil))
	return ceremony.ScalarFromSeed(seed)
}

// VerifyFinalUpdate checks that the last update proof of the chain was
// produced with exactly the secret derivable from (round, salt) and the
// round's randomness: the commitment must open, the proof must be valid
// in its own right, and its G2 pair must satisfy NewQ1 = δ·OldQ1 for the
// re-derived δ, which pins the contribution to the committed beacon round.
func VerifyFinalUpdate(round uint64, salt [SaltSize]byte, commitment []byte, randomness [32]byte, last *ceremony.UpdateProof) error {
	if err := VerifyOpening(round, salt, commitment); err != nil {
		return err
	}

	delta, err := DeriveSecret(randomness, salt)
	if err != nil {
		return err
	}

	if err := last.Verify(); err != nil {
		return err
	}

	var deltaBi big.Int
	delta.BigInt(&deltaBi)
	var expected bls12381.G2Affine
	expected.ScalarMultiplication(&last.OldQ1, &deltaBi)

	if !expected.Equal(&last.NewQ1) {
		return fmt.Errorf("%w: proof %d was not produced with the beacon-derived secret",
			ceremony.ErrProofInvalid, last.Index)
	}
	return nil
}
