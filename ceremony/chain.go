package ceremony

import (
	"encoding/hex"
	"fmt"

	"github.com/bnbchain/kzg-ceremony/common"
	"github.com/bnbchain/kzg-ceremony/srs"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/rs/zerolog/log"
)

// VerifyChain confirms that the ordered update proofs in proofsDir link
// the genesis SRS at genesisPath to the SRS at finalPath. Each proof is
// re-verified individually and each consecutive pair must agree on both
// the digest and the [τ]₂ point it hands over; intermediate SRS files
// are not needed. Both ends are pinned to actual files: the first proof
// must start from the genesis digest and the genesis [τ]₂, the last must
// end at the final SRS digest and its [τ]₂. Without the start-point
// check a fabricated chain could reuse the public genesis digest while
// embedding a [τ]₂ of its own choosing. Any broken link aborts with the
// offending proof index.
//
// Structure verification of the final SRS is a separate, one-time check;
// the chain only establishes that its τ is a product of contributions
// applied to the genesis.
func VerifyChain(genesisPath, proofsDir, finalPath string) error {
	chain, err := LoadChain(proofsDir)
	if err != nil {
		return err
	}

	log.Info().Int("proofs", len(chain)).Msg("verifying the chain of update proofs")

	genesisDigest, err := srs.Digest(genesisPath)
	if err != nil {
		return err
	}
	genesisG2s, err := srs.ReadG2Points(genesisPath)
	if err != nil {
		return err
	}
	if !chain[0].OldQ1.Equal(&genesisG2s[1]) {
		return fmt.Errorf("%w: proof 1 does not start from the genesis [τ]₂", ErrChainBroken)
	}

	prevDigest := genesisDigest
	for i := range chain {
		proof := &chain[i]
		if proof.OldDigest != prevDigest {
			return fmt.Errorf("%w: proof %d binds to digest %s, expected %s",
				ErrChainBroken, proof.Index,
				hex.EncodeToString(proof.OldDigest[:]), hex.EncodeToString(prevDigest[:]))
		}
		if i > 0 && !proof.OldQ1.Equal(&chain[i-1].NewQ1) {
			return fmt.Errorf("%w: proof %d does not continue the G2 point of proof %d",
				ErrChainBroken, proof.Index, chain[i-1].Index)
		}
		if err := proof.Verify(); err != nil {
			return err
		}
		prevDigest = proof.NewDigest
	}

	finalDigest, err := srs.Digest(finalPath)
	if err != nil {
		return err
	}
	last := &chain[len(chain)-1]
	if finalDigest != last.NewDigest {
		return fmt.Errorf("%w: final SRS digest %s does not match the last proof",
			ErrChainBroken, hex.EncodeToString(finalDigest[:]))
	}

	g2s, err := srs.ReadG2Points(finalPath)
	if err != nil {
		return err
	}
	if !g2s[1].Equal(&last.NewQ1) {
		return fmt.Errorf("%w: final SRS [τ]₂ does not match the last proof", ErrChainBroken)
	}

	log.Info().Msg("the chain of update proofs is correct")
	return nil
}

// VerifyAnchor checks that the genesis SRS carries the same τ as the
// pinned genesis point extracted from the upstream export:
// e(anchor, [1]₂) = e([1]₁, Q₁).
func VerifyAnchor(anchor bls12381.G1Affine, genesisPath string) error {
	g2s, err := srs.ReadG2Points(genesisPath)
	if err != nil {
		return err
	}

	_, _, g1, g2 := bls12381.Generators()
	if !common.SameRatio(anchor, g1, g2, g2s[1]) {
		return fmt.Errorf("%w: genesis SRS does not match the pinned genesis point", ErrChainBroken)
	}

	log.Info().Msg("genesis SRS matches the pinned genesis point")
	return nil
}
