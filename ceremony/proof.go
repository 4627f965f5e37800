package ceremony

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bnbchain/kzg-ceremony/srs"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// UpdateProof is the public evidence that one contribution re-randomized
// the SRS by a single consistent factor δ. It carries a non-interactive
// Schnorr proof of knowledge of δ for NewQ1 = δ·OldQ1, Fiat-Shamir bound
// to the content digests of the SRS versions before and after the update.
type UpdateProof struct {
	// Index is the 1-based position of this contribution in the chain.
	Index uint64

	OldDigest [32]byte
	NewDigest [32]byte

	// OldQ1 and NewQ1 are [τ]₂ before and after the contribution.
	OldQ1 bls12381.G2Affine
	NewQ1 bls12381.G2Affine

	// T = k·OldQ1 and S = k + c·δ form the Schnorr transcript.
	T bls12381.G2Affine
	S fr.Element
}

// challenge derives the Fiat-Shamir challenge c = SHA-256(old || new || T)
// reduced into the scalar field.
func challenge(oldDigest, newDigest [32]byte, t *bls12381.G2Affine) fr.Element {
	sha := sha256.New()
	sha.Write(oldDigest[:])
	sha.Write(newDigest[:])
	tBytes := t.Bytes()
	sha.Write(tBytes[:])

	var c fr.Element
	c.SetBytes(sha.Sum(nil))
	return c
}

// NewUpdateProof proves knowledge of delta for newQ1 = delta·oldQ1. The
// ephemeral nonce k never leaves this function.
func NewUpdateProof(index uint64, oldDigest, newDigest [32]byte, oldQ1, newQ1 bls12381.G2Affine, delta *fr.Element) (*UpdateProof, error) {
	if delta.IsZero() {
		return nil, ErrZeroContribution
	}

	var k fr.Element
	if _, err := k.SetRandom(); err != nil {
		return nil, err
	}

	proof := &UpdateProof{
		Index:     index,
		OldDigest: oldDigest,
		NewDigest: newDigest,
		OldQ1:     oldQ1,
		NewQ1:     newQ1,
	}

	var kBi big.Int
	k.BigInt(&kBi)
	proof.T.ScalarMultiplication(&oldQ1, &kBi)

	c := challenge(oldDigest, newDigest, &proof.T)
	proof.S.Mul(&c, delta).Add(&proof.S, &k)

	k.SetZero()
	kBi.SetInt64(0)
	return proof, nil
}

// Verify checks the Schnorr equation S·OldQ1 == T + c·NewQ1 under the
// challenge recomputed from the embedded digests.
func (p *UpdateProof) Verify() error {
	if p.OldQ1.IsInfinity() || p.NewQ1.IsInfinity() {
		return fmt.Errorf("%w: proof %d holds the point at infinity", ErrProofInvalid, p.Index)
	}
	if p.OldQ1.Equal(&p.NewQ1) {
		return fmt.Errorf("%w: proof %d is a trivial update", ErrProofInvalid, p.Index)
	}

	c := challenge(p.OldDigest, p.NewDigest, &p.T)

	var sBi, cBi big.Int
	p.S.BigInt(&sBi)
	c.BigInt(&cBi)

	var lhs bls12381.G2Affine
	lhs.ScalarMultiplication(&p.OldQ1, &sBi)

	var cNew bls12381.G2Affine
	cNew.ScalarMultiplication(&p.NewQ1, &cBi)

	var rhsJac, tJac bls12381.G2Jac
	rhsJac.FromAffine(&cNew)
	tJac.FromAffine(&p.T)
	rhsJac.AddAssign(&tJac)

	var rhs bls12381.G2Affine
	rhs.FromJacobian(&rhsJac)

	if !lhs.Equal(&rhs) {
		return fmt.Errorf("%w: proof %d fails the Schnorr equation", ErrProofInvalid, p.Index)
	}
	return nil
}

func (p *UpdateProof) WriteTo(writer io.Writer) error {
	var index [8]byte
	for i := 0; i < 8; i++ {
		index[i] = byte(p.Index >> (8 * i))
	}
	if _, err := writer.Write(index[:]); err != nil {
		return err
	}
	if _, err := writer.Write(p.OldDigest[:]); err != nil {
		return err
	}
	if _, err := writer.Write(p.NewDigest[:]); err != nil {
		return err
	}

	enc := bls12381.NewEncoder(writer)
	toEncode := []interface{}{&p.OldQ1, &p.NewQ1, &p.T, &p.S}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *UpdateProof) ReadFrom(reader io.Reader) error {
	var index [8]byte
	if _, err := io.ReadFull(reader, index[:]); err != nil {
		return fmt.Errorf("%w: reading proof index: %v", srs.ErrMalformedFile, err)
	}
	p.Index = 0
	for i := 0; i < 8; i++ {
		p.Index |= uint64(index[i]) << (8 * i)
	}
	if _, err := io.ReadFull(reader, p.OldDigest[:]); err != nil {
		return fmt.Errorf("%w: reading old digest: %v", srs.ErrMalformedFile, err)
	}
	if _, err := io.ReadFull(reader, p.NewDigest[:]); err != nil {
		return fmt.Errorf("%w: reading new digest: %v", srs.ErrMalformedFile, err)
	}

	dec := bls12381.NewDecoder(reader)
	toDecode := []interface{}{&p.OldQ1, &p.NewQ1, &p.T, &p.S}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: decoding proof element: %v", srs.DecodeErr(err), err)
		}
	}
	return nil
}

// WriteFile persists the proof under its canonical name proof<index>.
func (p *UpdateProof) WriteFile(proofsDir string) (string, error) {
	path := ProofPath(proofsDir, p.Index)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if err := p.WriteTo(file); err != nil {
		return "", err
	}
	return path, nil
}

func ReadProofFile(path string) (*UpdateProof, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var proof UpdateProof
	if err := proof.ReadFrom(file); err != nil {
		return nil, err
	}
	return &proof, nil
}

// ProofPath returns the canonical file name of the proof at the given index.
func ProofPath(proofsDir string, index uint64) string {
	return filepath.Join(proofsDir, fmt.Sprintf("proof%d", index))
}

// CountProofs returns how many proof<N> files populate the directory.
func CountProofs(proofsDir string) (int, error) {
	indices, err := proofIndices(proofsDir)
	if err != nil {
		return 0, err
	}
	return len(indices), nil
}

// LoadChain reads all proof<N> files in index order and requires the
// indices to run contiguously from 1.
func LoadChain(proofsDir string) ([]UpdateProof, error) {
	indices, err := proofIndices(proofsDir)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no proofs found in %s", ErrChainBroken, proofsDir)
	}

	chain := make([]UpdateProof, 0, len(indices))
	for i, index := range indices {
		if index != uint64(i+1) {
			return nil, fmt.Errorf("%w: expected proof %d, found proof %d", ErrChainBroken, i+1, index)
		}
		proof, err := ReadProofFile(ProofPath(proofsDir, index))
		if err != nil {
			return nil, err
		}
		if proof.Index != index {
			return nil, fmt.Errorf("%w: file proof%d records index %d", ErrChainBroken, index, proof.Index)
		}
		chain = append(chain, *proof)
	}
	return chain, nil
}

func proofIndices(proofsDir string) ([]uint64, error) {
	entries, err := os.ReadDir(proofsDir)
	if err != nil {
		return nil, err
	}

	var indices []uint64
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "proof") {
			continue
		}
		number, err := strconv.ParseUint(strings.TrimPrefix(name, "proof"), 10, 64)
		if err != nil {
			continue
		}
		indices = append(indices, number)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices, nil
}
