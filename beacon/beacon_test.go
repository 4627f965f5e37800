package beacon

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/bnbchain/kzg-ceremony/ceremony"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestCommitOpening(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	commitment := Commit(1234, salt)
	require.NoError(t, VerifyOpening(1234, salt, commitment[:]))
}

func TestOpeningRejectsWrongSalt(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	commitment := Commit(1234, salt)

	other := salt
	other[0] ^= 1
	require.ErrorIs(t, VerifyOpening(1234, other, commitment[:]), ErrCommitmentViolated)
}

func TestOpeningRejectsWrongRound(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	commitment := Commit(1234, salt)

	require.ErrorIs(t, VerifyOpening(1235, salt, commitment[:]), ErrCommitmentViolated)
}

func TestOpeningRejectsTruncatedCommitment(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	commitment := Commit(1234, salt)

	require.ErrorIs(t, VerifyOpening(1234, salt, commitment[:16]), ErrCommitmentViolated)
}

func TestDeriveSecretIsReproducible(t *testing.T) {
	var randomness [32]byte
	copy(randomness[:], []byte("beacon randomness for the test.."))
	var salt [SaltSize]byte
	copy(salt[:], []byte("0123456789abcdef"))

	first, err := DeriveSecret(randomness, salt)
	require.NoError(t, err)
	second, err := DeriveSecret(randomness, salt)
	require.NoError(t, err)
	require.True(t, first.Equal(&second))
	require.False(t, first.IsZero())

	salt[0] ^= 1
	third, err := DeriveSecret(randomness, salt)
	require.NoError(t, err)
	require.False(t, first.Equal(&third))
}

// synthetic drand chain: secret key x, pk = x·g1, sig = x·HashToG2(msg)
func signRound(t *testing.T, x fr.Element, round uint64, previousSig []byte) (string, []byte) {
	t.Helper()

	_, _, g1, _ := bls12381.Generators()
	var xBi big.Int
	x.BigInt(&xBi)

	var pk bls12381.G1Affine
	pk.ScalarMultiplication(&g1, &xBi)

	sha := sha256.New()
	sha.Write(previousSig)
	var roundBytes [8]byte
	binary.BigEndian.PutUint64(roundBytes[:], round)
	sha.Write(roundBytes[:])

	hm, err := bls12381.HashToG2(sha.Sum(nil), []byte(signatureDST))
	require.NoError(t, err)

	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&hm, &xBi)

	pkBytes := pk.Bytes()
	sigBytes := sig.Bytes()
	return hex.EncodeToString(pkBytes[:]), sigBytes[:]
}

func TestVerifySignature(t *testing.T) {
	var x fr.Element
	_, err := x.SetRandom()
	require.NoError(t, err)

	previousSig := []byte("previous signature bytes")
	pkHex, sig := signRound(t, x, 42, previousSig)

	require.NoError(t, VerifySignature(pkHex, 42, previousSig, sig))
}

func TestVerifySignatureRejectsWrongRound(t *testing.T) {
	var x fr.Element
	_, err := x.SetRandom()
	require.NoError(t, err)

	previousSig := []byte("previous signature bytes")
	pkHex, sig := signRound(t, x, 42, previousSig)

	require.ErrorIs(t, VerifySignature(pkHex, 43, previousSig, sig), ErrBeaconUnverifiable)
}

func TestVerifySignatureRejectsWrongKey(t *testing.T) {
	var x, y fr.Element
	_, err := x.SetRandom()
	require.NoError(t, err)
	_, err = y.SetRandom()
	require.NoError(t, err)

	previousSig := []byte("previous signature bytes")
	_, sig := signRound(t, x, 42, previousSig)
	otherKey, _ := signRound(t, y, 42, previousSig)

	require.ErrorIs(t, VerifySignature(otherKey, 42, previousSig, sig), ErrBeaconUnverifiable)
}

func finalProof(t *testing.T, delta fr.Element) *ceremony.UpdateProof {
	t.Helper()

	var tau fr.Element
	_, err := tau.SetRandom()
	require.NoError(t, err)

	_, _, _, g2 := bls12381.Generators()
	var tauBi, deltaBi big.Int
	var oldQ1, newQ1 bls12381.G2Affine
	oldQ1.ScalarMultiplication(&g2, tau.BigInt(&tauBi))
	newQ1.ScalarMultiplication(&oldQ1, delta.BigInt(&deltaBi))

	oldDigest := sha256.Sum256([]byte("srs before the final update"))
	newDigest := sha256.Sum256([]byte("srs after the final update"))

	proof, err := ceremony.NewUpdateProof(5, oldDigest, newDigest, oldQ1, newQ1, &delta)
	require.NoError(t, err)
	return proof
}

func TestVerifyFinalUpdate(t *testing.T) {
	var randomness [32]byte
	copy(randomness[:], []byte("public randomness of round 1234!"))
	salt, err := NewSalt()
	require.NoError(t, err)
	commitment := Commit(1234, salt)

	delta, err := DeriveSecret(randomness, salt)
	require.NoError(t, err)
	proof := finalProof(t, delta)

	require.NoError(t, VerifyFinalUpdate(1234, salt, commitment[:], randomness, proof))
}

func TestVerifyFinalUpdateRejectsForeignSecret(t *testing.T) {
	var randomness [32]byte
	copy(randomness[:], []byte("public randomness of round 1234!"))
	salt, err := NewSalt()
	require.NoError(t, err)
	commitment := Commit(1234, salt)

	// valid proof, but made with a secret the beacon does not derive
	var foreign fr.Element
	_, err = foreign.SetRandom()
	require.NoError(t, err)
	proof := finalProof(t, foreign)

	require.ErrorIs(t, VerifyFinalUpdate(1234, salt, commitment[:], randomness, proof),
		ceremony.ErrProofInvalid)
}

func TestVerifyFinalUpdateRejectsBrokenCommitment(t *testing.T) {
	var randomness [32]byte
	salt, err := NewSalt()
	require.NoError(t, err)
	commitment := Commit(1234, salt)

	delta, err := DeriveSecret(randomness, salt)
	require.NoError(t, err)
	proof := finalProof(t, delta)

	require.ErrorIs(t, VerifyFinalUpdate(1235, salt, commitment[:], randomness, proof),
		ErrCommitmentViolated)
}
