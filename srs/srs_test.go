package srs

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func writeTestSRS(t *testing.T, path string, tau fr.Element, n int) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	header := Header{NumG1: uint64(n)}
	require.NoError(t, header.WriteTo(file))

	_, _, g1, g2 := bls12381.Generators()
	enc := bls12381.NewEncoder(file)

	var power fr.Element
	power.SetOne()
	var bi big.Int
	for i := 0; i < n; i++ {
		var p bls12381.G1Affine
		p.ScalarMultiplication(&g1, power.BigInt(&bi))
		require.NoError(t, enc.Encode(&p))
		power.Mul(&power, &tau)
	}

	q0 := g2
	require.NoError(t, enc.Encode(&q0))
	var q1 bls12381.G2Affine
	q1.ScalarMultiplication(&g2, tau.BigInt(&bi))
	require.NoError(t, enc.Encode(&q1))
}

func TestHeaderRoundTrip(t *testing.T) {
	var buff bytes.Buffer
	header := Header{NumG1: 1 << 10}
	require.NoError(t, header.WriteTo(&buff))

	var decoded Header
	require.NoError(t, decoded.ReadFrom(&buff))
	require.Equal(t, header.NumG1, decoded.NumG1)
}

func TestHeaderRejectsTruncation(t *testing.T) {
	var decoded Header
	err := decoded.ReadFrom(bytes.NewReader([]byte{1, 2, 3}))
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestHeaderRejectsTinyCount(t *testing.T) {
	var buff bytes.Buffer
	header := Header{NumG1: 1}
	require.NoError(t, header.WriteTo(&buff))

	var decoded Header
	require.ErrorIs(t, decoded.ReadFrom(&buff), ErrMalformedFile)
}

func TestDigestIdentifiesContent(t *testing.T) {
	dir := t.TempDir()
	var tau fr.Element
	tau.SetUint64(3)

	pathA := filepath.Join(dir, "a")
	pathB := filepath.Join(dir, "b")
	writeTestSRS(t, pathA, tau, 8)
	writeTestSRS(t, pathB, tau, 8)

	digestA, err := Digest(pathA)
	require.NoError(t, err)
	digestB, err := Digest(pathB)
	require.NoError(t, err)
	require.Equal(t, digestA, digestB)

	var tau2 fr.Element
	tau2.SetUint64(5)
	writeTestSRS(t, pathB, tau2, 8)
	digestB, err = Digest(pathB)
	require.NoError(t, err)
	require.NotEqual(t, digestA, digestB)
}

func TestReadG2Points(t *testing.T) {
	dir := t.TempDir()
	var tau fr.Element
	tau.SetUint64(7)
	path := filepath.Join(dir, "srs0")
	writeTestSRS(t, path, tau, 4)

	g2s, err := ReadG2Points(path)
	require.NoError(t, err)

	_, _, _, g2 := bls12381.Generators()
	require.True(t, g2s[0].Equal(&g2))

	var bi big.Int
	var expected bls12381.G2Affine
	expected.ScalarMultiplication(&g2, tau.BigInt(&bi))
	require.True(t, g2s[1].Equal(&expected))
}

func TestReadG2PointsRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	var tau fr.Element
	tau.SetUint64(7)
	path := filepath.Join(dir, "srs0")
	writeTestSRS(t, path, tau, 4)

	bytes, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes[:len(bytes)-1], 0o644))

	_, err = ReadG2Points(path)
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestGenesisPointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis_g1_point")

	_, _, g1, _ := bls12381.Generators()
	var point bls12381.G1Affine
	var bi big.Int
	bi.SetUint64(42)
	point.ScalarMultiplication(&g1, &bi)

	raw := point.Bytes()
	require.NoError(t, os.WriteFile(path, raw[:], 0o644))

	decoded, err := ReadGenesisPoint(path)
	require.NoError(t, err)
	require.True(t, decoded.Equal(&point))
}

func TestGenesisPointRejectsWrongLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis_g1_point")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := ReadGenesisPoint(path)
	require.ErrorIs(t, err, ErrMalformedFile)
}
