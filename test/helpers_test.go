package test

import (
	"math/big"
	"os"
	"testing"

	"github.com/bnbchain/kzg-ceremony/srs"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

// writeSRS creates a well-formed SRS file for the given tau; test
// ceremonies start from such a file as their genesis.
func writeSRS(t *testing.T, path string, tau fr.Element, n int) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	header := srs.Header{NumG1: uint64(n)}
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

// readSRS loads a full SRS file; only usable for test-sized instances.
func readSRS(t *testing.T, path string) ([]bls12381.G1Affine, [2]bls12381.G2Affine) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var header srs.Header
	require.NoError(t, header.ReadFrom(file))

	dec := bls12381.NewDecoder(file)
	g1s := make([]bls12381.G1Affine, header.NumG1)
	for i := range g1s {
		require.NoError(t, dec.Decode(&g1s[i]))
	}
	var g2s [2]bls12381.G2Affine
	require.NoError(t, dec.Decode(&g2s[0]))
	require.NoError(t, dec.Decode(&g2s[1]))
	return g1s, g2s
}
