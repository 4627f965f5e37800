package common

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Returns powers of b starting from a as [a, ab, ab², ..., abⁿ⁻¹]
func Powers(a, b *fr.Element, n int) []fr.Element {
	result := make([]fr.Element, n)
	result[0].Set(a)
	for i := 1; i < n; i++ {
		result[i].Mul(&result[i-1], b)
	}
	return result
}

// Check e(a₁, a₂) = e(b₁, b₂)
func SameRatio(a1, b1 bls12381.G1Affine, a2, b2 bls12381.G2Affine) bool {
	var na2 bls12381.G2Affine
	na2.Neg(&a2)
	res, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{a1, b1},
		[]bls12381.G2Affine{na2, b2})
	if err != nil {
		panic(err)
	}
	return res
}
