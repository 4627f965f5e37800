package ceremony

import "errors"

var (
	// ErrStructuralMismatch reports that the batched pairing check over the
	// G1 powers failed, so the SRS is not a geometric progression.
	ErrStructuralMismatch = errors.New("SRS structure check failed")

	// ErrProofInvalid reports a Schnorr equation or digest binding failure
	// on an individual update proof.
	ErrProofInvalid = errors.New("update proof invalid")

	// ErrChainBroken reports a digest or G2 point discontinuity between
	// consecutive update proofs, or between the chain ends and the
	// genesis/final SRS.
	ErrChainBroken = errors.New("proof chain broken")

	// ErrZeroContribution reports a secret that is zero in the scalar
	// field; applying it would collapse every power to the identity.
	ErrZeroContribution = errors.New("contribution scalar is zero")
)
