// Package beacon implements the commit-reveal protocol closing the
// ceremony: a participant commits to a future drand round before its
// randomness exists, and the final SRS update is later checked to have
// used exactly the secret derivable from that round's (publicly
// verifiable) randomness. No party, the final contributor included, can
// steer the closing contribution.
package beacon

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrCommitmentViolated = errors.New("beacon commitment violated")
	ErrBeaconUnverifiable = errors.New("beacon value unverifiable")
)

const SaltSize = 16

// NewSalt draws the fixed-length commitment salt from the OS CSPRNG.
func NewSalt() ([SaltSize]byte, error) {
	var salt [SaltSize]byte
	_, err := io.ReadFull(rand.Reader, salt[:])
	return salt, err
}

// Commit computes C = SHA-256(round as 16-byte little-endian || salt).
// C must be published before the round's randomness exists.
func Commit(round uint64, salt [SaltSize]byte) [32]byte {
	var data [16 + SaltSize]byte
	binary.LittleEndian.PutUint64(data[:8], round)
	copy(data[16:], salt[:])
	return sha256.Sum256(data[:])
}

// VerifyOpening recomputes the commitment from the disclosed (round, salt)
// pair and compares it against the published value. The full hash width is
// compared; a mismatch is a hard failure.
func VerifyOpening(round uint64, salt [SaltSize]byte, commitment []byte) error {
	expected := Commit(round, salt)
	if len(commitment) != len(expected) ||
		subtle.ConstantTimeCompare(commitment, expected[:]) != 1 {
		return fmt.Errorf("%w: commitment does not open to round %d with the disclosed salt",
			ErrCommitmentViolated, round)
	}
	return nil
}
