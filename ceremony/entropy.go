package ceremony

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// SampleSecret produces the contribution scalar for an interactive update.
// A line of keyboard mashing is mixed with 512 bytes from the OS CSPRNG
// through Blake2b-512; the first 32 bytes seed the deterministic sampler.
// The keyboard input is never the only entropy source.
func SampleSecret(userInput io.Reader) (fr.Element, error) {
	var delta fr.Element

	line, err := bufio.NewReader(userInput).ReadString('\n')
	if err != nil && err != io.EOF {
		return delta, fmt.Errorf("reading user input: %w", err)
	}

	var osInput [512]byte
	if _, err := io.ReadFull(rand.Reader, osInput[:]); err != nil {
		return delta, fmt.Errorf("reading OS entropy: %w", err)
	}

	hasher, err := blake2b.New512(nil)
	if err != nil {
		return delta, err
	}
	hasher.Write([]byte(line))
	hasher.Write(osInput[:])

	var seed [32]byte
	copy(seed[:], hasher.Sum(nil))
	return ScalarFromSeed(seed)
}

// ScalarFromSeed deterministically samples a uniform nonzero field element
// from a 32-byte seed: ChaCha20 keyed by the seed with a zero nonce
// produces 64 bytes, interpreted as a big-endian integer and reduced mod
// the field order. The doubled width keeps the reduction bias below 2⁻²⁵⁶.
func ScalarFromSeed(seed [32]byte) (fr.Element, error) {
	var delta fr.Element

	var nonce [chacha20.NonceSize]byte
	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return delta, err
	}

	var stream [64]byte
	cipher.XORKeyStream(stream[:], stream[:])

	delta.SetBytes(stream[:])
	if delta.IsZero() {
		return delta, ErrZeroContribution
	}
	return delta, nil
}
