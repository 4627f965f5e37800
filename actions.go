package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/bnbchain/kzg-ceremony/beacon"
	"github.com/bnbchain/kzg-ceremony/ceremony"
	"github.com/bnbchain/kzg-ceremony/srs"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/urfave/cli/v2"
)

func update(cCtx *cli.Context) error {
	if cCtx.Args().Len() != 1 {
		return errors.New("please provide the path of the current SRS")
	}
	oldPath := cCtx.Args().Get(0)
	proofsDir := cCtx.String("proofs-dir")

	var delta fr.Element
	var err error
	if round := cCtx.Uint64("beacon-round"); round != 0 {
		delta, err = beaconSecret(cCtx, round)
	} else {
		fmt.Println("Please hit your keyboard randomly, then press [ENTER]. (This will not be the only source of entropy.)")
		delta, err = ceremony.SampleSecret(os.Stdin)
	}
	if err != nil {
		return err
	}

	newPath, proofPath, err := ceremony.Contribute(oldPath, proofsDir, &delta)
	if err != nil {
		return err
	}

	fmt.Printf("Thank you for your participation!\n\nThe updated SRS has been saved to %s.\n", newPath)
	fmt.Printf("Make sure you upload the updated SRS and publish your validity proof (saved at %s).\n", proofPath)
	return nil
}

// beaconSecret re-derives the closing contribution's scalar from a
// verified drand round.
func beaconSecret(cCtx *cli.Context, round uint64) (fr.Element, error) {
	var delta fr.Element

	saltBytes, err := hex.DecodeString(cCtx.String("salt"))
	if err != nil || len(saltBytes) != beacon.SaltSize {
		return delta, errors.New("--salt must be 16 hex-encoded bytes")
	}
	var salt [beacon.SaltSize]byte
	copy(salt[:], saltBytes)

	randomness, err := fetchRandomness(cCtx, round)
	if err != nil {
		return delta, err
	}
	return beacon.DeriveSecret(randomness, salt)
}

func verifyStructure(cCtx *cli.Context) error {
	if cCtx.Args().Len() != 1 {
		return errors.New("please provide the path of the SRS to verify")
	}
	return ceremony.VerifyStructure(cCtx.Args().Get(0), cCtx.Int("power"))
}

func verifyChain(cCtx *cli.Context) error {
	if cCtx.Args().Len() != 1 {
		return errors.New("please provide the path of the final SRS")
	}
	genesisPath := cCtx.String("genesis")

	if anchorPath := cCtx.String("genesis-point"); anchorPath != "" {
		anchor, err := srs.ReadGenesisPoint(anchorPath)
		if err != nil {
			return err
		}
		if err := ceremony.VerifyAnchor(anchor, genesisPath); err != nil {
			return err
		}
	}

	return ceremony.VerifyChain(genesisPath, cCtx.String("proofs-dir"), cCtx.Args().Get(0))
}

func extractGenesisPoint(cCtx *cli.Context) error {
	if cCtx.Args().Len() != 1 {
		return errors.New("please provide the path of the radix file")
	}
	return srs.ExtractGenesisPoint(cCtx.Args().Get(0), cCtx.Int("power"), cCtx.String("output"))
}

func beaconCommit(cCtx *cli.Context) error {
	round := cCtx.Uint64("round")

	var salt [beacon.SaltSize]byte
	if saltHex := cCtx.String("salt"); saltHex != "" {
		saltBytes, err := hex.DecodeString(saltHex)
		if err != nil || len(saltBytes) != beacon.SaltSize {
			return errors.New("--salt must be 16 hex-encoded bytes")
		}
		copy(salt[:], saltBytes)
	} else {
		var err error
		if salt, err = beacon.NewSalt(); err != nil {
			return err
		}
	}

	commitment := beacon.Commit(round, salt)
	fmt.Printf("round:      %d\n", round)
	fmt.Printf("salt:       %s\n", hex.EncodeToString(salt[:]))
	fmt.Printf("commitment: %s\n", hex.EncodeToString(commitment[:]))
	fmt.Println("\nPublish the commitment now; disclose the salt only after the round has passed.")
	return nil
}

func beaconVerifyFinal(cCtx *cli.Context) error {
	round := cCtx.Uint64("round")

	saltBytes, err := hex.DecodeString(cCtx.String("salt"))
	if err != nil || len(saltBytes) != beacon.SaltSize {
		return errors.New("--salt must be 16 hex-encoded bytes")
	}
	var salt [beacon.SaltSize]byte
	copy(salt[:], saltBytes)

	commitment, err := hex.DecodeString(cCtx.String("commitment"))
	if err != nil {
		return errors.New("--commitment must be hex-encoded")
	}

	randomness, err := fetchRandomness(cCtx, round)
	if err != nil {
		return err
	}

	proofsDir := cCtx.String("proofs-dir")
	count, err := ceremony.CountProofs(proofsDir)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no proofs found in %s", proofsDir)
	}
	last, err := ceremony.ReadProofFile(ceremony.ProofPath(proofsDir, uint64(count)))
	if err != nil {
		return err
	}

	if err := beacon.VerifyFinalUpdate(round, salt, commitment, randomness, last); err != nil {
		return err
	}

	fmt.Printf("The last contribution (proof %d) was performed with the committed beacon secret.\n", last.Index)
	return nil
}

// fetchRandomness downloads the round from the drand endpoint, verifies
// its signature against the chain public key and extracts the 32 bytes of
// public randomness.
func fetchRandomness(cCtx *cli.Context, round uint64) ([32]byte, error) {
	var randomness [32]byte

	client := beacon.NewClient(cCtx.String("endpoint"))
	reply, err := client.Round(context.Background(), round)
	if err != nil {
		return randomness, err
	}

	signature, err := hex.DecodeString(reply.Signature)
	if err != nil {
		return randomness, fmt.Errorf("decoding signature: %w", err)
	}
	previousSig, err := hex.DecodeString(reply.PreviousSignature)
	if err != nil {
		return randomness, fmt.Errorf("decoding previous signature: %w", err)
	}

	publicKey := cCtx.String("pubkey")
	if publicKey == "" {
		publicKey = beacon.DefaultPublicKey
	}
	if err := beacon.VerifySignature(publicKey, round, previousSig, signature); err != nil {
		return randomness, err
	}

	return beacon.DeriveRandomness(signature), nil
}
