package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:      "kzg-ceremony",
		Usage:     "Use this tool to participate in and verify the powers-of-tau ceremony",
		UsageText: "kzg-ceremony command [options] [arguments...]",
		Commands: []*cli.Command{
			{
				Name:        "update",
				Aliases:     []string{"u"},
				Usage:       "update <old-srs>",
				Description: "apply fresh randomness to the SRS and emit the next version plus its update proof",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "proofs-dir",
						Value:   "proofs",
						Usage:   "directory holding the append-only update proofs",
						EnvVars: []string{"CEREMONY_PROOFS_DIR"},
					},
					&cli.Uint64Flag{
						Name:  "beacon-round",
						Usage: "derive the secret from this drand round instead of interactive entropy",
					},
					&cli.StringFlag{
						Name:  "salt",
						Usage: "hex salt of the beacon commitment (required with --beacon-round)",
					},
					&cli.StringFlag{
						Name:    "endpoint",
						Value:   "",
						Usage:   "drand HTTP endpoint",
						EnvVars: []string{"CEREMONY_DRAND_ENDPOINT"},
					},
					&cli.StringFlag{
						Name:  "pubkey",
						Value: "",
						Usage: "hex drand chain public key",
					},
				},
				Action: update,
			},
			{
				Name:        "verify-structure",
				Aliases:     []string{"vs"},
				Usage:       "verify-structure --power <k> <srs>",
				Description: "check that the SRS is a well-formed geometric progression of 2^power G1 powers",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "power",
						Required: true,
						Usage:    "asserting 2^power G1 elements in the SRS (incl. the generator)",
					},
				},
				Action: verifyStructure,
			},
			{
				Name:        "verify-chain",
				Aliases:     []string{"vc"},
				Usage:       "verify-chain --genesis <srs0> <final-srs>",
				Description: "check that the recorded update proofs link the genesis SRS to the final SRS",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "proofs-dir",
						Value:   "proofs",
						Usage:   "directory holding the append-only update proofs",
						EnvVars: []string{"CEREMONY_PROOFS_DIR"},
					},
					&cli.StringFlag{
						Name:     "genesis",
						Required: true,
						Usage:    "path of the genesis SRS file the chain must start from",
					},
					&cli.StringFlag{
						Name:  "genesis-point",
						Usage: "pinned genesis point file; when given, the genesis SRS is checked against it",
					},
				},
				Action: verifyChain,
			},
			{
				Name:        "extract-genesis-point",
				Usage:       "extract-genesis-point --power <k> <radix-file>",
				Description: "extract [tau]_1 from the upstream Filecoin radix export as the chain's trust anchor",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "power",
						Required: true,
						Usage:    "log2 of the number of G1 points in the radix file",
					},
					&cli.StringFlag{
						Name:  "output",
						Value: "genesis_g1_point",
						Usage: "where to write the extracted point",
					},
				},
				Action: extractGenesisPoint,
			},
			{
				Name:  "beacon",
				Usage: "commit-reveal commands for the ceremony's closing contribution",
				Subcommands: []*cli.Command{
					{
						Name:        "commit",
						Usage:       "commit --round <n>",
						Description: "commit to a future drand round before its randomness exists",
						Flags: []cli.Flag{
							&cli.Uint64Flag{
								Name:     "round",
								Required: true,
								Usage:    "future drand round number",
							},
							&cli.StringFlag{
								Name:  "salt",
								Usage: "hex salt (freshly sampled when omitted)",
							},
						},
						Action: beaconCommit,
					},
					{
						Name:        "verify-final",
						Usage:       "verify-final --round <n> --salt <hex> --commitment <hex>",
						Description: "check that the chain's last update used the secret derived from the committed round",
						Flags: []cli.Flag{
							&cli.Uint64Flag{
								Name:     "round",
								Required: true,
								Usage:    "committed drand round number",
							},
							&cli.StringFlag{
								Name:     "salt",
								Required: true,
								Usage:    "hex salt used in the commitment (16 bytes)",
							},
							&cli.StringFlag{
								Name:     "commitment",
								Required: true,
								Usage:    "hex commitment published before the round",
							},
							&cli.StringFlag{
								Name:    "proofs-dir",
								Value:   "proofs",
								Usage:   "directory holding the append-only update proofs",
								EnvVars: []string{"CEREMONY_PROOFS_DIR"},
							},
							&cli.StringFlag{
								Name:    "endpoint",
								Value:   "",
								Usage:   "drand HTTP endpoint",
								EnvVars: []string{"CEREMONY_DRAND_ENDPOINT"},
							},
							&cli.StringFlag{
								Name:  "pubkey",
								Value: "",
								Usage: "hex drand chain public key",
							},
						},
						Action: beaconVerifyFinal,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
