package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trustscore/internal/attestation"
	"trustscore/internal/engine/handler"
	jwttoken "trustscore/internal/jwt_token"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
)

const keyEnv = "TRUSTCTL_KEY"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trustctl",
		Short:         "Operator tool for the trustscore engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newKeygenCmd(), newTokenCmd(), newAttestCmd(), newHashPayloadCmd())
	return root
}

type keyPair struct {
	Identity   domain.Identity `json:"identity"`
	PrivateKey string          `json:"private_key"`
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 wallet or verifier key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pub, key, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			id, err := domain.IdentityFromPublicKey(pub)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), keyPair{Identity: id, PrivateKey: hex.EncodeToString(key)})
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		keyHex   string
		audience string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed by a wallet key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(keyHex)
			if err != nil {
				return err
			}
			tok, err := jwttoken.GenerateAccessToken(key, audience, time.Now(), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", "", "hex private key (defaults to $"+keyEnv+")")
	cmd.Flags().StringVar(&audience, "audience", "trustscore", "token audience")
	cmd.Flags().DurationVar(&ttl, "ttl", 10*time.Minute, "token lifetime")
	return cmd
}

func newAttestCmd() *cobra.Command {
	var (
		keyHex     string
		programID  string
		registryID string
		submitter  string
		proofData  string
		nullifier  string
		nonce      uint64
		baseScore  uint64
		timestamp  int64
	)
	cmd := &cobra.Command{
		Use:   "attest",
		Short: "Sign a submission as the verifier and print the POST /v1/proofs body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(keyHex)
			if err != nil {
				return err
			}
			program, err := domain.ParseIdentity(programID)
			if err != nil {
				return fmt.Errorf("--program: %w", err)
			}
			registryIdentity, err := domain.ParseIdentity(registryID)
			if err != nil {
				return fmt.Errorf("--registry: %w", err)
			}
			who, err := domain.ParseIdentity(submitter)
			if err != nil {
				return fmt.Errorf("--submitter: %w", err)
			}
			data, err := readProofData(proofData)
			if err != nil {
				return err
			}
			source := data.Payload.Source()

			var n domain.Hash
			if sources.SupportsNullifier(source) {
				if n, err = sources.ExtractIdentityNullifier(source, data.Payload); err != nil {
					return err
				}
			} else if n, err = domain.ParseHash(nullifier); err != nil {
				return fmt.Errorf("--nullifier is required for %s: %w", source, err)
			}

			hash, err := attestation.HashPayload(data.Payload)
			if err != nil {
				return err
			}
			if timestamp == 0 {
				timestamp = time.Now().Unix()
			}
			signer, err := attestation.NewSigner(key, program, registryIdentity)
			if err != nil {
				return err
			}
			env := signer.Sign(attestation.Fields{
				Submitter:         who,
				Source:            source,
				IdentityNullifier: n,
				AttestationNonce:  nonce,
				BaseScore:         baseScore,
				Timestamp:         timestamp,
				ProofHash:         hash,
			})
			return writeJSON(cmd.OutOrStdout(), handler.SubmitProofRequest{
				Source:            source.String(),
				IdentityNullifier: n.String(),
				AttestationNonce:  nonce,
				ProofData:         data,
				BaseScore:         baseScore,
				Timestamp:         timestamp,
				Attestation: handler.AttestationRequest{
					Scheme:    env.Scheme,
					PublicKey: signer.Identity().String(),
					Message:   hex.EncodeToString(env.Message),
					Signature: hex.EncodeToString(env.Signature),
				},
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&keyHex, "key", "", "hex verifier private key (defaults to $"+keyEnv+")")
	f.StringVar(&programID, "program", "", "program identity (base58)")
	f.StringVar(&registryID, "registry", "", "registry identity (base58)")
	f.StringVar(&submitter, "submitter", "", "submitting wallet identity (base58)")
	f.StringVar(&proofData, "proof-data", "", "proof data JSON, or @file")
	f.StringVar(&nullifier, "nullifier", "", "hex identity nullifier for sources without one in the payload")
	f.Uint64Var(&nonce, "nonce", 1, "attestation nonce")
	f.Uint64Var(&baseScore, "base-score", 0, "base score")
	f.Int64Var(&timestamp, "timestamp", 0, "proof timestamp in unix seconds (default now)")
	for _, name := range []string{"program", "registry", "submitter", "proof-data"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newHashPayloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-payload <proof-data JSON | @file>",
		Short: "Print the proof hash of a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readProofData(args[0])
			if err != nil {
				return err
			}
			hash, err := attestation.HashPayload(data.Payload)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash.String())
			return err
		},
	}
}

func loadKey(keyHex string) (ed25519.PrivateKey, error) {
	if keyHex == "" {
		keyHex = os.Getenv(keyEnv)
	}
	if keyHex == "" {
		return nil, fmt.Errorf("a private key is required (--key or $%s)", keyEnv)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(keyHex))
	if err != nil {
		return nil, fmt.Errorf("private key must be hex: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(raw), nil
}

func readProofData(arg string) (sources.ProofData, error) {
	raw := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return sources.ProofData{}, fmt.Errorf("read proof data: %w", err)
		}
	}
	var data sources.ProofData
	if err := json.Unmarshal(raw, &data); err != nil {
		return sources.ProofData{}, err
	}
	if data.Payload == nil {
		return sources.ProofData{}, fmt.Errorf("proof data is empty")
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
