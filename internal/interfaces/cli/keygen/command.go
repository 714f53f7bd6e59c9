// Package keygen generates the signing key pair for configuration.
package keygen

import (
	"fmt"

	"github.com/spf13/cobra"

	"serialhub/internal/infrastructure/crypto"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a signing key pair",
		Long:  `Generates a fresh ed25519 key pair, base64-encoded for the crypto.signing_private_key and crypto.signing_public_key configuration entries. Distribute only the public key to code holders.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			publicKey, privateKey, err := crypto.GenerateKeyPair()
			if err != nil {
				return fmt.Errorf("failed to generate key pair: %w", err)
			}

			fmt.Printf("signing_public_key:  %s\n", publicKey)
			fmt.Printf("signing_private_key: %s\n", privateKey)
			return nil
		},
	}
}
