package crypto

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"ledger-utility-service/internal/api"
)

var errKeyMismatch = errors.New("public key half does not match the key derived from the seed")

// KeyPair is a freshly generated signing identity
type KeyPair struct {
	PublicKey  solana.PublicKey
	PrivateKey solana.PrivateKey
}

// SignResult is the outcome of signing a message
type SignResult struct {
	Signature solana.Signature
	PublicKey solana.PublicKey
}

type CryptoService struct {
	verbose bool
}

func NewCryptoService(verbose bool) *CryptoService {
	return &CryptoService{
		verbose: verbose,
	}
}

// GenerateKeyPair creates a new ed25519 keypair from crypto/rand
func (c *CryptoService) GenerateKeyPair() (KeyPair, error) {
	privateKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate keypair: %w", err)
	}

	keyPair := KeyPair{
		PublicKey:  privateKey.PublicKey(),
		PrivateKey: privateKey,
	}

	if c.verbose {
		log.Debug().Str("pubkey", keyPair.PublicKey.String()).Msg("generated keypair")
	}

	return keyPair, nil
}

// Sign signs message with a 64-byte secret key (seed || public key).
// The secret must reconstruct to the same public key it carries.
func (c *CryptoService) Sign(message []byte, secret solana.PrivateKey) (SignResult, *api.Error) {
	if err := checkKeyPair(secret); err != nil {
		if c.verbose {
			log.Debug().Err(err).Msg("rejected secret key")
		}
		return SignResult{}, api.KeyReconstruction(err)
	}

	signature, err := secret.Sign(message)
	if err != nil {
		return SignResult{}, api.Internal(fmt.Errorf("failed to sign message: %w", err))
	}

	result := SignResult{
		Signature: signature,
		PublicKey: secret.PublicKey(),
	}

	if c.verbose {
		log.Debug().
			Str("pubkey", result.PublicKey.String()).
			Int("message_bytes", len(message)).
			Msg("signed message")
	}

	return result, nil
}

// Verify reports whether signature is valid for message under pubkey.
// A bad signature is a normal false, not an error.
func (c *CryptoService) Verify(pubkey solana.PublicKey, signature solana.Signature, message []byte) bool {
	valid := signature.Verify(pubkey, message)

	if c.verbose {
		log.Debug().
			Str("pubkey", pubkey.String()).
			Bool("valid", valid).
			Msg("verified signature")
	}

	return valid
}

func checkKeyPair(secret solana.PrivateKey) error {
	if len(secret) != ed25519.PrivateKeySize {
		return fmt.Errorf("invalid secret key size: expected %d bytes, got %d", ed25519.PrivateKeySize, len(secret))
	}

	derived := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], secret[ed25519.SeedSize:]) {
		return errKeyMismatch
	}

	return nil
}
