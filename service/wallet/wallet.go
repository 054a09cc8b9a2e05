package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
)

// Signer is the minimal signing capability the pipeline needs from a wallet.
// Concrete wallet adapters (browser wallet bridge, local keypair) implement it.
type Signer interface {
	// PublicKey returns the signer's ed25519 public key
	PublicKey() ed25519.PublicKey
	// SignMessage signs the serialized transaction message
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// Wallet represents a connected wallet that can hand out a signer
type Wallet interface {
	// Address returns the wallet's base58 address
	Address() string
	// GetSigner acquires the wallet's signer. At most one signing sequence
	// should be in flight against the returned signer at a time.
	GetSigner(ctx context.Context) (Signer, error)
}

// LocalWallet is an in-process ed25519 keypair wallet, used by the CLI and in
// tests in place of a browser wallet bridge
type LocalWallet struct {
	priv ed25519.PrivateKey
}

// NewLocalWallet generates a wallet with a fresh keypair
func NewLocalWallet() (*LocalWallet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &LocalWallet{priv: priv}, nil
}

// FromPrivateKey wraps an existing ed25519 private key
func FromPrivateKey(priv ed25519.PrivateKey) *LocalWallet {
	return &LocalWallet{priv: priv}
}

// FromKeyfile loads a wallet from a JSON keyfile containing the 64-byte
// private key as a byte array (the format solana-keygen writes)
func FromKeyfile(path string) (*LocalWallet, error) {
	fi, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []int
	if err := json.Unmarshal(fi, &raw); err != nil {
		return nil, fmt.Errorf("invalid keyfile %s: %w", path, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid keyfile %s: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(raw))
	}
	priv := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	for i, b := range raw {
		if b < 0 || b > 255 {
			return nil, fmt.Errorf("invalid keyfile %s: byte %d out of range", path, i)
		}
		priv[i] = byte(b)
	}
	return &LocalWallet{priv: priv}, nil
}

func (w *LocalWallet) Address() string {
	return base58.Encode(w.priv.Public().(ed25519.PublicKey))
}

func (w *LocalWallet) GetSigner(ctx context.Context) (Signer, error) {
	return localSigner{priv: w.priv}, nil
}

type localSigner struct {
	priv ed25519.PrivateKey
}

func (s localSigner) PublicKey() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

func (s localSigner) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, message), nil
}
