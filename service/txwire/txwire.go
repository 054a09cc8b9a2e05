// Package txwire decodes, signs and re-encodes serialized versioned
// transactions as the worker API ships them: base58 text wrapping a
// compact-u16 signature count, the 64-byte signature slots, and the
// serialized message the signatures cover.
package txwire

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/reavers-game/go-reavers/service/wallet"
)

// SignatureLength is the length of an ed25519 signature
const SignatureLength = 64

var (
	// ErrTruncated is returned when the wire bytes end before the declared
	// signature slots do
	ErrTruncated = errors.New("txwire: truncated transaction")
	// ErrNoSignatureSlot is returned when a transaction declares no
	// signature slots to sign into
	ErrNoSignatureSlot = errors.New("txwire: transaction has no signature slots")
	// ErrNoVacantSlot is returned when every signature slot is already filled
	ErrNoVacantSlot = errors.New("txwire: all signature slots are filled")
)

// Transaction is a decoded transaction: its signature slots and the message
// bytes they sign. The message is kept opaque; signing never reorders or
// rewrites it.
type Transaction struct {
	Signatures [][]byte
	Message    []byte
}

// DecodeBase58 decodes a base58-encoded serialized transaction
func DecodeBase58(encoded string) (*Transaction, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("txwire: %w", err)
	}
	return Decode(raw)
}

// Decode parses raw transaction bytes
func Decode(raw []byte) (*Transaction, error) {
	count, n, err := decodeCompactU16(raw)
	if err != nil {
		return nil, err
	}
	if len(raw) < n+count*SignatureLength {
		return nil, ErrTruncated
	}

	sigs := make([][]byte, count)
	offset := n
	for i := 0; i < count; i++ {
		sigs[i] = append([]byte(nil), raw[offset:offset+SignatureLength]...)
		offset += SignatureLength
	}

	return &Transaction{
		Signatures: sigs,
		Message:    append([]byte(nil), raw[offset:]...),
	}, nil
}

// Encode serializes the transaction back to raw bytes
func (t *Transaction) Encode() []byte {
	out := appendCompactU16(nil, len(t.Signatures))
	for _, sig := range t.Signatures {
		out = append(out, sig...)
	}
	return append(out, t.Message...)
}

// EncodeBase58 serializes the transaction back to its base58 wire form
func (t *Transaction) EncodeBase58() string {
	return base58.Encode(t.Encode())
}

// SignWith signs the message with the given signer and places the signature
// in the first vacant slot, failing when every slot is already filled. The
// fee payer occupies slot zero, which is the user's wallet in every flow
// this pipeline drives.
func (t *Transaction) SignWith(ctx context.Context, signer wallet.Signer) error {
	if len(t.Signatures) == 0 {
		return ErrNoSignatureSlot
	}

	slot := -1
	for i, existing := range t.Signatures {
		if isZero(existing) {
			slot = i
			break
		}
	}
	if slot == -1 {
		return ErrNoVacantSlot
	}

	sig, err := signer.SignMessage(ctx, t.Message)
	if err != nil {
		return err
	}
	if len(sig) != SignatureLength {
		return fmt.Errorf("txwire: signer produced %d-byte signature", len(sig))
	}

	t.Signatures[slot] = sig
	return nil
}

// FirstSignature returns the base58 form of the first signature, used only
// for display and correlation
func (t *Transaction) FirstSignature() string {
	if len(t.Signatures) == 0 {
		return ""
	}
	return base58.Encode(t.Signatures[0])
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// decodeCompactU16 reads a compact-u16 length prefix, returning the value
// and the number of bytes consumed
func decodeCompactU16(b []byte) (int, int, error) {
	value := 0
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, ErrTruncated
		}
		elem := int(b[i])
		value |= (elem & 0x7f) << (7 * i)
		if elem&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("txwire: compact-u16 prefix too long")
}

func appendCompactU16(out []byte, value int) []byte {
	for {
		elem := byte(value & 0x7f)
		value >>= 7
		if value == 0 {
			return append(out, elem)
		}
		out = append(out, elem|0x80)
	}
}
