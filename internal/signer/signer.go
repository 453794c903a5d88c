package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds one wallet key for the duration of a single check.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner parses a hex private key, with or without the 0x prefix.
// Errors never echo the key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	// 1. Parse Private Key
	trimmed := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if trimmed == "" {
		return nil, apperrors.NewInvalidCredential("private key is required")
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, apperrors.NewInvalidCredential("invalid private key format")
	}

	// 2. Derive Address
	publicKey := key.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, apperrors.NewInvalidCredential("error casting public key to ECDSA")
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(*publicKeyECDSA),
	}, nil
}

// AddressOf derives the checksummed wallet address for a private key.
func AddressOf(privateKeyHex string) (common.Address, error) {
	s, err := NewSigner(privateKeyHex)
	if err != nil {
		return common.Address{}, err
	}
	return s.Address(), nil
}

// SignText produces a personal_sign (EIP-191 version 0x45) signature over message.
func (s *Signer) SignText(message string) (string, error) {
	hash := accounts.TextHash([]byte(message))

	signature, err := crypto.Sign(hash, s.key)
	if err != nil {
		return "", err
	}

	// crypto.Sign returns [R || S || V] with V in {0,1}; wallets emit 27/28.
	if signature[64] < 27 {
		signature[64] += 27
	}
	return hexutil.Encode(signature), nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// RecoverText returns the address that produced signature over message.
func RecoverText(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
