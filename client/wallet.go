package client

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"
	"time"

	"DocLedger/internal/auth"
	"DocLedger/internal/ethsig"
	"DocLedger/internal/ledger"
)

// Wallet holds an account key and signs on its behalf.
type Wallet struct {
	key   *ecdsa.PrivateKey // key is the secp256k1 account key
	clock func() time.Time  // clock stamps envelopes
}

// GenerateWallet creates a wallet with a fresh key.
func GenerateWallet() (*Wallet, error) {
	key, err := ethsig.GenerateKey()
	if err != nil {
		return nil, err
	}

	return &Wallet{key: key, clock: time.Now}, nil
}

// LoadWallet parses a hex private key.
func LoadWallet(hexKey string) (*Wallet, error) {
	key, err := ethsig.KeyFromHex(hexKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{key: key, clock: time.Now}, nil
}

// LoadWalletFile reads a hex private key from path.
func LoadWalletFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file:\n%w", err)
	}

	return LoadWallet(strings.TrimSpace(string(data)))
}

// Save writes the private key to path, readable by the owner only.
func (w *Wallet) Save(path string) error {
	if err := os.WriteFile(path, []byte(w.KeyHex()+"\n"), 0600); err != nil {
		return fmt.Errorf("write key file:\n%w", err)
	}

	return nil
}

// Address returns the wallet's account address.
func (w *Wallet) Address() ethsig.Address {
	return ethsig.AddressOf(w.key)
}

// KeyHex returns the private key as 0x-prefixed hex.
func (w *Wallet) KeyHex() string {
	return ethsig.KeyToHex(w.key)
}

// SignFingerprint produces the EIP-191 signature that Sign submits.
func (w *Wallet) SignFingerprint(fp ledger.Fingerprint) ([]byte, error) {
	return ethsig.Sign(w.key, fp)
}

// Envelope seals a call for op stamped with the wallet clock.
// signer and sig are only used by the operations that carry them.
func (w *Wallet) Envelope(op string, fp ledger.Fingerprint, signer ethsig.Address, sig []byte) (auth.Envelope, error) {
	return auth.Seal(w.key, auth.Call{
		Op:          op,
		Fingerprint: fp,
		Signer:      signer,
		Signature:   sig,
		IssuedAt:    w.clock().Unix(),
	})
}
