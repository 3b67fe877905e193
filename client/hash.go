package client

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"DocLedger/internal/ledger"
)

// HashFile returns the SHA-256 fingerprint of the file at path.
func HashFile(path string) (ledger.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return ledger.Fingerprint{}, fmt.Errorf("open document:\n%w", err)
	}
	defer f.Close()

	return HashReader(f)
}

// HashReader returns the SHA-256 fingerprint of everything read from r.
func HashReader(r io.Reader) (ledger.Fingerprint, error) {
	h := sha256.New()

	if _, err := io.Copy(h, r); err != nil {
		return ledger.Fingerprint{}, fmt.Errorf("hash document:\n%w", err)
	}

	var fp ledger.Fingerprint
	copy(fp[:], h.Sum(nil))

	return fp, nil
}
