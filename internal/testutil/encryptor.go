package testutil

import (
	"testing"

	"tagdb/internal/encryption"
	"tagdb/internal/tagdb"
)

// NewTestEncryption returns the deterministic test encryptor together with
// its unlocked decryption context.
func NewTestEncryption(t testing.TB) (tagdb.Encryptor, tagdb.DecryptionContext) {
	t.Helper()
	enc := encryption.NewTestEncryptor()
	dec, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("unlocking test encryptor: %v", err)
	}
	return enc, dec
}
