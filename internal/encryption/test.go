package encryption

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tagdb/internal/tagdb"
)

// Sealed layout written by TestEncryptor:
//
//	"TAGENC" | version | payload length (uint32, big endian) | masked payload
//
// The payload is XOR-masked so a sealed database never reads as JSON.
const (
	sealMagic   = "TAGENC"
	sealVersion = 1
	sealMask    = 0x5a
	sealHeadLen = len(sealMagic) + 1 + 4
)

// TestEncryptor seals serialized databases without real cryptography. It
// backs the "test" encryption type and the store tests: output is
// deterministic, and opening it checks the framing and that the payload is
// a tag database.
type TestEncryptor struct {
	passphrase string // set by Setup; empty accepts any passphrase
}

var _ tagdb.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records passphrase; later Unlock calls must present it.
func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return errors.New("passphrase must not be empty")
	}
	e.passphrase = passphrase
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading plaintext: %w", err)
	}

	sealed := make([]byte, sealHeadLen, sealHeadLen+len(payload))
	copy(sealed, sealMagic)
	sealed[len(sealMagic)] = sealVersion
	binary.BigEndian.PutUint32(sealed[len(sealMagic)+1:], uint32(len(payload)))
	for _, b := range payload {
		sealed = append(sealed, b^sealMask)
	}

	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("writing sealed data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (tagdb.DecryptionContext, error) {
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, errors.New("incorrect passphrase")
	}
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext opens data sealed by TestEncryptor.
type TestDecryptionContext struct{}

var _ tagdb.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	sealed, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading sealed data: %w", err)
	}
	if len(sealed) < sealHeadLen || !bytes.HasPrefix(sealed, []byte(sealMagic)) {
		return errors.New("not sealed by the test encryptor")
	}
	if v := sealed[len(sealMagic)]; v != sealVersion {
		return fmt.Errorf("unsupported seal version %d", v)
	}

	payload := sealed[sealHeadLen:]
	if n := binary.BigEndian.Uint32(sealed[len(sealMagic)+1:]); int(n) != len(payload) {
		return fmt.Errorf("sealed payload is %d bytes, header says %d", len(payload), n)
	}

	plain := make([]byte, len(payload))
	for i, b := range payload {
		plain[i] = b ^ sealMask
	}

	var db tagdb.Database
	if err := json.Unmarshal(plain, &db); err != nil {
		return fmt.Errorf("sealed payload is not a tag database: %w", err)
	}

	if _, err := w.Write(plain); err != nil {
		return fmt.Errorf("writing plaintext: %w", err)
	}
	return nil
}
