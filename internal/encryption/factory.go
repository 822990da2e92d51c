package encryption

import (
	"fmt"

	"tagdb/internal/config"
	"tagdb/internal/tagdb"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// It returns nil for type "none": stores then write plaintext JSON.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (tagdb.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
