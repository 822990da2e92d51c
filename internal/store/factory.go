package store

import (
	"context"
	"fmt"

	"tagdb/internal/config"
	"tagdb/internal/tagdb"
)

// NewStoreFromConfig creates a Store implementation based on the store config
// type. enc and dec seal the file and s3 blobs; the record based backends
// reject an encryptor rather than silently storing plaintext.
func NewStoreFromConfig(cfg config.StoreConfig, enc tagdb.Encryptor, dec tagdb.DecryptionContext) (tagdb.Store, error) {
	switch cfg.Type {
	case "file", "":
		return NewFileStore(enc, dec), nil
	case "memory":
		m := NewMemoryStore()
		m.codec = codec{encryptor: enc, decryptor: dec}
		return m, nil
	case "sqlite":
		if enc != nil {
			return nil, fmt.Errorf("sqlite store does not support encryption")
		}
		return NewSQLiteStore(), nil
	case "badger":
		if enc != nil {
			return nil, fmt.Errorf("badger store does not support encryption")
		}
		return NewBadgerStore(), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		s, err := NewS3StoreFromOptions(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		}, enc, dec)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
