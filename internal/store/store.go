// Package store implements tagdb.Store backends. Blob stores (memory, file,
// s3) persist the JSON encoding of a whole database; the sqlite and badger
// stores keep one record per tagged file.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"tagdb/internal/tagdb"
)

// codec turns databases into stored blobs and back, sealing them when an
// Encryptor is configured.
type codec struct {
	encryptor tagdb.Encryptor
	decryptor tagdb.DecryptionContext
}

func (c codec) encode(db *tagdb.Database) ([]byte, error) {
	plain, err := json.Marshal(db)
	if err != nil {
		return nil, fmt.Errorf("encoding database: %w", err)
	}
	plain = append(plain, '\n')
	if c.encryptor == nil {
		return plain, nil
	}

	var sealed bytes.Buffer
	if err := c.encryptor.Encrypt(bytes.NewReader(plain), &sealed); err != nil {
		return nil, fmt.Errorf("encrypting database: %w", err)
	}
	return sealed.Bytes(), nil
}

func (c codec) decode(data []byte) (*tagdb.Database, error) {
	if c.encryptor != nil {
		if c.decryptor == nil {
			return nil, fmt.Errorf("database is encrypted but no key was unlocked")
		}
		var plain bytes.Buffer
		if err := c.decryptor.Decrypt(bytes.NewReader(data), &plain); err != nil {
			return nil, fmt.Errorf("decrypting database: %w", err)
		}
		data = plain.Bytes()
	}

	db := &tagdb.Database{}
	if err := json.Unmarshal(data, db); err != nil {
		return nil, err
	}
	return db, nil
}
