package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tagdb/internal/tagdb"
)

// FileStore persists each database as one JSON document at its location,
// which is a file path.
type FileStore struct {
	codec
}

var _ tagdb.Store = (*FileStore)(nil)

// NewFileStore creates a file store. enc and dec may be nil for plaintext
// storage; dec may also be nil when the caller only saves.
func NewFileStore(enc tagdb.Encryptor, dec tagdb.DecryptionContext) *FileStore {
	return &FileStore{codec: codec{encryptor: enc, decryptor: dec}}
}

func (s *FileStore) Load(location string) (*tagdb.Database, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("reading database file: %w", err)
	}
	return s.decode(data)
}

// Save writes the database next to its destination and renames it into
// place, so readers see either the previous or the new content.
func (s *FileStore) Save(db *tagdb.Database) error {
	data, err := s.encode(db)
	if err != nil {
		return err
	}

	dest := db.Location()
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return writeFileAtomic(dest, data)
}

func writeFileAtomic(destPath string, data []byte) error {
	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
