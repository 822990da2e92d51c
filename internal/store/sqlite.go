package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"tagdb/internal/store/migrations"
	"tagdb/internal/tag"
	"tagdb/internal/tagdb"
)

const locationKey = "location"

// SQLiteStore persists databases in a SQLite file at the location path.
// Each tagged file is a row; each tag is a row holding its JSON encoding.
type SQLiteStore struct{}

var _ tagdb.Store = (*SQLiteStore)(nil)

func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Load(location string) (*tagdb.Database, error) {
	// sql.Open would create a missing file.
	if _, err := os.Stat(location); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("stat database file: %w", err)
	}

	conn, err := OpenConnection(location)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := migrations.CheckDBMigrationStatus(conn); err != nil {
		if errors.Is(err, migrations.ErrNoVersion) {
			return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("checking schema: %w", err)
	}

	var stored string
	err = conn.QueryRow("SELECT value FROM metadata WHERE key = ?", locationKey).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", location, tagdb.ErrNotFound)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	files, err := loadFiles(conn)
	if err != nil {
		return nil, err
	}
	return tagdb.Restore(stored, files), nil
}

func loadFiles(conn *sql.DB) ([]*tagdb.TaggedFile, error) {
	rows, err := conn.Query(`
		SELECT f.path, t.tag
		FROM tagged_files f
		LEFT JOIN tags t ON t.file_id = f.id
		ORDER BY f.path, t.position`)
	if err != nil {
		return nil, fmt.Errorf("querying tagged files: %w", err)
	}
	defer rows.Close()

	var files []*tagdb.TaggedFile
	var current *tagdb.TaggedFile
	for rows.Next() {
		var path string
		var encoded sql.NullString
		if err := rows.Scan(&path, &encoded); err != nil {
			return nil, fmt.Errorf("scanning tagged file: %w", err)
		}
		if current == nil || current.Path() != path {
			current = tagdb.NewTaggedFile(path)
			files = append(files, current)
		}
		if !encoded.Valid {
			continue
		}
		var t tag.Tag
		if err := json.Unmarshal([]byte(encoded.String), &t); err != nil {
			return nil, fmt.Errorf("decoding tag of %s: %w", path, err)
		}
		current.AddTag(t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tagged files: %w", err)
	}
	return files, nil
}

// Save replaces every row inside a single transaction.
func (s *SQLiteStore) Save(db *tagdb.Database) error {
	if err := os.MkdirAll(filepath.Dir(db.Location()), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := OpenConnection(db.Location())
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := migrations.MigrateUp(conn); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM tags", "DELETE FROM tagged_files", "DELETE FROM metadata"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing tables: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", locationKey, db.Location()); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	insertFile, err := tx.Prepare("INSERT INTO tagged_files (path) VALUES (?)")
	if err != nil {
		return fmt.Errorf("preparing file insert: %w", err)
	}
	defer insertFile.Close()

	insertTag, err := tx.Prepare("INSERT INTO tags (file_id, position, tag) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing tag insert: %w", err)
	}
	defer insertTag.Close()

	for _, f := range db.Files() {
		res, err := insertFile.Exec(f.Path())
		if err != nil {
			return fmt.Errorf("inserting %s: %w", f.Path(), err)
		}
		fileID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading id of %s: %w", f.Path(), err)
		}

		for i, t := range f.Tags() {
			encoded, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("encoding tag of %s: %w", f.Path(), err)
			}
			if _, err := insertTag.Exec(fileID, i, string(encoded)); err != nil {
				return fmt.Errorf("inserting tag of %s: %w", f.Path(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
