package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/tagdb",
		LogDir:  "/home/user/.local/share/tagdb/log",
		Database: DatabaseConfig{
			Location: "photos/tags.json",
		},
		Store: StoreConfig{
			Type:       "s3",
			S3Bucket:   "my-tags",
			S3Prefix:   "laptop",
			S3Region:   "eu-west-1",
			S3Endpoint: "http://localhost:9000",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/tagdb/keys/tagdb.pub",
			PrivateKeyPath: "/home/user/.local/share/tagdb/keys/tagdb.key",
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{"*.tmp", ".git"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Store != original.Store {
		t.Errorf("Store = %+v, want %+v", got.Store, original.Store)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/tagdb")

	if cfg.LogDir != "/data/tagdb/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/tagdb/log")
	}
	if cfg.Database.Location != "/data/tagdb/tags.json" {
		t.Errorf("Database.Location = %q, want %q", cfg.Database.Location, "/data/tagdb/tags.json")
	}
	if cfg.Store.Type != "file" {
		t.Errorf("Store.Type = %q, want %q", cfg.Store.Type, "file")
	}
	if cfg.Encryption.PublicKeyPath != "/data/tagdb/keys/tagdb.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/tagdb/keys/tagdb.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/tagdb/keys/tagdb.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/tagdb/keys/tagdb.key")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(NewConfig()) error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "missing location",
			modify:  func(c *Config) { c.Database.Location = "" },
			wantErr: "database.location is required",
		},
		{
			name:    "unknown store type",
			modify:  func(c *Config) { c.Store.Type = "floppy" },
			wantErr: "store.type must be one of",
		},
		{
			name:    "s3 without bucket",
			modify:  func(c *Config) { c.Store.Type = "s3" },
			wantErr: "store.s3_bucket is required",
		},
		{
			name: "s3 with bucket",
			modify: func(c *Config) {
				c.Store.Type = "s3"
				c.Store.S3Bucket = "tags"
			},
		},
		{
			name:    "bad endpoint",
			modify:  func(c *Config) { c.Store.S3Endpoint = "not a url" },
			wantErr: "store.s3_endpoint must be a valid URL",
		},
		{
			name:    "access key without secret",
			modify:  func(c *Config) { c.Store.S3AccessKeyID = "AKIA" },
			wantErr: "store.s3_secret_access_key is required together with",
		},
		{
			name:    "unknown encryption type",
			modify:  func(c *Config) { c.Encryption.Type = "rot13" },
			wantErr: "encryption.type must be one of",
		},
		{
			name: "age without key paths",
			modify: func(c *Config) {
				c.Encryption.Type = "age"
				c.Encryption.PrivateKeyPath = ""
			},
			wantErr: "encryption.private_key_path is required",
		},
		{
			name: "key paths not needed without age",
			modify: func(c *Config) {
				c.Encryption.Type = "test"
				c.Encryption.PublicKeyPath = ""
				c.Encryption.PrivateKeyPath = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data/tagdb")
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tagdb.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tagdb.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tagdb.toml")
		cfg := NewConfig(dir)
		cfg.Store.Type = ""

		if err := Init(path, cfg); err == nil {
			t.Fatal("Init() expected validation error")
		}
		if _, err := os.Stat(path); err == nil {
			t.Error("invalid config was written")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tagdb.toml")
		cfg := NewConfig(dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
	})

	t.Run("rejects invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tagdb.toml")
		content := "log_dir = \"/tmp/log\"\n[database]\nlocation = \"x\"\n[store]\ntype = \"s3\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := ReadFromFile(path)
		if err == nil || !strings.Contains(err.Error(), "s3_bucket") {
			t.Fatalf("ReadFromFile() error = %v, want s3_bucket validation error", err)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/tagdb.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
