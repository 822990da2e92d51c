package encryption

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tagdb/internal/tag"
	"tagdb/internal/tagdb"
)

func testDatabase(location string, files map[string][]string) *tagdb.Database {
	db := tagdb.New(location)
	for path, tags := range files {
		db.AddFile(path)
		for _, text := range tags {
			db.AddTagToFile(path, tag.FromText(text))
		}
	}
	return db
}

// seal encrypts the JSON encoding of db.
func seal(t *testing.T, db *tagdb.Database) []byte {
	t.Helper()
	plain, err := json.Marshal(db)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return sealBytes(t, plain)
}

func sealBytes(t *testing.T, plain []byte) []byte {
	t.Helper()
	var sealed bytes.Buffer
	if err := NewTestEncryptor().Encrypt(bytes.NewReader(plain), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	return sealed.Bytes()
}

func TestTestEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		db   *tagdb.Database
	}{
		{"empty", tagdb.New("tags.json")},
		{"untagged file", testDatabase("tags.json", map[string][]string{"/a.txt": nil})},
		{"tagged files", testDatabase("s3/tags", map[string][]string{
			"/photos/a.jpg": {"vacation:2020", "22-04-2020:beach"},
			"/docs/b.txt":   {"work", "-7"},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sealed := seal(t, tt.db)

			dec, err := NewTestEncryptor().Unlock("")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}
			var plain bytes.Buffer
			if err := dec.Decrypt(bytes.NewReader(sealed), &plain); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			got := &tagdb.Database{}
			if err := json.Unmarshal(plain.Bytes(), got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !got.Equal(tt.db) {
				t.Errorf("decrypted database = %s, want the sealed one", plain.Bytes())
			}
		})
	}
}

func TestTestEncryptor_SealedIsOpaque(t *testing.T) {
	t.Parallel()

	db := testDatabase("tags.json", map[string][]string{"/photos/a.jpg": {"vacation:2020"}})
	sealed := seal(t, db)

	if json.Valid(sealed) {
		t.Error("sealed database is valid JSON")
	}
	if strings.Contains(string(sealed), "vacation") || strings.Contains(string(sealed), "/photos") {
		t.Errorf("sealed database leaks plaintext: %q", sealed)
	}
	if !bytes.Equal(sealed, seal(t, db)) {
		t.Error("sealing the same database twice gave different output")
	}
}

func TestTestDecryptionContext_Rejects(t *testing.T) {
	t.Parallel()

	good := seal(t, testDatabase("tags.json", map[string][]string{"/a.txt": {"x"}}))

	wrongVersion := bytes.Clone(good)
	wrongVersion[len(sealMagic)] = 9

	tests := []struct {
		name   string
		sealed []byte
	}{
		{"truncated header", []byte("TAG")},
		{"plain json", []byte(`{"location":"tags.json","files":[]}`)},
		{"wrong version", wrongVersion},
		{"truncated payload", good[:len(good)-1]},
		{"extra payload", append(bytes.Clone(good), 0)},
		{"not json", sealBytes(t, []byte("hello world"))},
		{"json but not a database", sealBytes(t, []byte(`{"hello":1}`))},
		{"null", sealBytes(t, []byte("null"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var plain bytes.Buffer
			err := (&TestDecryptionContext{}).Decrypt(bytes.NewReader(tt.sealed), &plain)
			if err == nil {
				t.Fatal("Decrypt() expected error")
			}
			if plain.Len() != 0 {
				t.Errorf("Decrypt() wrote %q before failing", plain.Bytes())
			}
		})
	}
}

func TestTestEncryptor_Passphrase(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false, want true")
	}
	if _, err := e.Unlock("anything"); err != nil {
		t.Errorf("Unlock() before Setup() error = %v", err)
	}

	if err := e.Setup(""); err == nil {
		t.Error("Setup() with empty passphrase expected error")
	}
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := e.Unlock("wrong"); err == nil {
		t.Error("Unlock() with wrong passphrase expected error")
	}
	if _, err := e.Unlock("secret"); err != nil {
		t.Errorf("Unlock() error = %v", err)
	}
}
