package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tagdb/internal/config"
	"tagdb/internal/tagdb"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.NewConfig(t.TempDir())
}

// writeFiles creates the named files under a fresh directory and returns it.
func writeFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func initDatabase(t *testing.T, cfg *config.Config) {
	t.Helper()
	a, err := InitTagApp(cfg, NewOperation("Init", "", true))
	if err != nil {
		t.Fatalf("InitTagApp() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func openApp(t *testing.T, cfg *config.Config, mutating bool) *TagApp {
	t.Helper()
	a, err := NewTagApp(cfg, NewOperation("Test", "", mutating), nil)
	if err != nil {
		t.Fatalf("NewTagApp() error = %v", err)
	}
	return a
}

func TestInitTagApp(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)

	if _, err := os.Stat(cfg.Database.Location); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	if _, err := InitTagApp(cfg, NewOperation("Init", "", true)); err == nil {
		t.Error("second InitTagApp() expected error")
	}
}

func TestNewTagApp_MissingDatabase(t *testing.T) {
	cfg := newTestConfig(t)

	_, err := NewTagApp(cfg, NewOperation("Query", "", false), nil)
	if err == nil {
		t.Fatal("NewTagApp() expected error")
	}
	if !errors.Is(err, tagdb.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "tagdb init") {
		t.Errorf("error = %v, want a hint to run init", err)
	}
}

func TestTagApp_TagAndQuery(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)
	dir := writeFiles(t, "a.txt", "b.txt", "sub/c.txt")
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")

	app := openApp(t, cfg, true)
	n, err := app.AddFiles(dir, false)
	if err != nil {
		t.Fatalf("AddFiles() error = %v", err)
	}
	if n != 2 {
		t.Errorf("AddFiles() = %d, want 2", n)
	}
	if err := app.Tag(a, "vacation:2020"); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if err := app.Tag(b, "work:22-04-2020"); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if n, err := app.TagMatching("contains(vacation) | begins(work)", "reviewed"); err != nil || n != 2 {
		t.Errorf("TagMatching() = %d, %v, want 2, nil", n, err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	app = openApp(t, cfg, false)
	defer app.Close()

	tests := []struct {
		query string
		want  []string
	}{
		{"eq(vacation:2020)", []string{a}},
		{"begins(work)", []string{b}},
		{"eq(reviewed)", []string{a, b}},
		{"eq(vacation:2020) | eq(work:22-04-2020)", []string{a, b}},
		{"eq(nothing)", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := app.Query(tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestTagApp_ReadOnlyOperationDoesNotSave(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)
	dir := writeFiles(t, "a.txt")

	app := openApp(t, cfg, false)
	if _, err := app.AddFiles(dir, false); err != nil {
		t.Fatalf("AddFiles() error = %v", err)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	app = openApp(t, cfg, false)
	defer app.Close()
	if got := app.List(); len(got) != 0 {
		t.Errorf("List() = %d entries, want 0", len(got))
	}
}

func TestTagApp_FailedOperationDoesNotSave(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)
	dir := writeFiles(t, "a.txt")

	app := openApp(t, cfg, true)
	if _, err := app.AddFiles(dir, false); err != nil {
		t.Fatalf("AddFiles() error = %v", err)
	}
	if err := app.Tag(filepath.Join(dir, "unregistered.txt"), "x"); err == nil {
		t.Fatal("Tag() on unregistered file expected error")
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	app = openApp(t, cfg, false)
	defer app.Close()
	if got := app.List(); len(got) != 0 {
		t.Errorf("List() = %d entries, want 0 after failed operation", len(got))
	}
}

func TestTagApp_InvalidInput(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)
	app := openApp(t, cfg, true)
	defer app.Close()

	if _, err := app.Query("eq(a"); err == nil {
		t.Error("Query() with malformed query expected error")
	}
	if _, err := app.TagMatching("eq(a)", ""); err == nil {
		t.Error("TagMatching() with empty tag expected error")
	}
	if _, err := app.AddFiles(filepath.Join(t.TempDir(), "missing"), false); err == nil {
		t.Error("AddFiles() on missing path expected error")
	}
	if app.op.Succeeded() {
		t.Error("operation should be marked failed")
	}
}

func TestTagApp_UntagAndRemove(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)
	dir := writeFiles(t, "a.txt", "b.txt")
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")

	app := openApp(t, cfg, true)
	defer app.Close()
	if _, err := app.AddFiles(dir, false); err != nil {
		t.Fatalf("AddFiles() error = %v", err)
	}
	for _, p := range []string{a, b} {
		if err := app.Tag(p, "draft"); err != nil {
			t.Fatalf("Tag() error = %v", err)
		}
	}

	if n, err := app.Untag("eq(draft)", a); err != nil || n != 1 {
		t.Errorf("Untag(file) = %d, %v, want 1, nil", n, err)
	}
	if got, _ := app.Query("eq(draft)"); !reflect.DeepEqual(got, []string{b}) {
		t.Errorf("Query() after Untag(file) = %v, want [%s]", got, b)
	}
	if _, err := app.Untag("eq(draft)", filepath.Join(dir, "nope.txt")); err == nil {
		t.Error("Untag() on unregistered file expected error")
	}

	if n, err := app.Remove("eq(draft)"); err != nil || n != 1 {
		t.Errorf("Remove() = %d, %v, want 1, nil", n, err)
	}
	if got := app.List(); len(got) != 1 || got[0].Path() != a {
		t.Errorf("List() after Remove = %v, want only %s", got, a)
	}
}

func TestTagApp_Status(t *testing.T) {
	cfg := newTestConfig(t)
	initDatabase(t, cfg)
	dir := writeFiles(t, "a.txt", "b.txt")

	app := openApp(t, cfg, true)
	defer app.Close()
	if _, err := app.AddFiles(filepath.Join(dir, "a.txt"), false); err != nil {
		t.Fatalf("AddFiles() error = %v", err)
	}

	statuses, err := app.Status(dir, false)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("Status() returned %d entries, want 2", len(statuses))
	}
	if !statuses[0].IsRegistered || statuses[1].IsRegistered {
		t.Errorf("Status() registration = %v, %v, want true, false", statuses[0].IsRegistered, statuses[1].IsRegistered)
	}
}

func TestTagApp_EncryptedStore(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Encryption.Type = "test"
	initDatabase(t, cfg)

	data, err := os.ReadFile(cfg.Database.Location)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("TAGENC")) {
		t.Errorf("stored database is not sealed: %q", data)
	}

	if _, err := NewTagApp(cfg, NewOperation("Query", "", false), nil); err == nil {
		t.Error("NewTagApp() without passphrase expected error")
	}

	a, err := NewTagApp(cfg, NewOperation("Query", "", false), func() (string, error) { return "secret", nil })
	if err != nil {
		t.Fatalf("NewTagApp() error = %v", err)
	}
	a.Close()
}

func TestSetupKeys_EncryptionDisabled(t *testing.T) {
	cfg := newTestConfig(t)
	if err := SetupKeys(cfg, "secret"); err == nil {
		t.Error("SetupKeys() with encryption disabled expected error")
	}
}
