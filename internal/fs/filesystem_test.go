package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})
	m := NewOSFilesystemManager(nil)

	t.Run("regular file", func(t *testing.T) {
		p, err := m.Resolve(filepath.Join(dir, "a.txt"))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() {
			t.Error("IsDir() = true for a file")
		}
		if p.String() != filepath.Join(dir, "a.txt") {
			t.Errorf("String() = %q, want %q", p.String(), filepath.Join(dir, "a.txt"))
		}
	})

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false for a directory")
		}
	})

	t.Run("symlink rejected", func(t *testing.T) {
		link := filepath.Join(dir, "link")
		if err := os.Symlink(filepath.Join(dir, "a.txt"), link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		if _, err := m.Resolve(link); err == nil {
			t.Error("Resolve() accepted a symlink")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(dir, "missing")); err == nil {
			t.Error("Resolve() accepted a missing path")
		}
	})
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.txt":        "b",
		"a.txt":        "a",
		"sub/c.txt":    "c",
		"sub/deep/d.x": "d",
	})
	m := NewOSFilesystemManager(nil)
	root, err := m.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{"direct children", false, []string{"a.txt", "b.txt"}},
		{"recursive", true, []string{"a.txt", "b.txt", filepath.Join("sub", "c.txt"), filepath.Join("sub", "deep", "d.x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := m.FindFiles(root, tt.recursive)
			if err != nil {
				t.Fatalf("FindFiles() error = %v", err)
			}
			if len(paths) != len(tt.want) {
				t.Fatalf("FindFiles() returned %d paths, want %d", len(paths), len(tt.want))
			}
			for i, p := range paths {
				if want := filepath.Join(dir, tt.want[i]); p.String() != want {
					t.Errorf("FindFiles()[%d] = %s, want %s", i, p.String(), want)
				}
			}
		})
	}

	file, _ := m.Resolve(filepath.Join(dir, "a.txt"))
	if _, err := m.FindFiles(file, false); err == nil {
		t.Error("FindFiles() on a file should fail")
	}
}

func TestOSFilesystemManager_IsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		IgnoreFileName:       "# thumbnails\n*.thumb\nraw/\n",
		"a.jpg":              "",
		"a.thumb":            "",
		"debug.log":          "",
		"raw/a.cr2":          "",
		"edited/raw.jpg":     "",
		"edited/cache/z.jpg": "",
	})
	m := NewOSFilesystemManager([]string{"*.log", "cache"})

	tests := []struct {
		name string
		want bool
	}{
		{"a.jpg", false},
		{"a.thumb", true},
		{"debug.log", true},
		{IgnoreFileName, true},
		{filepath.Join("raw", "a.cr2"), true},
		{filepath.Join("edited", "raw.jpg"), false},
		{filepath.Join("edited", "cache", "z.jpg"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.Resolve(filepath.Join(dir, tt.name))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			got, err := m.IsIgnored(p, dir)
			if err != nil {
				t.Fatalf("IsIgnored() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsIgnored(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	t.Run("path outside root matches by basename", func(t *testing.T) {
		p, err := m.Resolve(filepath.Join(dir, "debug.log"))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		got, err := m.IsIgnored(p, t.TempDir())
		if err != nil {
			t.Fatalf("IsIgnored() error = %v", err)
		}
		if !got {
			t.Error("configured pattern not applied outside root")
		}
	})
}
