package tagdb

import (
	"path/filepath"
	"strings"
)

// Path is an absolute, cleaned path produced by a FilesystemManager. Only
// Resolve and FindFiles create them, so the service never has to stat or
// normalize paths itself.
type Path struct {
	abs   string
	isDir bool
}

// NewPath creates a Path for a FilesystemManager implementation. abs is
// cleaned but otherwise trusted.
func NewPath(abs string, isDir bool) *Path {
	return &Path{abs: filepath.Clean(abs), isDir: isDir}
}

func (p *Path) String() string { return p.abs }

func (p *Path) IsDir() bool { return p.isDir }

// Contains reports whether the registered path lies under directory p.
// With recursive false only direct children count. A path never contains
// itself.
func (p *Path) Contains(path string, recursive bool) bool {
	if !p.isDir {
		return false
	}
	path = filepath.Clean(path)
	prefix := p.abs
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return recursive || filepath.Dir(path) == p.abs
}
