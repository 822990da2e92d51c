package testutil

import (
	"fmt"
	"path/filepath"
	"sort"

	"tagdb/internal/tagdb"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	IsDirectory bool
	Ignored     bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
type MockFilesystemManager struct {
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.files[path] = &MockFile{Content: content}
}

// AddIgnoredFile adds a file that IsIgnored reports as ignored.
func (m *MockFilesystemManager) AddIgnoredFile(path string, content []byte) {
	m.AddFile(path, content)
	m.files[path].Ignored = true
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.files[path] = &MockFile{IsDirectory: true}
}

// RemoveFile deletes a file, leaving any database entry for it dangling.
func (m *MockFilesystemManager) RemoveFile(path string) {
	delete(m.files, path)
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*tagdb.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return m.path(absPath, file), nil
}

// FindFiles returns the regular files under dir in path order.
func (m *MockFilesystemManager) FindFiles(dir *tagdb.Path, recursive bool) ([]*tagdb.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	var paths []*tagdb.Path
	for p, file := range m.files {
		if file.IsDirectory || !dir.Contains(p, recursive) {
			continue
		}
		paths = append(paths, m.path(p, file))
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	return paths, nil
}

func (m *MockFilesystemManager) IsIgnored(path *tagdb.Path, root string) (bool, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return false, fmt.Errorf("file not found: %s", path.String())
	}
	return file.Ignored, nil
}

func (m *MockFilesystemManager) path(absPath string, file *MockFile) *tagdb.Path {
	return tagdb.NewPath(absPath, file.IsDirectory)
}

// Compile-time check
var _ tagdb.FilesystemManager = (*MockFilesystemManager)(nil)
