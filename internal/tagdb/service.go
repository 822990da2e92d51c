package tagdb

import (
	"fmt"
	"path/filepath"
	"sort"

	"tagdb/internal/tag"
)

// Load reads the database stored at location. Any failure is reported as a
// *StorageError.
func Load(store Store, location string) (*Database, error) {
	db, err := store.Load(location)
	if err != nil {
		return nil, &StorageError{Op: "load", Location: location, Err: err}
	}
	return db, nil
}

// Save writes db to its bound location, replacing what was stored there.
// Any failure is reported as a *StorageError.
func Save(store Store, db *Database) error {
	if err := store.Save(db); err != nil {
		return &StorageError{Op: "save", Location: db.Location(), Err: err}
	}
	return nil
}

// Service is the orchestration layer between the CLI and a Database. It
// logs every edit, tracks whether the database changed, and persists it
// through a Store.
type Service struct {
	database *Database
	store    Store
	fsmgr    FilesystemManager
	logger   Logger
	modified bool
}

// NewService creates a Service around an already loaded or new database.
func NewService(database *Database, store Store, fsmgr FilesystemManager, logger Logger) *Service {
	return &Service{
		database: database,
		store:    store,
		fsmgr:    fsmgr,
		logger:   logger,
	}
}

// OpenService loads the database at location and wraps it in a Service.
func OpenService(store Store, location string, fsmgr FilesystemManager, logger Logger) (*Service, error) {
	db, err := Load(store, location)
	if err != nil {
		return nil, err
	}
	if db.Location() != location {
		logger.Warn("database was saved under another location", "requested", location, "stored", db.Location())
	}
	logger.Debug("database loaded", "location", db.Location(), "files", db.Len())
	return NewService(db, store, fsmgr, logger), nil
}

// Database returns the underlying database.
func (s *Service) Database() *Database {
	return s.database
}

// Modified reports whether any edit changed the database since it was
// loaded or last saved.
func (s *Service) Modified() bool {
	return s.modified
}

// Save persists the database and clears the modified flag.
func (s *Service) Save() error {
	if err := Save(s.store, s.database); err != nil {
		return err
	}
	s.modified = false
	s.logger.Info("database saved", "location", s.database.Location(), "files", s.database.Len())
	return nil
}

// AddFile registers path. It is a no-op for already registered paths.
func (s *Service) AddFile(path string) bool {
	if !s.database.AddFile(path) {
		s.logger.Debug("file already registered", "path", path)
		return false
	}
	s.modified = true
	s.logger.Info("file registered", "path", path)
	return true
}

// AddFiles registers one file, or every file discovered under a directory.
// Ignored files are skipped when discovered and rejected when named
// directly. When recursive is true, files in subdirectories are included.
// Returns the number of newly registered files.
func (s *Service) AddFiles(path *Path, recursive bool) (int, error) {
	if !path.IsDir() {
		ignored, err := s.fsmgr.IsIgnored(path, filepath.Dir(path.String()))
		if err != nil {
			return 0, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			return 0, fmt.Errorf("file is ignored: %s", path.String())
		}
		if s.AddFile(path.String()) {
			return 1, nil
		}
		return 0, nil
	}

	files, err := s.fsmgr.FindFiles(path, recursive)
	if err != nil {
		return 0, fmt.Errorf("finding files: %w", err)
	}

	count := 0
	for _, f := range files {
		ignored, err := s.fsmgr.IsIgnored(f, path.String())
		if err != nil {
			return count, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			s.logger.Debug("file ignored", "path", f.String())
			continue
		}
		if s.AddFile(f.String()) {
			count++
		}
	}
	return count, nil
}

// AddTagToFile attaches t to the file at path. It reports false when path
// is not registered.
func (s *Service) AddTagToFile(path string, t tag.Tag) bool {
	f, ok := s.database.File(path)
	if !ok {
		s.logger.Warn("tagging unregistered file", "path", path)
		return false
	}
	if f.HasTag(t) {
		return true
	}
	s.database.AddTagToFile(path, t)
	s.modified = true
	s.logger.Info("tag added", "path", path, "tag", t.String())
	return true
}

// AddTagMatching attaches t to every file matching q and returns the number
// of files that did not already carry it.
func (s *Service) AddTagMatching(q tag.Query, t tag.Tag) int {
	n := s.database.AddTagMatching(q, t)
	if n > 0 {
		s.modified = true
	}
	s.logger.Info("tag added to matching files", "query", q.String(), "tag", t.String(), "files", n)
	return n
}

// Query returns the paths of files matching q in ascending order.
func (s *Service) Query(q tag.Query) []string {
	paths := s.database.MatchQuery(q)
	s.logger.Debug("query evaluated", "query", q.String(), "matches", len(paths))
	return paths
}

// RemoveMatching deletes the file entries matching q.
func (s *Service) RemoveMatching(q tag.Query) int {
	n := s.database.RemoveMatching(q)
	if n > 0 {
		s.modified = true
	}
	s.logger.Info("files removed", "query", q.String(), "files", n)
	return n
}

// RemoveMatchingTags removes the tags matching q from every file.
func (s *Service) RemoveMatchingTags(q tag.Query) int {
	n := s.database.RemoveMatchingTags(q)
	if n > 0 {
		s.modified = true
	}
	s.logger.Info("tags removed", "query", q.String(), "tags", n)
	return n
}

// RemoveMatchingTagsForFile removes the tags matching q from one file.
func (s *Service) RemoveMatchingTagsForFile(path string, q tag.Query) int {
	n := s.database.RemoveMatchingTagsForFile(path, q)
	if n > 0 {
		s.modified = true
	}
	s.logger.Info("tags removed", "path", path, "query", q.String(), "tags", n)
	return n
}

// FileStatus describes how a path on disk relates to the database.
type FileStatus struct {
	Path         string
	IsRegistered bool
	IsMissing    bool // registered but no longer found on disk
	TagCount     int
}

// Status compares the files under dir with the registered entries. Files on
// disk are reported whether registered or not; registered entries under dir
// that were not found on disk are reported as missing. When recursive is
// false only direct children of dir are considered.
func (s *Service) Status(dir *Path, recursive bool) ([]*FileStatus, error) {
	s.logger.Debug("computing status", "path", dir.String())

	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	diskFiles, err := s.fsmgr.FindFiles(dir, recursive)
	if err != nil {
		return nil, fmt.Errorf("finding files: %w", err)
	}

	seen := make(map[string]bool, len(diskFiles))
	var statuses []*FileStatus

	for _, p := range diskFiles {
		seen[p.String()] = true
		status := &FileStatus{Path: p.String()}
		if f, ok := s.database.File(p.String()); ok {
			status.IsRegistered = true
			status.TagCount = f.Len()
		}
		statuses = append(statuses, status)
	}

	for _, f := range s.database.Files() {
		if seen[f.Path()] || !dir.Contains(f.Path(), recursive) {
			continue
		}
		statuses = append(statuses, &FileStatus{
			Path:         f.Path(),
			IsRegistered: true,
			IsMissing:    true,
			TagCount:     f.Len(),
		})
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Path < statuses[j].Path })
	return statuses, nil
}
