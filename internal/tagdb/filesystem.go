package tagdb

// FilesystemManager resolves and discovers the files that get registered in
// a Database. It abstracts file access so the service can be tested without
// touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// FindFiles discovers regular files under the given directory.
	// When recursive is true, subdirectories are walked as well.
	FindFiles(dir *Path, recursive bool) ([]*Path, error)

	// IsIgnored reports whether path matches the ignore rules that apply
	// under root: configured patterns plus root's .tagignore file.
	IsIgnored(path *Path, root string) (bool, error)
}
